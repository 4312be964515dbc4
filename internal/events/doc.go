// Package events carries build notifications from the builder to whatever
// presentation layer is attached: per-asset status transitions, per-asset log
// lines and a final build-completed signal.
//
// The builder talks to a single Listener. Multi fans out to several, Channel
// moves delivery onto its own goroutine, and the concrete sinks (Recorder,
// LogPrinter, SocketIOSink) decide what to do with each event.
package events
