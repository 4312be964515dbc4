package app

import (
	"context"

	"github.com/vk/assetforge/internal/builder"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/events"
)

// eventQueueSize is the buffer between the build and the remote event sink.
const eventQueueSize = 256

// Build runs one build of the loaded content. A failed asset is reported in
// the Result, not as an error; errors are reserved for problems that keep
// the build from running or from persisting its cache.
func (a *App) Build(ctx context.Context) (*builder.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Build method started.")

	listeners := events.Multi{events.NewLogPrinter(a.logger)}
	listeners = append(listeners, a.listeners...)

	if a.config.EventsURL != "" {
		sink, err := events.DialSocketIO(ctx, events.SocketIOConfig{
			URL:       a.config.EventsURL,
			Namespace: a.config.EventsNamespace,
		})
		if err != nil {
			a.logger.Warn("Remote event sink unavailable, continuing without it.", "error", err)
		} else {
			queue := events.NewChannel(sink, eventQueueSize)
			defer func() {
				queue.Close()
				if err := sink.Close(); err != nil {
					a.logger.Debug("Closing remote event sink failed.", "error", err)
				}
			}()
			listeners = append(listeners, queue)
		}
	}

	b := a.newBuilder(listeners)
	if a.config.StatusPort > 0 {
		a.startStatusServer(a.config.StatusPort)
		defer a.closeStatusServer()
	}

	res, err := b.Build(ctx)
	a.logger.Debug("App.Build method finished.")
	return res, err
}

// Check reports which assets a build would rebuild, and why, without
// building anything.
func (a *App) Check(ctx context.Context) []builder.Pending {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return a.newBuilder(events.NewLogPrinter(a.logger)).Check(ctx)
}

// Clean removes every recorded output and the dependency cache. It returns
// the number of files removed.
func (a *App) Clean(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return a.newBuilder(events.NewLogPrinter(a.logger)).Clean(ctx)
}
