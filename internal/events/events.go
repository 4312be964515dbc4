package events

import (
	"fmt"
	"strings"
	"time"
)

// Status is the build state of one asset.
type Status int

const (
	StatusWaiting Status = iota
	StatusBuilding
	StatusSkipped
	StatusSuccess
	StatusSuccessWithWarnings
	StatusFailed
)

var statusNames = [...]string{
	StatusWaiting:             "waiting",
	StatusBuilding:            "building",
	StatusSkipped:             "skipped",
	StatusSuccess:             "success",
	StatusSuccessWithWarnings: "success_with_warnings",
	StatusFailed:              "failed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Done reports whether s is a terminal status.
func (s Status) Done() bool {
	return s >= StatusSkipped
}

// MarshalText encodes the status by name, so JSON maps read naturally.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status '%s'", text)
}

// Level is the severity of a build log line.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// StatusEvent reports a status transition of an asset.
type StatusEvent struct {
	Asset  string
	Status Status
	// Reason explains why the asset is being rebuilt. It is only set on
	// the Building transition of an asset that needs work.
	Reason string
	Time   time.Time
}

// LogEvent is one line of an asset's build log.
type LogEvent struct {
	Asset   string
	Bundle  string
	Level   Level
	Message string
	Time    time.Time
}

// BuildCompleted is emitted once, after the last asset of a build.
type BuildCompleted struct {
	Content  string
	Failed   bool
	Stopped  bool
	Counts   map[Status]int
	Duration time.Duration
}

// Listener receives build notifications. Implementations are called from
// the build goroutine and must not block for long; wrap slow sinks in a
// Channel.
type Listener interface {
	OnStatus(e StatusEvent)
	OnLog(e LogEvent)
	OnBuildCompleted(e BuildCompleted)
}

// Nop is a Listener that discards everything.
type Nop struct{}

func (Nop) OnStatus(StatusEvent)            {}
func (Nop) OnLog(LogEvent)                  {}
func (Nop) OnBuildCompleted(BuildCompleted) {}

// Multi delivers every event to each listener in order. Nil entries are
// skipped.
type Multi []Listener

func (m Multi) OnStatus(e StatusEvent) {
	for _, l := range m {
		if l != nil {
			l.OnStatus(e)
		}
	}
}

func (m Multi) OnLog(e LogEvent) {
	for _, l := range m {
		if l != nil {
			l.OnLog(e)
		}
	}
}

func (m Multi) OnBuildCompleted(e BuildCompleted) {
	for _, l := range m {
		if l != nil {
			l.OnBuildCompleted(e)
		}
	}
}
