package events

import (
	"slices"
	"sync"
)

// Recorder keeps every event in memory. It is safe for concurrent use, so a
// status endpoint can read it while a build is writing to it.
type Recorder struct {
	mu        sync.RWMutex
	statuses  []StatusEvent
	current   map[string]Status
	order     []string
	logs      []LogEvent
	completed *BuildCompleted
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{current: make(map[string]Status)}
}

func (r *Recorder) OnStatus(e StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.current[e.Asset]; !seen {
		r.order = append(r.order, e.Asset)
	}
	r.current[e.Asset] = e.Status
	r.statuses = append(r.statuses, e)
}

func (r *Recorder) OnLog(e LogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, e)
}

func (r *Recorder) OnBuildCompleted(e BuildCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = &e
}

// Status returns the latest status of asset.
func (r *Recorder) Status(asset string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.current[asset]
	return s, ok
}

// Statuses returns the latest status of every asset seen so far.
func (r *Recorder) Statuses() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Status, len(r.current))
	for k, v := range r.current {
		out[k] = v
	}
	return out
}

// Assets returns asset paths in the order they were first reported.
func (r *Recorder) Assets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Transitions returns every status event of asset in arrival order.
func (r *Recorder) Transitions(asset string) []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Status
	for _, e := range r.statuses {
		if e.Asset == asset {
			out = append(out, e.Status)
		}
	}
	return out
}

// Logs returns the log lines of asset. An empty asset returns all lines.
func (r *Recorder) Logs(asset string) []LogEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if asset == "" {
		return slices.Clone(r.logs)
	}
	var out []LogEvent
	for _, e := range r.logs {
		if e.Asset == asset {
			out = append(out, e)
		}
	}
	return out
}

// Completed returns the build-completed event, if one arrived.
func (r *Recorder) Completed() (BuildCompleted, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.completed == nil {
		return BuildCompleted{}, false
	}
	return *r.completed, true
}

// Reset clears everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = nil
	r.current = make(map[string]Status)
	r.order = nil
	r.logs = nil
	r.completed = nil
}
