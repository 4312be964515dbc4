package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/params"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
	"github.com/vk/assetforge/internal/tracker"
)

// ErrAlreadyRunning is returned when a build is started while another one is
// still in progress on the same Builder.
var ErrAlreadyRunning = errors.New("a build is already running")

// ErrNotStarted is returned by Wait when Start was never called.
var ErrNotStarted = errors.New("no build has been started")

// CacheFile returns where the dependency cache of c is kept.
func CacheFile(c *content.Content) string {
	return filepath.Join(c.OutputRoot, c.Name+tracker.FileSuffix)
}

// Options tunes a Builder.
type Options struct {
	// Force rebuilds every asset regardless of the dependency cache.
	Force bool
	// Listener receives status, log and completion events. Nil discards them.
	Listener events.Listener
}

// Result summarises a finished build.
type Result struct {
	Statuses map[string]events.Status
	Counts   map[events.Status]int
	Failed   bool
	Stopped  bool
	Duration time.Duration
}

// Builder runs builds of one Content. Status queries are safe from any
// goroutine; builds themselves are serialised.
type Builder struct {
	content  *content.Content
	registry *registry.Registry
	tracker  *tracker.Tracker
	listener events.Listener
	force    bool

	running atomic.Bool
	stop    atomic.Bool

	mu       sync.RWMutex
	statuses map[string]events.Status
	done     chan struct{}
	result   *Result
	err      error
}

// New creates a builder. The tracker should have been loaded from
// CacheFile(c).
func New(c *content.Content, reg *registry.Registry, tr *tracker.Tracker, opts Options) *Builder {
	l := opts.Listener
	if l == nil {
		l = events.Nop{}
	}
	return &Builder{
		content:  c,
		registry: reg,
		tracker:  tr,
		listener: l,
		force:    opts.Force,
		statuses: make(map[string]events.Status),
	}
}

// Build runs a build on the calling goroutine. The returned Result is
// non-nil even when saving the dependency cache fails.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if !b.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer b.running.Store(false)
	b.stop.Store(false)
	return b.run(ctx)
}

// Start runs a build on a dedicated goroutine. Use Wait for the outcome.
func (b *Builder) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	b.stop.Store(false)
	done := make(chan struct{})
	b.mu.Lock()
	b.done, b.result, b.err = done, nil, nil
	b.mu.Unlock()

	go func() {
		defer close(done)
		defer b.running.Store(false)
		res, err := b.run(ctx)
		b.mu.Lock()
		b.result, b.err = res, err
		b.mu.Unlock()
	}()
	return nil
}

// Wait blocks until the build begun by Start has finished.
func (b *Builder) Wait() (*Result, error) {
	b.mu.RLock()
	done := b.done
	b.mu.RUnlock()
	if done == nil {
		return nil, ErrNotStarted
	}
	<-done

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.result, b.err
}

// Stop asks the running build to end before its next asset. The asset being
// processed is finished normally.
func (b *Builder) Stop() {
	b.stop.Store(true)
}

// Running reports whether a build is in progress.
func (b *Builder) Running() bool {
	return b.running.Load()
}

// Status returns the latest status of the asset at assetPath.
func (b *Builder) Status(assetPath string) (events.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.statuses[content.CleanPath(assetPath)]
	return s, ok
}

// Statuses returns a snapshot of every asset's latest status.
func (b *Builder) Statuses() map[string]events.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]events.Status, len(b.statuses))
	for k, v := range b.statuses {
		out[k] = v
	}
	return out
}

func (b *Builder) run(ctx context.Context) (*Result, error) {
	start := time.Now()
	ctx, logger := ctxlog.With(ctx, "content", b.content.Name)
	logger.Info("🚀 Starting build.", "assets", len(b.content.Assets), "force", b.force)

	b.mu.Lock()
	b.statuses = make(map[string]events.Status, len(b.content.Assets))
	b.mu.Unlock()
	for _, a := range b.content.Assets {
		b.setStatus(a.Path, events.StatusWaiting, "")
	}

	res := &Result{Counts: make(map[events.Status]int)}
	for _, a := range b.content.Assets {
		if b.stop.Load() || ctx.Err() != nil {
			logger.Warn("Build stop requested, remaining assets are not processed.", "next_asset", a.Path)
			res.Stopped = true
			break
		}
		status := b.buildAsset(ctx, a)
		res.Counts[status]++
		if status == events.StatusFailed {
			res.Failed = true
		}
	}

	var saveErr error
	if err := b.tracker.Save(); err != nil {
		logger.Error("Failed to save dependency cache.", "error", err)
		saveErr = err
		res.Failed = true
	}

	res.Statuses = b.Statuses()
	res.Duration = time.Since(start)
	b.listener.OnBuildCompleted(events.BuildCompleted{
		Content:  b.content.Name,
		Failed:   res.Failed,
		Stopped:  res.Stopped,
		Counts:   res.Counts,
		Duration: res.Duration,
	})
	logger.Debug("Build loop finished.", "failed", res.Failed, "stopped", res.Stopped, "duration", res.Duration)
	return res, saveErr
}

// variant is one processor invocation of an asset.
type variant struct {
	asset  *content.Asset
	bundle *content.Bundle
	params *params.Set
}

// subject is the tracker identity of an asset under a given effective
// declaration.
type subject struct {
	path string
	hash string
}

func (s subject) AssetPath() string   { return s.path }
func (s subject) ContentHash() string { return s.hash }

// plan resolves the descriptor and merged parameter sets of a.
func (b *Builder) plan(a *content.Asset) (*processor.Descriptor, []variant, subject, error) {
	desc, err := b.registry.Get(a.Processor)
	if err != nil {
		return nil, nil, subject{}, err
	}

	base := desc.Defaults()
	base.Merge(a.Parameters)
	variants := []variant{{asset: a, bundle: b.content.Base(), params: base}}

	for _, bundle := range b.content.Variants(a) {
		set := base.Clone()
		set.Merge(bundle.Parameters)
		if overrides, ok := a.BundleParameters(bundle.Name); ok {
			set.Merge(overrides)
		}
		variants = append(variants, variant{asset: a, bundle: bundle, params: set})
	}

	hashed := make([]content.Variant, len(variants))
	for i, v := range variants {
		hashed[i] = content.Variant{Name: v.bundle.Name, Parameters: v.params}
	}
	return desc, variants, subject{path: a.Path, hash: content.Hash(a.Path, a.Processor, hashed...)}, nil
}

func (b *Builder) buildAsset(ctx context.Context, a *content.Asset) events.Status {
	logger := ctxlog.FromContext(ctx).With("asset", a.Path)

	desc, variants, subj, err := b.plan(a)
	if err != nil {
		b.setStatus(a.Path, events.StatusBuilding, "")
		b.logAsset(a, content.BaseBundleName, events.LevelError, err.Error())
		b.tracker.RemoveAsset(subject{path: a.Path})
		logger.Debug("Asset cannot be planned.", "error", err)
		b.setStatus(a.Path, events.StatusFailed, "")
		return events.StatusFailed
	}

	reason := "forced"
	if !b.force {
		r := b.tracker.Check(subj)
		if r == tracker.ReasonUpToDate {
			b.setStatus(a.Path, events.StatusBuilding, "")
			b.setStatus(a.Path, events.StatusSkipped, "")
			return events.StatusSkipped
		}
		reason = string(r)
	}
	b.setStatus(a.Path, events.StatusBuilding, reason)
	logger.Debug("Building asset.", "processor", desc.Name, "variants", len(variants), "reason", reason)

	b.tracker.RemoveAsset(subj)
	if err := b.tracker.AddAssetDependency(subj); err != nil {
		b.logAsset(a, content.BaseBundleName, events.LevelError, err.Error())
		b.setStatus(a.Path, events.StatusFailed, "")
		return events.StatusFailed
	}
	if err := b.tracker.AddInputDependency(subj, a.Path); err != nil {
		b.logAsset(a, content.BaseBundleName, events.LevelError, err.Error())
		b.tracker.RemoveAsset(subj)
		b.setStatus(a.Path, events.StatusFailed, "")
		return events.StatusFailed
	}

	var numErrors, numWarnings int
	for _, v := range variants {
		bc := newBuildContext(ctx, b.content, v, subj, b.tracker, b.listener)
		b.runVariant(bc, desc)
		numErrors += bc.NumErrors()
		numWarnings += bc.NumWarnings()
		logger.Debug("Variant finished.", "bundle", v.bundle.Name, "errors", bc.NumErrors(), "warnings", bc.NumWarnings(), "inputs", bc.Inputs(), "outputs", bc.Outputs())
	}

	var status events.Status
	switch {
	case numErrors > 0:
		b.tracker.RemoveAsset(subj)
		status = events.StatusFailed
	case numWarnings > 0:
		status = events.StatusSuccessWithWarnings
	default:
		status = events.StatusSuccess
	}
	b.setStatus(a.Path, status, "")
	return status
}

// runVariant validates the variant's parameters and invokes a fresh
// processor instance. Returned errors and panics become build errors.
func (b *Builder) runVariant(bc *BuildContext, desc *processor.Descriptor) {
	errs, undeclared := desc.CheckParameters(bc.Parameters())
	for _, name := range undeclared {
		bc.Verbose(fmt.Sprintf("Parameter '%s' is not declared by %s and is ignored.", name, desc.Name))
	}
	if len(errs) > 0 {
		for _, err := range errs {
			bc.Error(err.Error())
		}
		return
	}

	proc, err := b.registry.CreateInstance(desc.Name)
	if err != nil {
		bc.LogException(err, true)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			bc.LogException(fmt.Errorf("processor %s panicked: %v\n%s", desc.Name, r, debug.Stack()), true)
		}
	}()
	if err := proc.Process(bc); err != nil {
		bc.LogException(err, true)
	}
}

func (b *Builder) setStatus(assetPath string, s events.Status, reason string) {
	b.mu.Lock()
	b.statuses[assetPath] = s
	b.mu.Unlock()
	b.listener.OnStatus(events.StatusEvent{Asset: assetPath, Status: s, Reason: reason, Time: time.Now()})
}

func (b *Builder) logAsset(a *content.Asset, bundle string, level events.Level, msg string) {
	b.listener.OnLog(events.LogEvent{Asset: a.Path, Bundle: bundle, Level: level, Message: msg, Time: time.Now()})
}
