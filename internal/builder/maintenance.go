package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/tracker"
)

// Pending is an asset that the next build would process.
type Pending struct {
	Asset  string
	Reason string
}

// Check reports, without building anything, which assets need a rebuild and
// why. The tracker is not modified.
func (b *Builder) Check(ctx context.Context) []Pending {
	logger := ctxlog.FromContext(ctx).With("content", b.content.Name)
	var out []Pending
	for _, a := range b.content.Assets {
		_, _, subj, err := b.plan(a)
		if err != nil {
			out = append(out, Pending{Asset: a.Path, Reason: err.Error()})
			continue
		}
		if b.force {
			out = append(out, Pending{Asset: a.Path, Reason: "forced"})
			continue
		}
		if r := b.tracker.Check(subj); r != tracker.ReasonUpToDate {
			out = append(out, Pending{Asset: a.Path, Reason: string(r)})
		}
	}
	logger.Debug("Rebuild check finished.", "assets", len(b.content.Assets), "pending", len(out))
	return out
}

// DoesAssetNeedRebuild asks the tracker about a using the hash of its
// effective parameter sets, the same hash a build records. An asset that
// cannot be planned always needs a rebuild.
func (b *Builder) DoesAssetNeedRebuild(a *content.Asset) bool {
	_, _, subj, err := b.plan(a)
	if err != nil {
		return true
	}
	return b.tracker.DoesAssetNeedRebuild(subj)
}

// Clean deletes every output recorded in the dependency cache, then empties
// the cache and removes its file. It returns the number of files removed.
func (b *Builder) Clean(ctx context.Context) (int, error) {
	if b.running.Load() {
		return 0, ErrAlreadyRunning
	}
	logger := ctxlog.FromContext(ctx).With("content", b.content.Name)

	var errs []error
	removed := 0
	for _, rec := range b.tracker.Records() {
		for _, out := range rec.Outputs {
			full := b.tracker.OutputPath(out)
			err := os.Remove(full)
			switch {
			case err == nil:
				removed++
				logger.Debug("Removed output.", "asset", rec.Path, "file", out)
				fsutil.RemoveEmptyParents(filepath.Dir(full), b.content.OutputRoot)
			case errors.Is(err, fs.ErrNotExist):
			default:
				errs = append(errs, fmt.Errorf("failed to remove %s: %w", full, err))
			}
		}
	}

	b.tracker.Reset()
	if err := b.tracker.Delete(); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove dependency cache: %w", err))
	}
	b.mu.Lock()
	b.statuses = make(map[string]events.Status)
	b.mu.Unlock()

	logger.Info("🧹 Outputs cleaned.", "files_removed", removed)
	return removed, errors.Join(errs...)
}
