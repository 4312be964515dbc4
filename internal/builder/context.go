package builder

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/params"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/tracker"
)

// BuildContext is the processor.Context of one (asset, variant) build
// attempt. It is not safe for concurrent use; a processor that fans out work
// must report back on its own goroutine.
type BuildContext struct {
	ctx      context.Context
	asset    *content.Asset
	bundle   *content.Bundle
	params   *params.Set
	subject  tracker.Subject
	tracker  *tracker.Tracker
	listener events.Listener

	sourceFolder string
	outputRoot   string

	numErrors   int
	numWarnings int
	inputs      []string
	outputs     []string
}

var _ processor.Context = (*BuildContext)(nil)

func newBuildContext(ctx context.Context, c *content.Content, v variant, subject tracker.Subject, tr *tracker.Tracker, l events.Listener) *BuildContext {
	return &BuildContext{
		ctx:          ctx,
		asset:        v.asset,
		bundle:       v.bundle,
		params:       v.params,
		subject:      subject,
		tracker:      tr,
		listener:     l,
		sourceFolder: c.SourceRoot,
		outputRoot:   c.OutputRoot,
	}
}

func (c *BuildContext) Context() context.Context { return c.ctx }

func (c *BuildContext) Log(msg string)     { c.emit(events.LevelInfo, msg) }
func (c *BuildContext) Verbose(msg string) { c.emit(events.LevelVerbose, msg) }

func (c *BuildContext) Warn(msg string) {
	c.numWarnings++
	c.emit(events.LevelWarning, msg)
}

func (c *BuildContext) Error(msg string) {
	c.numErrors++
	c.emit(events.LevelError, msg)
}

func (c *BuildContext) LogException(err error, generateError bool) {
	msg := fmt.Sprintf("Exception: %+v", err)
	if generateError {
		c.Error(msg)
		return
	}
	c.emit(events.LevelWarning, msg)
}

// AddInputDependency records rel, relative to the source root, as an input of
// the asset under build.
func (c *BuildContext) AddInputDependency(rel string) error {
	rel = content.CleanPath(rel)
	if err := c.tracker.AddInputDependency(c.subject, rel); err != nil {
		return err
	}
	c.inputs = append(c.inputs, rel)
	return nil
}

// AddOutputDependency records rel, relative to this variant's output folder,
// as an output of the asset under build.
func (c *BuildContext) AddOutputDependency(rel string) error {
	full := path.Join(c.bundle.OutputFolder(), content.CleanPath(rel))
	if err := c.tracker.AddOutputDependency(c.subject, full); err != nil {
		return err
	}
	c.outputs = append(c.outputs, full)
	return nil
}

func (c *BuildContext) NumErrors() int   { return c.numErrors }
func (c *BuildContext) NumWarnings() int { return c.numWarnings }

func (c *BuildContext) Parameters() *params.Set { return c.params }

func (c *BuildContext) SourceFolder() string { return c.sourceFolder }

func (c *BuildContext) OutputFolder() string {
	return filepath.Join(c.outputRoot, filepath.FromSlash(c.bundle.OutputFolder()))
}

func (c *BuildContext) Asset() *content.Asset   { return c.asset }
func (c *BuildContext) Bundle() *content.Bundle { return c.bundle }

// Inputs returns the inputs declared through this context, relative to the
// source root. The asset's own path, recorded by the builder, is not included.
func (c *BuildContext) Inputs() []string {
	return c.inputs
}

// Outputs returns the declared outputs, relative to the content output root,
// in declaration order.
func (c *BuildContext) Outputs() []string {
	return c.outputs
}

func (c *BuildContext) emit(level events.Level, msg string) {
	c.listener.OnLog(events.LogEvent{
		Asset:   c.asset.Path,
		Bundle:  c.bundle.Name,
		Level:   level,
		Message: msg,
		Time:    time.Now(),
	})
}
