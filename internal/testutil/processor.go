package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
)

// Call is one recorded invocation of a FakeProcessor.
type Call struct {
	Asset      string
	Bundle     string
	Parameters map[string]string
}

// FakeProcessor is a processor whose behaviour is supplied by the test. By
// default it copies the source file to "<name>.out" in the output folder and
// declares that output.
type FakeProcessor struct {
	Descriptor *processor.Descriptor
	// Run replaces the default behaviour when set.
	Run func(ctx processor.Context) error

	mu    sync.Mutex
	calls []Call
}

// NewFakeProcessor creates a fake named name handling the given extension
// patterns and declaring params.
func NewFakeProcessor(name string, extensions []string, params ...*processor.Parameter) *FakeProcessor {
	return &FakeProcessor{Descriptor: &processor.Descriptor{
		Name:       name,
		Extensions: extensions,
		Parameters: params,
	}}
}

func (f *FakeProcessor) Describe() *processor.Descriptor { return f.Descriptor }

func (f *FakeProcessor) Process(ctx processor.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Asset:      ctx.Asset().Path,
		Bundle:     ctx.Bundle().Name,
		Parameters: ctx.Parameters().Map(),
	})
	f.mu.Unlock()

	if f.Run != nil {
		return f.Run(ctx)
	}
	return CopyToOutput(ctx, ".out")
}

// Calls returns the recorded invocations in order.
func (f *FakeProcessor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Module returns a registry.Module registering f. Every CreateInstance
// returns f itself so the test can inspect its calls.
func (f *FakeProcessor) Module() registry.Module {
	return moduleFunc(func(r *registry.Registry) error {
		return r.RegisterDescriptor(f.Descriptor, func() processor.Processor { return f })
	})
}

type moduleFunc func(r *registry.Registry) error

func (m moduleFunc) Register(r *registry.Registry) error { return m(r) }

// CopyToOutput copies the asset's source file into the output folder, with
// its extension replaced by ext, and declares the output.
func CopyToOutput(ctx processor.Context, ext string) error {
	src := filepath.Join(ctx.SourceFolder(), filepath.FromSlash(ctx.Asset().Path))
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	rel := strings.TrimSuffix(ctx.Asset().Path, filepath.Ext(ctx.Asset().Path)) + ext
	if err := fsutil.WriteFileAtomic(filepath.Join(ctx.OutputFolder(), filepath.FromSlash(rel)), data, 0o644); err != nil {
		return err
	}
	return ctx.AddOutputDependency(rel)
}
