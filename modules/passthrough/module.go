// Package passthrough provides PassThroughProcessor, which copies an asset to
// the output folder unchanged. It matches every extension and is the
// fallback for files no specialised processor claims.
package passthrough

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
)

// Name is the registered processor name.
const Name = "PassThroughProcessor"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the processor with the registry.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(New)
}

// Options are the decoded parameters of the processor.
type Options struct {
	OutputExtension string `cty:"output_extension"`
}

// Processor copies its asset byte for byte.
type Processor struct{}

// New creates a processor instance.
func New() processor.Processor {
	return &Processor{}
}

var descriptor = &processor.Descriptor{
	Name:        Name,
	Description: "Copies the source file to the output folder unchanged.",
	Icon:        "file",
	Parameters: []*processor.Parameter{
		{
			Name:        "output_extension",
			Description: "Replaces the file extension of the copy. Empty keeps the original one.",
			Category:    "Output",
			Type:        processor.TypeString,
			Default:     "",
		},
	},
	Extensions: []string{"*"},
}

// Describe implements processor.Processor.
func (p *Processor) Describe() *processor.Descriptor {
	return descriptor
}

// Process implements processor.Processor.
func (p *Processor) Process(ctx processor.Context) error {
	var opts Options
	if err := processor.Decode(ctx.Parameters(), descriptor, &opts); err != nil {
		return err
	}

	asset := ctx.Asset().Path
	data, err := os.ReadFile(filepath.Join(ctx.SourceFolder(), filepath.FromSlash(asset)))
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	out := OutputName(asset, opts.OutputExtension)
	if err := fsutil.WriteFileAtomic(filepath.Join(ctx.OutputFolder(), filepath.FromSlash(out)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	ctx.Verbose(fmt.Sprintf("Copied %d bytes to %s.", len(data), out))
	return ctx.AddOutputDependency(out)
}

// OutputName returns the output path of asset with its extension replaced by
// ext. An empty ext keeps the path as is.
func OutputName(asset, ext string) string {
	if ext == "" {
		return asset
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(asset, path.Ext(asset)) + ext
}
