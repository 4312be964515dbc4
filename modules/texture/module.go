// Package texture provides Texture2DProcessor. It decodes PNG, JPEG, GIF, BMP
// and TIFF images, optionally scales them down and premultiplies alpha, and
// writes a .tex file holding raw RGBA8 pixels for every mip level.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Name is the registered processor name.
const Name = "Texture2DProcessor"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the processor with the registry.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(New)
}

// Options are the decoded parameters of the processor.
type Options struct {
	MaxSize         int    `cty:"max_size"`
	Filter          string `cty:"filter"`
	Premultiply     bool   `cty:"premultiply"`
	GenerateMipmaps bool   `cty:"generate_mipmaps"`
}

// Processor converts images into .tex files.
type Processor struct{}

// New creates a processor instance.
func New() processor.Processor {
	return &Processor{}
}

var descriptor = &processor.Descriptor{
	Name:        Name,
	Description: "Converts an image into an uncompressed RGBA8 texture.",
	Icon:        "image",
	Parameters: []*processor.Parameter{
		{
			Name:        "max_size",
			Description: "Largest allowed width or height in pixels. 0 keeps the source size.",
			Category:    "Size",
			Type:        processor.TypeInt,
			Default:     "0",
		},
		{
			Name:        "filter",
			Description: "Resampling filter used for scaling and mip generation.",
			Category:    "Size",
			Type:        processor.TypeEnum,
			Default:     "bilinear",
			Values:      []string{"nearest", "bilinear", "catmullrom"},
		},
		{
			Name:        "premultiply",
			Description: "Stores colour channels multiplied by alpha.",
			Category:    "Pixels",
			Type:        processor.TypeBool,
			Default:     "false",
		},
		{
			Name:        "generate_mipmaps",
			Description: "Appends successive half-size levels down to 1x1.",
			Category:    "Pixels",
			Type:        processor.TypeBool,
			Default:     "false",
		},
	},
	Extensions: []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff"},
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
	if opts.MaxSize < 0 {
		ctx.Error(fmt.Sprintf("max_size must not be negative, got %d", opts.MaxSize))
		return nil
	}

	asset := ctx.Asset().Path
	data, err := os.ReadFile(filepath.Join(ctx.SourceFolder(), filepath.FromSlash(asset)))
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		ctx.Error(fmt.Sprintf("failed to decode image: %v", err))
		return nil
	}
	b := src.Bounds()
	ctx.Verbose(fmt.Sprintf("Decoded %s image, %dx%d.", format, b.Dx(), b.Dy()))

	scaler := scalerFor(opts.Filter)
	base := fit(src, opts.MaxSize, scaler)
	if nb := base.Bounds(); nb.Dx() != b.Dx() || nb.Dy() != b.Dy() {
		ctx.Log(fmt.Sprintf("Scaled from %dx%d to %dx%d.", b.Dx(), b.Dy(), nb.Dx(), nb.Dy()))
	}
	if opts.GenerateMipmaps && (!isPowerOfTwo(base.Bounds().Dx()) || !isPowerOfTwo(base.Bounds().Dy())) {
		ctx.Warn("Texture size is not a power of two; mip levels will not halve evenly.")
	}

	levels := []*image.NRGBA{base}
	if opts.GenerateMipmaps {
		levels = mipChain(base, scaler)
	}

	tex := &Texture{Premultiplied: opts.Premultiply}
	for _, lvl := range levels {
		tex.Levels = append(tex.Levels, levelFrom(lvl, opts.Premultiply))
	}

	out := strings.TrimSuffix(asset, path.Ext(asset)) + ".tex"
	if err := fsutil.WriteFileAtomic(filepath.Join(ctx.OutputFolder(), filepath.FromSlash(out)), tex.Encode(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return ctx.AddOutputDependency(out)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
