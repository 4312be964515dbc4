// Package font provides FontProcessor. It rasterises a TrueType or OpenType
// font at a fixed size into an 8-bit alpha atlas and writes the atlas
// together with per-glyph placement metrics as a .fnt file.
package font

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/registry"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Name is the registered processor name.
const Name = "FontProcessor"

// asciiPrintable is the character set used when none is configured.
const asciiPrintable = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the processor with the registry.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(New)
}

// Options are the decoded parameters of the processor.
type Options struct {
	Size       float64 `cty:"size"`
	DPI        float64 `cty:"dpi"`
	Padding    int     `cty:"padding"`
	Hinting    string  `cty:"hinting"`
	Characters string  `cty:"characters"`
}

// Processor bakes fonts into glyph atlases.
type Processor struct{}

// New creates a processor instance.
func New() processor.Processor {
	return &Processor{}
}

var descriptor = &processor.Descriptor{
	Name:        Name,
	Description: "Rasterises a TrueType or OpenType font into a glyph atlas.",
	Icon:        "font",
	Parameters: []*processor.Parameter{
		{Name: "size", Description: "Font size in points.", Category: "Glyphs", Type: processor.TypeFloat, Default: "16"},
		{Name: "dpi", Description: "Resolution used to convert points into pixels.", Category: "Glyphs", Type: processor.TypeFloat, Default: "72"},
		{Name: "padding", Description: "Empty pixels kept around every glyph in the atlas.", Category: "Atlas", Type: processor.TypeInt, Default: "1"},
		{
			Name:        "hinting",
			Description: "Glyph outline hinting.",
			Category:    "Glyphs",
			Type:        processor.TypeEnum,
			Default:     "none",
			Values:      []string{"none", "vertical", "full"},
		},
		{Name: "characters", Description: "Characters to bake. Empty bakes printable ASCII.", Category: "Glyphs", Type: processor.TypeString, Default: ""},
	},
	Extensions: []string{"ttf", "otf"},
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
	if opts.Size <= 0 || opts.DPI <= 0 {
		ctx.Error(fmt.Sprintf("size and dpi must be positive, got %g and %g", opts.Size, opts.DPI))
		return nil
	}
	if opts.Padding < 0 {
		ctx.Error(fmt.Sprintf("padding must not be negative, got %d", opts.Padding))
		return nil
	}

	asset := ctx.Asset().Path
	data, err := os.ReadFile(filepath.Join(ctx.SourceFolder(), filepath.FromSlash(asset)))
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		ctx.Error(fmt.Sprintf("failed to parse font: %v", err))
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     opts.DPI,
		Hinting: hintingFor(opts.Hinting),
	})
	if err != nil {
		ctx.Error(fmt.Sprintf("failed to create font face: %v", err))
		return nil
	}
	defer face.Close()

	chars := opts.Characters
	if chars == "" {
		chars = asciiPrintable
	}
	runes, missing := coverage(f, chars)
	if len(missing) > 0 {
		ctx.Warn(fmt.Sprintf("Font has no glyph for %q; skipped.", string(missing)))
	}

	baked, err := bake(face, runes, opts.Padding)
	if err != nil {
		return err
	}
	m := face.Metrics()
	baked.Size = float32(opts.Size)
	baked.Ascent = int32(m.Ascent.Ceil())
	baked.Descent = int32(m.Descent.Ceil())
	baked.LineHeight = int32(m.Height.Ceil())
	ctx.Verbose(fmt.Sprintf("Baked %d glyphs into a %dx%d atlas.", len(baked.Glyphs), baked.Atlas.Rect.Dx(), baked.Atlas.Rect.Dy()))

	out := strings.TrimSuffix(asset, path.Ext(asset)) + ".fnt"
	if err := fsutil.WriteFileAtomic(filepath.Join(ctx.OutputFolder(), filepath.FromSlash(out)), baked.Encode(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return ctx.AddOutputDependency(out)
}

func hintingFor(s string) xfont.Hinting {
	switch s {
	case "vertical":
		return xfont.HintingVertical
	case "full":
		return xfont.HintingFull
	default:
		return xfont.HintingNone
	}
}

// coverage splits chars into runes the font maps to a glyph and runes it
// does not. Duplicates are dropped.
func coverage(f *sfnt.Font, chars string) (present, missing []rune) {
	var buf sfnt.Buffer
	seen := make(map[rune]struct{})
	for _, r := range chars {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			missing = append(missing, r)
			continue
		}
		present = append(present, r)
	}
	return present, missing
}
