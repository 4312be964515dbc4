package font

import (
	"fmt"
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// glyphImage is a rasterised glyph before packing.
type glyphImage struct {
	glyph Glyph
	mask  *image.Alpha
}

// bake rasterises runes with face and shelf-packs them into a square-ish,
// power-of-two-wide atlas.
func bake(face xfont.Face, runes []rune, padding int) (*Font, error) {
	images := make([]glyphImage, 0, len(runes))
	area := 0
	for _, r := range runes {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			return nil, fmt.Errorf("failed to rasterise %q", r)
		}
		// The face reuses its mask buffer, so every glyph is copied out.
		img := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
		if mask != nil && !dr.Empty() {
			draw.Draw(img, img.Bounds(), mask, maskp, draw.Src)
		}
		images = append(images, glyphImage{
			glyph: Glyph{
				Rune:    r,
				Width:   dr.Dx(),
				Height:  dr.Dy(),
				OffsetX: dr.Min.X,
				OffsetY: dr.Min.Y,
				Advance: float32(advance) / 64,
			},
			mask: img,
		})
		area += (dr.Dx() + 2*padding) * (dr.Dy() + 2*padding)
	}

	// Tallest first keeps shelves tight.
	order := make([]int, len(images))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return images[order[a]].glyph.Height > images[order[b]].glyph.Height
	})

	width := 64
	for width*width < area {
		width *= 2
	}
	for _, g := range images {
		for g.glyph.Width+2*padding > width {
			width *= 2
		}
	}

	x, y, shelf := 0, 0, 0
	for _, i := range order {
		g := &images[i].glyph
		w, h := g.Width+2*padding, g.Height+2*padding
		if x+w > width {
			x, y, shelf = 0, y+shelf, 0
		}
		g.X, g.Y = x+padding, y+padding
		x += w
		shelf = max(shelf, h)
	}
	height := nextPowerOfTwo(y + shelf)

	atlas := image.NewAlpha(image.Rect(0, 0, width, height))
	glyphs := make([]Glyph, len(images))
	for i, gi := range images {
		g := gi.glyph
		draw.Draw(atlas, image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height), gi.mask, image.Point{}, draw.Src)
		glyphs[i] = g
	}
	return &Font{Glyphs: glyphs, Atlas: atlas}, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
