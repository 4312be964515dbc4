package texture

import (
	"image"

	"golang.org/x/image/draw"
)

func scalerFor(filter string) draw.Scaler {
	switch filter {
	case "nearest":
		return draw.NearestNeighbor
	case "catmullrom":
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// toNRGBA copies src into a zero-origin NRGBA image.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// fit scales src down, keeping its aspect ratio, so that neither side exceeds
// maxSize. A maxSize of 0 only normalises the pixel format.
func fit(src image.Image, maxSize int, scaler draw.Scaler) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return toNRGBA(src)
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// mipChain returns base followed by successive halvings down to 1x1.
func mipChain(base *image.NRGBA, scaler draw.Scaler) []*image.NRGBA {
	levels := []*image.NRGBA{base}
	cur := base
	for cur.Bounds().Dx() > 1 || cur.Bounds().Dy() > 1 {
		w := max(1, cur.Bounds().Dx()/2)
		h := max(1, cur.Bounds().Dy()/2)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		scaler.Scale(next, next.Bounds(), cur, cur.Bounds(), draw.Src, nil)
		levels = append(levels, next)
		cur = next
	}
	return levels
}
