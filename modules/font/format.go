package font

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
)

// Magic identifies a .fnt file.
var Magic = [4]byte{'A', 'F', 'F', 'N'}

// FormatVersion is the version of the .fnt layout written by Encode.
const FormatVersion uint16 = 1

// Font is the in-memory form of a .fnt file. All values are little-endian:
//
//	magic       [4]byte "AFFN"
//	version     uint16
//	reserved    uint16
//	size        float32 points
//	ascent      int32   pixels
//	descent     int32   pixels
//	line height int32   pixels
//	glyphs      uint32
//	per glyph:  rune uint32, x y w h uint16, offset x y int16, advance float32
//	atlas       width uint32, height uint32, width*height alpha bytes
type Font struct {
	Size       float32
	Ascent     int32
	Descent    int32
	LineHeight int32
	Glyphs     []Glyph
	Atlas      *image.Alpha
}

// Glyph places one character in the atlas. OffsetX and OffsetY are the
// position of the glyph's top-left corner relative to the pen on the
// baseline.
type Glyph struct {
	Rune             rune
	X, Y             int
	Width, Height    int
	OffsetX, OffsetY int
	Advance          float32
}

// Glyph returns the glyph baked for r.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	for _, g := range f.Glyphs {
		if g.Rune == r {
			return g, true
		}
	}
	return Glyph{}, false
}

type wireGlyph struct {
	Rune             uint32
	X, Y, W, H       uint16
	OffsetX, OffsetY int16
	Advance          float32
}

type wireHeader struct {
	Magic      [4]byte
	Version    uint16
	Reserved   uint16
	Size       float32
	Ascent     int32
	Descent    int32
	LineHeight int32
	Glyphs     uint32
}

// Encode serialises f.
func (f *Font) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, wireHeader{
		Magic:      Magic,
		Version:    FormatVersion,
		Size:       f.Size,
		Ascent:     f.Ascent,
		Descent:    f.Descent,
		LineHeight: f.LineHeight,
		Glyphs:     uint32(len(f.Glyphs)),
	})
	for _, g := range f.Glyphs {
		_ = binary.Write(&buf, binary.LittleEndian, wireGlyph{
			Rune:    uint32(g.Rune),
			X:       uint16(g.X),
			Y:       uint16(g.Y),
			W:       uint16(g.Width),
			H:       uint16(g.Height),
			OffsetX: int16(g.OffsetX),
			OffsetY: int16(g.OffsetY),
			Advance: g.Advance,
		})
	}
	b := f.Atlas.Rect
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(b.Dx()), uint32(b.Dy())})
	for y := 0; y < b.Dy(); y++ {
		start := y * f.Atlas.Stride
		buf.Write(f.Atlas.Pix[start : start+b.Dx()])
	}
	return buf.Bytes()
}

// Decode parses a .fnt file.
func Decode(data []byte) (*Font, error) {
	r := bytes.NewReader(data)
	var h wireHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if h.Magic != Magic {
		return nil, errors.New("not a font file")
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported font version %d", h.Version)
	}
	if h.Glyphs > math.MaxUint16 {
		return nil, fmt.Errorf("implausible glyph count %d", h.Glyphs)
	}

	f := &Font{Size: h.Size, Ascent: h.Ascent, Descent: h.Descent, LineHeight: h.LineHeight}
	wire := make([]wireGlyph, h.Glyphs)
	if err := binary.Read(r, binary.LittleEndian, wire); err != nil {
		return nil, fmt.Errorf("failed to read glyph table: %w", err)
	}
	for _, g := range wire {
		f.Glyphs = append(f.Glyphs, Glyph{
			Rune:    rune(g.Rune),
			X:       int(g.X),
			Y:       int(g.Y),
			Width:   int(g.W),
			Height:  int(g.H),
			OffsetX: int(g.OffsetX),
			OffsetY: int(g.OffsetY),
			Advance: g.Advance,
		})
	}

	var size [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("failed to read atlas size: %w", err)
	}
	n := int(size[0]) * int(size[1])
	if n != r.Len() {
		return nil, fmt.Errorf("atlas holds %d bytes, want %d", r.Len(), n)
	}
	f.Atlas = image.NewAlpha(image.Rect(0, 0, int(size[0]), int(size[1])))
	if _, err := io.ReadFull(r, f.Atlas.Pix); err != nil {
		return nil, fmt.Errorf("failed to read atlas: %w", err)
	}
	return f, nil
}
