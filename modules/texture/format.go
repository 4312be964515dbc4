package texture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

// Magic identifies a .tex file.
var Magic = [4]byte{'A', 'F', 'T', 'X'}

// FormatVersion is the version of the .tex layout written by Encode.
const FormatVersion uint16 = 1

const flagPremultiplied uint16 = 1 << 0

// Texture is the in-memory form of a .tex file. The layout, little-endian:
//
//	magic    [4]byte "AFTX"
//	version  uint16
//	flags    uint16  bit 0: premultiplied alpha
//	levels   uint32
//	per level:
//	  width  uint32
//	  height uint32
//	  pixels [width*height*4]byte RGBA8, row-major, top row first
type Texture struct {
	Premultiplied bool
	Levels        []Level
}

// Level is one mip level.
type Level struct {
	Width, Height int
	Pix           []byte
}

func levelFrom(img *image.NRGBA, premultiply bool) Level {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		if !premultiply {
			pix = append(pix, row...)
			continue
		}
		for x := 0; x < len(row); x += 4 {
			a := uint32(row[x+3])
			pix = append(pix,
				byte((uint32(row[x])*a+127)/255),
				byte((uint32(row[x+1])*a+127)/255),
				byte((uint32(row[x+2])*a+127)/255),
				row[x+3],
			)
		}
	}
	return Level{Width: w, Height: h, Pix: pix}
}

// Encode serialises t.
func (t *Texture) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	var flags uint16
	if t.Premultiplied {
		flags |= flagPremultiplied
	}
	_ = binary.Write(&buf, binary.LittleEndian, FormatVersion)
	_ = binary.Write(&buf, binary.LittleEndian, flags)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(t.Levels)))
	for _, l := range t.Levels {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(l.Width))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(l.Height))
		buf.Write(l.Pix)
	}
	return buf.Bytes()
}

// Decode parses a .tex file.
func Decode(data []byte) (*Texture, error) {
	r := bytes.NewReader(data)
	var header struct {
		Magic   [4]byte
		Version uint16
		Flags   uint16
		Levels  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != Magic {
		return nil, errors.New("not a texture file")
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported texture version %d", header.Version)
	}

	t := &Texture{Premultiplied: header.Flags&flagPremultiplied != 0}
	for i := uint32(0); i < header.Levels; i++ {
		var size [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		n := int(size[0]) * int(size[1]) * 4
		if n > r.Len() {
			return nil, fmt.Errorf("level %d: truncated pixel data", i)
		}
		pix := make([]byte, n)
		if _, err := io.ReadFull(r, pix); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		t.Levels = append(t.Levels, Level{Width: int(size[0]), Height: int(size[1]), Pix: pix})
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Len())
	}
	return t, nil
}
