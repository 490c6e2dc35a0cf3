// Package pixel encodes RGB colors into framebuffer pixel byte sequences.
//
// The set of encodings is closed: a Format is resolved once from the
// framebuffer bit depth and then used for every write.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for bit depths other than 16, 24 and 32.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Format is a framebuffer pixel encoding.
type Format uint8

const (
	// RGB565 packs red, green and blue into a host-endian 16-bit word.
	RGB565 Format = iota + 1
	// RGB888 stores the raw [r, g, b] triple.
	RGB888
	// BGRA8888 stores [b, g, r, 0xFF] with an opaque alpha byte.
	BGRA8888
)

// FormatForDepth resolves the encoding for a framebuffer bit depth.
func FormatForDepth(bpp int) (Format, error) {
	switch bpp {
	case 16:
		return RGB565, nil
	case 24:
		return RGB888, nil
	case 32:
		return BGRA8888, nil
	default:
		return 0, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, bpp)
	}
}

// Depth returns the number of bits per pixel.
func (f Format) Depth() int {
	return f.BytesPerPixel() * 8
}

// BytesPerPixel returns the encoded size of one pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB565:
		return 2
	case RGB888:
		return 3
	case BGRA8888:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case RGB565:
		return "RGB565"
	case RGB888:
		return "RGB888"
	case BGRA8888:
		return "BGRA8888"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Pack returns the encoded bytes of c.
func (f Format) Pack(c Color) []byte {
	return f.AppendPacked(make([]byte, 0, f.BytesPerPixel()), c)
}

// AppendPacked appends the encoded bytes of c to dst.
func (f Format) AppendPacked(dst []byte, c Color) []byte {
	switch f {
	case RGB565:
		return binary.NativeEndian.AppendUint16(dst, Pack565(c))
	case RGB888:
		return append(dst, c.R, c.G, c.B)
	case BGRA8888:
		return append(dst, c.B, c.G, c.R, 0xFF)
	default:
		return dst
	}
}

// Pack565 returns the 5-6-5 word of c.
func Pack565(c Color) uint16 {
	return uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B>>3)
}
