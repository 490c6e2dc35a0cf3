package pixel

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForDepth(t *testing.T) {
	tests := []struct {
		bpp     int
		want    Format
		size    int
		wantErr bool
	}{
		{bpp: 16, want: RGB565, size: 2},
		{bpp: 24, want: RGB888, size: 3},
		{bpp: 32, want: BGRA8888, size: 4},
		{bpp: 8, wantErr: true},
		{bpp: 15, wantErr: true},
		{bpp: 0, wantErr: true},
		{bpp: 64, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dbpp", tt.bpp), func(t *testing.T) {
			got, err := FormatForDepth(tt.bpp)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.size, got.BytesPerPixel())
			assert.Equal(t, tt.bpp, got.Depth())
		})
	}
}

func TestPack_RGB888(t *testing.T) {
	assert.Equal(t, []byte{12, 34, 56}, RGB888.Pack(Color{R: 12, G: 34, B: 56}))
	assert.Equal(t, []byte{255, 255, 255}, RGB888.Pack(White))
}

func TestPack_BGRA8888(t *testing.T) {
	assert.Equal(t, []byte{56, 34, 12, 255}, BGRA8888.Pack(Color{R: 12, G: 34, B: 56}))
	assert.Equal(t, []byte{0, 0, 0, 255}, BGRA8888.Pack(Black))
}

func TestPack_RGB565(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		want  uint16
	}{
		{name: "white", color: White, want: 0xF800 | 0x07E0 | 0x001F},
		{name: "black", color: Black, want: 0},
		{name: "red", color: Color{R: 255}, want: 0xF800},
		{name: "green", color: Color{G: 255}, want: 0x07E0},
		{name: "blue", color: Color{B: 255}, want: 0x001F},
		{name: "low bits dropped", color: Color{R: 0x07, G: 0x03, B: 0x07}, want: 0},
		{name: "mixed", color: Color{R: 0x88, G: 0x44, B: 0x22}, want: 0x8800 | 0x0220 | 0x0004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pack565(tt.color))

			b := RGB565.Pack(tt.color)
			require.Len(t, b, 2)
			assert.Equal(t, tt.want, binary.NativeEndian.Uint16(b))
		})
	}
}

func TestAppendPacked(t *testing.T) {
	dst := []byte{1}
	dst = BGRA8888.AppendPacked(dst, Color{R: 1, G: 2, B: 3})
	dst = RGB888.AppendPacked(dst, Color{R: 4, G: 5, B: 6})
	assert.Equal(t, []byte{1, 3, 2, 1, 255, 4, 5, 6}, dst)
}

func TestUnknownFormat(t *testing.T) {
	var f Format
	assert.Equal(t, 0, f.BytesPerPixel())
	assert.Empty(t, f.Pack(White))
	assert.Equal(t, "Format(0)", f.String())
}
