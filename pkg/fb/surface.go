package fb

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/itohio/joycursor/pkg/pixel"
)

// Surface is a clipped pixel view over a Device. Only overwrites are issued,
// never reads.
type Surface struct {
	dev    Device
	geom   Geometry
	format pixel.Format
	bpp    int

	row []byte // scratch row, reused between draws
}

// New binds dev to geom. An unsupported bit depth fails before anything is written.
func New(dev Device, geom Geometry) (*Surface, error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}
	format, err := pixel.FormatForDepth(geom.BitsPerPixel)
	if err != nil {
		return nil, err
	}

	return &Surface{
		dev:    dev,
		geom:   geom,
		format: format,
		bpp:    format.BytesPerPixel(),
	}, nil
}

func (s *Surface) Width() int           { return s.geom.Width }
func (s *Surface) Height() int          { return s.geom.Height }
func (s *Surface) Format() pixel.Format { return s.format }
func (s *Surface) Geometry() Geometry   { return s.geom }

// Size returns the number of bytes covered by the surface.
func (s *Surface) Size() int {
	return s.geom.Width * s.geom.Height * s.bpp
}

// DrawRect fills [cx-w/2, cx+w/2] x [cy-h/2, cy+h/2] clipped to the surface.
// Each clipped row is written with a single WriteAt.
func (s *Surface) DrawRect(cx, cy, w, h int, c pixel.Color) error {
	halfW, halfH := w/2, h/2

	x0 := max(0, cx-halfW)
	x1 := min(s.geom.Width, cx+halfW+1)
	y0 := max(0, cy-halfH)
	y1 := min(s.geom.Height, cy+halfH+1)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	s.row = s.fill(x1-x0, c)
	for y := y0; y < y1; y++ {
		if err := s.writeAt(x0, y); err != nil {
			return err
		}
	}
	return nil
}

// Clear fills the whole surface with c.
func (s *Surface) Clear(c pixel.Color) error {
	s.row = s.fill(s.geom.Width, c)
	for y := 0; y < s.geom.Height; y++ {
		if err := s.writeAt(0, y); err != nil {
			return err
		}
	}
	return nil
}

// Flush makes all writes since the last flush visible.
func (s *Surface) Flush() error {
	return s.dev.Flush()
}

func (s *Surface) offset(x, y int) int64 {
	return int64((y*s.geom.Width + x) * s.bpp)
}

func (s *Surface) writeAt(x, y int) error {
	if _, err := s.dev.WriteAt(s.row, s.offset(x, y)); err != nil {
		return pkgerrors.Wrapf(err, "failed to write row %d at column %d", y, x)
	}
	return nil
}

// fill returns the scratch row holding n pixels of c.
func (s *Surface) fill(n int, c pixel.Color) []byte {
	row := s.format.AppendPacked(s.row[:0], c)
	for len(row) < n*s.bpp {
		row = append(row, row[:min(len(row), n*s.bpp-len(row))]...)
	}
	return row
}
