package fb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrGeometry is returned when the display geometry cannot be discovered.
var ErrGeometry = errors.New("framebuffer geometry unavailable")

// fbioGetVScreenInfo is FBIOGET_VSCREENINFO from linux/fb.h.
const fbioGetVScreenInfo = 0x4600

// Geometry describes the framebuffer. It is constant for the process lifetime.
type Geometry struct {
	Width        int
	Height       int
	BitsPerPixel int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d, %d bpp", g.Width, g.Height, g.BitsPerPixel)
}

func (g Geometry) validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrGeometry, g.Width, g.Height)
	}
	if g.BitsPerPixel <= 0 {
		return fmt.Errorf("%w: invalid depth %d", ErrGeometry, g.BitsPerPixel)
	}
	return nil
}

// ReadGeometry reads virtual_size and bits_per_pixel from a framebuffer
// sysfs directory such as /sys/class/graphics/fb0.
func ReadGeometry(sysfsDir string) (Geometry, error) {
	size, err := readTrimmed(filepath.Join(sysfsDir, "virtual_size"))
	if err != nil {
		return Geometry{}, err
	}
	w, h, ok := strings.Cut(size, ",")
	if !ok {
		return Geometry{}, fmt.Errorf("%w: malformed virtual_size %q", ErrGeometry, size)
	}

	var g Geometry
	if g.Width, err = strconv.Atoi(strings.TrimSpace(w)); err != nil {
		return Geometry{}, fmt.Errorf("%w: width: %v", ErrGeometry, err)
	}
	if g.Height, err = strconv.Atoi(strings.TrimSpace(h)); err != nil {
		return Geometry{}, fmt.Errorf("%w: height: %v", ErrGeometry, err)
	}

	depth, err := readTrimmed(filepath.Join(sysfsDir, "bits_per_pixel"))
	if err != nil {
		return Geometry{}, err
	}
	if g.BitsPerPixel, err = strconv.Atoi(depth); err != nil {
		return Geometry{}, fmt.Errorf("%w: bits_per_pixel: %v", ErrGeometry, err)
	}

	return g, g.validate()
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	XRes, YRes               uint32
	XResVirtual, YResVirtual uint32
	XOffset, YOffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp [3]uint32
	NonStd                   uint32
	Activate                 uint32
	Height, Width            uint32
	AccelFlags               uint32
	PixClock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HSyncLen, VSyncLen       uint32
	Sync, VMode              uint32
	Rotate, Colorspace       uint32
	Reserved                 [4]uint32
}

// QueryGeometry asks the framebuffer driver for its virtual resolution and depth.
func QueryGeometry(devicePath string) (Geometry, error) {
	f, err := os.Open(devicePath)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	defer f.Close()

	var info varScreenInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return Geometry{}, fmt.Errorf("%w: FBIOGET_VSCREENINFO on %s: %v", ErrGeometry, devicePath, errno)
	}

	g := Geometry{
		Width:        int(info.XResVirtual),
		Height:       int(info.YResVirtual),
		BitsPerPixel: int(info.BitsPerPixel),
	}
	return g, g.validate()
}

// Discover tries sysfs first and falls back to the ioctl on the device node.
func Discover(sysfsDir, devicePath string) (Geometry, error) {
	g, sysErr := ReadGeometry(sysfsDir)
	if sysErr == nil {
		return g, nil
	}
	g, ioErr := QueryGeometry(devicePath)
	if ioErr == nil {
		return g, nil
	}
	return Geometry{}, pkgerrors.Wrapf(ioErr, "sysfs: %v", sysErr)
}

func readTrimmed(name string) (string, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	return strings.TrimSpace(string(b)), nil
}
