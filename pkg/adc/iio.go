package adc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// IIO reads two voltage channels of a Linux Industrial I/O device through sysfs.
type IIO struct {
	dir string

	scalePath string
	xPath     string
	yPath     string

	mu     sync.Mutex
	opened bool
}

// NewIIO creates a source for channels in_voltage<chX>_raw and in_voltage<chY>_raw of dir.
func NewIIO(dir string, chX, chY int) *IIO {
	return &IIO{
		dir:       dir,
		scalePath: filepath.Join(dir, "in_voltage_scale"),
		xPath:     filepath.Join(dir, fmt.Sprintf("in_voltage%d_raw", chX)),
		yPath:     filepath.Join(dir, fmt.Sprintf("in_voltage%d_raw", chY)),
	}
}

// Open checks that the scale and both channel attributes exist.
func (d *IIO) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opened {
		return ErrAlreadyOpen
	}
	for _, p := range []string{d.scalePath, d.xPath, d.yPath} {
		if _, err := os.Stat(p); err != nil {
			return pkgerrors.Wrapf(err, "iio device %s", d.dir)
		}
	}
	d.opened = true
	return nil
}

// Read samples the shared scale and both channels.
func (d *IIO) Read() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return Sample{}, ErrNotOpen
	}

	scale, err := readFloat(d.scalePath)
	if err != nil {
		return Sample{}, err
	}
	x, err := readFloat(d.xPath)
	if err != nil {
		return Sample{}, err
	}
	y, err := readFloat(d.yPath)
	if err != nil {
		return Sample{}, err
	}

	return Sample{X: Voltage(x, scale), Y: Voltage(y, scale)}, nil
}

// Close releases the source. Sysfs attributes are opened per read.
func (d *IIO) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = false
	return nil
}

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read adc attribute")
	}
	s := strings.TrimSpace(string(b))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "invalid value %q in %s", s, path)
	}
	return v, nil
}
