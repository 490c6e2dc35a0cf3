package adc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// DefaultBaudRate matches the firmware UART.
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds a single Read.
	DefaultReadTimeout = 500 * time.Millisecond

	maxLineLength = 64
	maxBadLines   = 8
)

// ErrTimeout is returned when no complete line arrives within the read timeout.
var ErrTimeout = errors.New("serial read timeout")

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
	USB         bool
	VID, PID    string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		desc := d.Product
		if desc == "" {
			desc = d.Name
		}
		result = append(result, Port{
			Name:        d.Name,
			Description: desc,
			USB:         d.IsUSB,
			VID:         d.VID,
			PID:         d.PID,
		})
	}
	return result, nil
}

// Serial reads "raw_x,raw_y,scale" lines streamed by the joystick firmware.
type Serial struct {
	port     string
	baudRate int
	timeout  time.Duration

	mu    sync.Mutex
	conn  io.ReadCloser
	buf   []byte
	chunk [maxLineLength]byte
	log   *logrus.Entry
}

// NewSerial creates a serial source. Zero values select the defaults.
func NewSerial(port string, baudRate int, timeout time.Duration) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
		timeout:  timeout,
		log:      logrus.WithFields(logrus.Fields{"component": "adc", "port": port}),
	}
}

// Open opens the serial port.
func (d *Serial) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return ErrAlreadyOpen
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open serial port %s", d.port)
	}
	if err := port.SetReadTimeout(d.timeout); err != nil {
		port.Close()
		return pkgerrors.Wrapf(err, "failed to set read timeout on %s", d.port)
	}

	d.attach(port)
	return nil
}

func (d *Serial) attach(conn io.ReadCloser) {
	d.conn = conn
	d.buf = d.buf[:0]
}

// Read returns the next well-formed line. Malformed lines are skipped, up
// to a bounded number per call.
func (d *Serial) Read() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return Sample{}, ErrNotOpen
	}

	for i := 0; i < maxBadLines; i++ {
		line, err := d.readLine()
		if err != nil {
			return Sample{}, pkgerrors.Wrapf(err, "failed to read from %s", d.port)
		}
		if line == "" {
			continue
		}

		s, err := parseLine(line)
		if err != nil {
			d.log.WithError(err).Warnf("Skipping line %q", line)
			continue
		}
		return s, nil
	}

	return Sample{}, fmt.Errorf("%d malformed lines in a row from %s", maxBadLines, d.port)
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// readLine returns the next newline-terminated line without the terminator.
func (d *Serial) readLine() (string, error) {
	for {
		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(d.buf[:i]))
			d.buf = append(d.buf[:0], d.buf[i+1:]...)
			return line, nil
		}
		if len(d.buf) > maxLineLength {
			// Garbage without a terminator; resynchronise on the next newline.
			d.buf = d.buf[:0]
		}

		n, err := d.conn.Read(d.chunk[:])
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
			continue
		}
		if err != nil {
			return "", err
		}
		// go.bug.st/serial reports a timeout as (0, nil).
		return "", ErrTimeout
	}
}

// parseLine parses a line from the firmware into a Sample.
// Format: raw_x,raw_y,scale where scale is millivolts per count.
// Example: 2048,1990,0.805664
func parseLine(line string) (Sample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Sample{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	x, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid x reading: %w", err)
	}
	y, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid y reading: %w", err)
	}
	scale, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid scale: %w", err)
	}
	if scale <= 0 {
		return Sample{}, fmt.Errorf("scale out of range: %g", scale)
	}

	return Sample{
		X: Voltage(float64(x), scale),
		Y: Voltage(float64(y), scale),
	}, nil
}
