package adc

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/joycursor/pkg/config"
)

// Mock simulates an analog joystick for testing and development.
//
// It rests at the configured center for the idle time, then sweeps a
// lopsided loop so that both sides of every axis have different travel.
// Time advances by one interval per Read, so output is deterministic.
type Mock struct {
	cfg      *config.MockConfig
	interval time.Duration
	vmax     float32

	mu     sync.Mutex
	opened bool
	step   int
}

// NewMock creates a new mocked joystick. A nil cfg uses the defaults.
func NewMock(cfg *config.MockConfig, interval time.Duration, vmax float64) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if interval <= 0 {
		interval = config.Default().Loop.Interval
	}
	if vmax <= 0 {
		vmax = config.Default().Calibration.VoltageMax
	}

	return &Mock{
		cfg:      cfg,
		interval: interval,
		vmax:     float32(vmax),
	}
}

// Open starts the simulation from t=0.
func (m *Mock) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opened {
		return ErrAlreadyOpen
	}
	m.opened = true
	m.step = 0
	return nil
}

// Read generates the next simulated sample.
func (m *Mock) Read() (Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return Sample{}, ErrNotOpen
	}

	t := float32((time.Duration(m.step) * m.interval).Seconds())
	m.step++

	center := float32(m.cfg.Center)
	amp := float32(m.cfg.Amplitude)
	x, y := center, center

	idle := float32(m.cfg.Idle.Seconds())
	if t >= idle && m.cfg.Period > 0 {
		phase := 2 * math32.Pi * (t - idle) / float32(m.cfg.Period.Seconds())
		sx, sy := math32.Sin(phase), math32.Sin(2*phase)
		// Shorter travel toward low voltages.
		if sx < 0 {
			sx *= 0.7
		}
		if sy < 0 {
			sy *= 0.8
		}
		x += amp * sx
		y += amp * 0.8 * sy
	}

	// Bounded pseudo-noise
	noise := float32(m.cfg.Noise)
	n := float32(m.step)
	x += noise * 0.5 * (math32.Sin(n*1.3) + math32.Cos(n*0.7))
	y += noise * 0.5 * (math32.Cos(n*1.1) + math32.Sin(n*0.9))

	return Sample{X: float64(m.clamp(x)), Y: float64(m.clamp(y))}, nil
}

// Close stops the simulation.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = false
	return nil
}

func (m *Mock) clamp(v float32) float32 {
	return math32.Max(0, math32.Min(m.vmax, v))
}
