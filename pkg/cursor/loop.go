// Package cursor runs the poll-compute-render cycle that moves the cursor.
package cursor

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/itohio/joycursor/pkg/adc"
	"github.com/itohio/joycursor/pkg/calibrate"
	"github.com/itohio/joycursor/pkg/config"
	"github.com/itohio/joycursor/pkg/fb"
	"github.com/itohio/joycursor/pkg/pixel"
)

// Frame is the outcome of one cycle.
type Frame struct {
	Time        time.Time
	Sample      adc.Sample
	Point       calibrate.Point
	Calibration calibrate.Snapshot
}

// Options controls cursor appearance and cadence.
type Options struct {
	Size       int
	Foreground pixel.Color
	Background pixel.Color
	Interval   time.Duration
}

// OptionsFrom builds Options from the display and loop configuration.
func OptionsFrom(cfg *config.Config) Options {
	fg, bg := cfg.Display.Foreground, cfg.Display.Background
	return Options{
		Size:       cfg.Display.CursorSize,
		Foreground: pixel.Color{R: fg.R, G: fg.G, B: fg.B},
		Background: pixel.Color{R: bg.R, G: bg.G, B: bg.B},
		Interval:   cfg.Loop.Interval,
	}
}

// Loop owns the last drawn cursor position. It is driven from one goroutine.
type Loop struct {
	src  adc.Source
	cal  *calibrate.Calibrator
	surf *fb.Surface
	opts Options

	last   calibrate.Point
	drawn  bool
	locked bool

	callbacks []func(Frame)
	cbMu      sync.RWMutex

	now func() time.Time
	log *logrus.Entry
}

// New creates a render loop.
func New(src adc.Source, cal *calibrate.Calibrator, surf *fb.Surface, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = config.Default().Loop.Interval
	}
	return &Loop{
		src:  src,
		cal:  cal,
		surf: surf,
		opts: opts,
		now:  time.Now,
		log:  logrus.WithField("component", "cursor"),
	}
}

// OnFrame registers a callback invoked after every successfully rendered frame.
// Callbacks run on the loop goroutine and should return quickly.
func (l *Loop) OnFrame(callback func(Frame)) {
	l.cbMu.Lock()
	defer l.cbMu.Unlock()
	l.callbacks = append(l.callbacks, callback)
}

// Prepare paints the whole screen with the background. Call it once, before Run.
func (l *Loop) Prepare() error {
	l.log.Info("Clearing screen")
	if err := l.surf.Clear(l.opts.Background); err != nil {
		return pkgerrors.Wrap(err, "failed to clear screen")
	}
	if err := l.surf.Flush(); err != nil {
		return pkgerrors.Wrap(err, "failed to clear screen")
	}
	return nil
}

// Last returns the last drawn position, if any.
func (l *Loop) Last() (calibrate.Point, bool) {
	return l.last, l.drawn
}

// Step reads one sample, updates calibration and moves the cursor.
// The last position only changes after a successful flush.
func (l *Loop) Step() (Frame, error) {
	s, err := l.src.Read()
	if err != nil {
		return Frame{}, pkgerrors.Wrap(err, "failed to read sample")
	}

	pt, snap := l.cal.Update(s.X, s.Y)
	if snap.Locked && !l.locked {
		l.locked = true
		l.log.WithFields(logrus.Fields{
			"center_x": snap.CenterX,
			"center_y": snap.CenterY,
		}).Info("Center locked")
	}

	if err := l.render(pt); err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Time:        l.now(),
		Sample:      s,
		Point:       pt,
		Calibration: snap,
	}
	l.notify(frame)
	return frame, nil
}

// Run steps at the configured interval until ctx is done or a step fails.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := l.Step(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// render erases the previous cursor, draws the new one and flushes both.
func (l *Loop) render(pt calibrate.Point) error {
	size := l.opts.Size
	if l.drawn {
		if err := l.surf.DrawRect(l.last.X, l.last.Y, size, size, l.opts.Background); err != nil {
			return pkgerrors.Wrap(err, "failed to erase cursor")
		}
	}
	if err := l.surf.DrawRect(pt.X, pt.Y, size, size, l.opts.Foreground); err != nil {
		return pkgerrors.Wrap(err, "failed to draw cursor")
	}
	if err := l.surf.Flush(); err != nil {
		return pkgerrors.Wrap(err, "failed to flush display")
	}

	l.last = pt
	l.drawn = true
	return nil
}

func (l *Loop) notify(frame Frame) {
	l.cbMu.RLock()
	callbacks := make([]func(Frame), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(frame)
		}
	}
}
