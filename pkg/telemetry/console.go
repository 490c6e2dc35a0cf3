// Package telemetry reports cursor frames to the console and over MQTT.
package telemetry

import (
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/itohio/joycursor/pkg/cursor"
)

// Console logs a status line at most once per interval.
type Console struct {
	interval time.Duration
	last     time.Time
	log      *logrus.Entry
}

// NewConsole creates a console reporter. A non-positive interval logs every frame.
func NewConsole(interval time.Duration) *Console {
	return &Console{
		interval: interval,
		log:      logrus.WithField("component", "status"),
	}
}

// Observe logs f unless the previous line is younger than the interval.
func (c *Console) Observe(f cursor.Frame) {
	if !due(c.last, f.Time, c.interval) {
		return
	}
	c.last = f.Time

	cal := f.Calibration
	c.log.WithFields(logrus.Fields{
		"x":       f.Point.X,
		"y":       f.Point.Y,
		"raw_x":   f.Sample.X,
		"raw_y":   f.Sample.Y,
		"center":  [2]float64{cal.CenterX, cal.CenterY},
		"range_x": [2]float64{cal.MinX, cal.MaxX},
		"range_y": [2]float64{cal.MinY, cal.MaxY},
		"state":   lockState(cal.Locked),
	}).Info("Cursor")
}

func lockState(locked bool) string {
	if locked {
		return color.GreenString("locked")
	}
	return color.YellowString("centering")
}

func due(last, now time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}
