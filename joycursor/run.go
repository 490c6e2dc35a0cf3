package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/itohio/joycursor/pkg/adc"
	"github.com/itohio/joycursor/pkg/calibrate"
	"github.com/itohio/joycursor/pkg/config"
	"github.com/itohio/joycursor/pkg/cursor"
	"github.com/itohio/joycursor/pkg/fb"
	"github.com/itohio/joycursor/pkg/pixel"
	"github.com/itohio/joycursor/pkg/telemetry"
)

// runCursor owns the device lifecycle. Geometry and pixel format are resolved
// before any device is opened; everything opened is closed on return.
func runCursor(ctx context.Context, cfg *config.Config) error {
	geom, err := fb.Discover(cfg.Display.Sysfs, cfg.Display.Device)
	if err != nil {
		return err
	}
	format, err := pixel.FormatForDepth(geom.BitsPerPixel)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"geometry": geom,
		"format":   format,
	}).Info("Framebuffer discovered")

	src, err := adc.New(cfg)
	if err != nil {
		return err
	}

	dev, err := fb.Open(cfg.Display.Device)
	if err != nil {
		return err
	}
	defer closeLogged("framebuffer", dev.Close)

	surf, err := fb.New(dev, geom)
	if err != nil {
		return err
	}

	cal := calibrate.New(calibrate.ParamsFrom(cfg.Calibration), surf.Width(), surf.Height())
	loop := cursor.New(src, cal, surf, cursor.OptionsFrom(cfg))
	if err := loop.Prepare(); err != nil {
		return err
	}

	if err := src.Open(); err != nil {
		return err
	}
	defer closeLogged("source", src.Close)

	loop.OnFrame(telemetry.NewConsole(cfg.Loop.StatusInterval).Observe)
	if cfg.Telemetry.Broker != "" {
		pub, err := telemetry.DialMQTT(cfg.Telemetry)
		if err != nil {
			return err
		}
		defer pub.Close()
		loop.OnFrame(pub.Observe)
	}

	logrus.WithFields(logrus.Fields{
		"source":   cfg.ADC.Source,
		"interval": cfg.Loop.Interval,
	}).Info("Running, keep the stick centered until the center locks")

	if err := loop.Run(ctx); err != nil {
		return err
	}
	logrus.Info("Stopped")
	return nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logrus.WithError(err).Warnf("Failed to close %s", what)
	}
}
