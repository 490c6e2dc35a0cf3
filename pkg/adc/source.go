// Package adc reads joystick voltage pairs from an analog-to-digital converter.
package adc

import (
	"errors"
	"fmt"

	"github.com/itohio/joycursor/pkg/config"
)

var (
	ErrNotOpen     = errors.New("source not open")
	ErrAlreadyOpen = errors.New("source already open")
)

// Sample is one voltage reading of both axes, in volts.
type Sample struct {
	X float64
	Y float64
}

// Source defines the interface for voltage sources (real or mocked).
type Source interface {
	Open() error
	// Read performs one bounded synchronous read of both channels.
	Read() (Sample, error)
	Close() error
}

var (
	_ Source = (*IIO)(nil)
	_ Source = (*Serial)(nil)
	_ Source = (*Mock)(nil)
)

// Voltage converts a raw ADC count with a millivolt-per-count scale to volts.
func Voltage(raw, scale float64) float64 {
	return raw * scale / 1000.0
}

// New creates the source selected by cfg.ADC.Source. The source is not opened.
func New(cfg *config.Config) (Source, error) {
	switch cfg.ADC.Source {
	case config.SourceIIO:
		return NewIIO(cfg.ADC.IIOPath, cfg.ADC.ChannelX, cfg.ADC.ChannelY), nil
	case config.SourceSerial:
		return NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.ReadTimeout), nil
	case config.SourceMock:
		return NewMock(&cfg.Mock, cfg.Loop.Interval, cfg.Calibration.VoltageMax), nil
	default:
		return nil, fmt.Errorf("unknown adc source %q", cfg.ADC.Source)
	}
}
