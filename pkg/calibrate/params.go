package calibrate

import "github.com/itohio/joycursor/pkg/config"

// Params holds the filter and estimator constants.
type Params struct {
	EMAAlpha         float64 // weight of the new sample in the smoothed value
	CenterAlpha      float64 // fraction of the error the center moves per update
	CenterLockFrames int     // updates after which the center is frozen
	RangeAlpha       float64 // pull of a new extreme
	VoltageMin       float64
	VoltageMax       float64
	MinSpan          float64 // floor of a half-range used for scaling
	DegenerateBand   float64 // half-width of a collapsed range
	Deadzone         float64
	DeadzoneFrames   int
}

// DefaultParams returns the constants tuned for a 1.8 V joystick ADC.
func DefaultParams() Params {
	return ParamsFrom(config.Default().Calibration)
}

// ParamsFrom converts the calibration section of the configuration.
func ParamsFrom(c config.CalibrationConfig) Params {
	return Params{
		EMAAlpha:         c.EMAAlpha,
		CenterAlpha:      c.CenterAlpha,
		CenterLockFrames: c.CenterLockFrames,
		RangeAlpha:       c.RangeAlpha,
		VoltageMin:       c.VoltageMin,
		VoltageMax:       c.VoltageMax,
		MinSpan:          c.MinSpan,
		DegenerateBand:   c.DegenerateBand,
		Deadzone:         c.Deadzone,
		DeadzoneFrames:   c.DeadzoneFrames,
	}
}
