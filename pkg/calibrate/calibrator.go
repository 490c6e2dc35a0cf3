// Package calibrate turns raw joystick voltages into screen coordinates
// without a prior calibration step.
//
// The center is estimated from the first CenterLockFrames samples and then
// frozen. Per-axis extremes keep adapting for the whole run, and each side
// of the center is scaled independently because physical travel is rarely
// symmetric.
package calibrate

import "math"

// Phase is the state of center estimation.
type Phase uint8

const (
	// Centering: the center still follows the input.
	Centering Phase = iota
	// Locked: the center is frozen until the process exits.
	Locked
)

func (p Phase) String() string {
	if p == Locked {
		return "locked"
	}
	return "centering"
}

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

// Snapshot is the calibration telemetry returned with every update.
type Snapshot struct {
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	HasCenter  bool    `json:"has_center"`
	MinX       float64 `json:"min_x"`
	MaxX       float64 `json:"max_x"`
	MinY       float64 `json:"min_y"`
	MaxY       float64 `json:"max_y"`
	EMAX       float64 `json:"ema_x"`
	EMAY       float64 `json:"ema_y"`
	Locked     bool    `json:"locked"`
	Samples    int     `json:"samples"`
	NearCenter int     `json:"near_center"`
}

// axis is the per-axis estimator state, in volts.
type axis struct {
	ema    float64
	center float64
	min    float64
	max    float64
}

// Calibrator is a single-owner value updated in place on every sample.
type Calibrator struct {
	p      Params
	width  int
	height int

	x, y axis

	seeded     bool
	hasCenter  bool
	samples    int
	phase      Phase
	nearCenter int
}

// New creates a calibrator for a width x height screen.
func New(p Params, width, height int) *Calibrator {
	c := &Calibrator{
		p:      p,
		width:  width,
		height: height,
	}
	// Inverted extremes so the first sample adapts both.
	c.x.min, c.x.max = p.VoltageMax, p.VoltageMin
	c.y.min, c.y.max = p.VoltageMax, p.VoltageMin
	return c
}

// Update feeds one voltage sample and returns the cursor position.
func (c *Calibrator) Update(rawX, rawY float64) (Point, Snapshot) {
	c.smooth(rawX, rawY)
	c.trackCenter(rawX, rawY)

	c.x.adapt(rawX, c.p)
	c.y.adapt(rawY, c.p)

	refX, refY := c.reference()
	pt := Point{
		X: c.x.pixel(refX, c.width, c.p.MinSpan),
		Y: c.y.pixel(refY, c.height, c.p.MinSpan),
	}

	if math.Abs(c.x.ema-refX) < c.p.Deadzone && math.Abs(c.y.ema-refY) < c.p.Deadzone {
		c.nearCenter++
	} else {
		c.nearCenter = 0
	}
	// The snap only replaces the output; filters keep their state.
	if c.nearCenter >= c.p.DeadzoneFrames {
		pt = c.ScreenCenter()
	}

	return pt, c.Snapshot()
}

// Phase returns the center estimation phase.
func (c *Calibrator) Phase() Phase {
	return c.phase
}

// ScreenCenter returns the pixel the cursor snaps to when idle.
func (c *Calibrator) ScreenCenter() Point {
	return Point{X: (c.width - 1) / 2, Y: (c.height - 1) / 2}
}

// Snapshot returns the current calibration telemetry.
func (c *Calibrator) Snapshot() Snapshot {
	return Snapshot{
		CenterX:    c.x.center,
		CenterY:    c.y.center,
		HasCenter:  c.hasCenter,
		MinX:       c.x.min,
		MaxX:       c.x.max,
		MinY:       c.y.min,
		MaxY:       c.y.max,
		EMAX:       c.x.ema,
		EMAY:       c.y.ema,
		Locked:     c.phase == Locked,
		Samples:    c.samples,
		NearCenter: c.nearCenter,
	}
}

func (c *Calibrator) smooth(rawX, rawY float64) {
	if !c.seeded {
		c.x.ema, c.y.ema = rawX, rawY
		c.seeded = true
		return
	}
	a := c.p.EMAAlpha
	c.x.ema = a*rawX + (1-a)*c.x.ema
	c.y.ema = a*rawY + (1-a)*c.y.ema
}

func (c *Calibrator) trackCenter(rawX, rawY float64) {
	if c.phase == Locked {
		return
	}

	if !c.hasCenter {
		c.x.center, c.y.center = rawX, rawY
		c.hasCenter = true
	} else {
		c.x.center += (rawX - c.x.center) * c.p.CenterAlpha
		c.y.center += (rawY - c.y.center) * c.p.CenterAlpha
	}

	c.samples++
	if c.samples >= c.p.CenterLockFrames {
		c.phase = Locked
	}
}

// reference is the live smoothed value until the center is committed.
func (c *Calibrator) reference() (float64, float64) {
	if c.phase == Locked {
		return c.x.center, c.y.center
	}
	return c.x.ema, c.y.ema
}

func (a *axis) adapt(raw float64, p Params) {
	if raw < a.min {
		a.min = a.min*(1-p.RangeAlpha) + raw*p.RangeAlpha
	}
	if raw > a.max {
		a.max = a.max*(1-p.RangeAlpha) + raw*p.RangeAlpha
	}

	a.min = clamp(a.min, p.VoltageMin, p.VoltageMax)
	a.max = clamp(a.max, p.VoltageMin, p.VoltageMax)

	if a.min >= a.max {
		// Collapse to a narrow band around the mean, kept inside the ADC range.
		mid := (a.min + a.max) / 2
		mid = clamp(mid, p.VoltageMin+p.DegenerateBand, p.VoltageMax-p.DegenerateBand)
		a.min = mid - p.DegenerateBand
		a.max = mid + p.DegenerateBand
	}
}

// pixel maps the smoothed value to [0, extent-1]. Each side of ref scales
// its own span onto half the screen; offsets are truncated.
func (a *axis) pixel(ref float64, extent int, minSpan float64) int {
	half := float64(extent-1) / 2
	mid := (extent - 1) / 2

	var p int
	if a.ema >= ref {
		span := math.Max(minSpan, a.max-ref)
		p = mid + int((a.ema-ref)*(half/span))
	} else {
		span := math.Max(minSpan, ref-a.min)
		p = mid - int((ref-a.ema)*(half/span))
	}

	return min(max(p, 0), extent-1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
