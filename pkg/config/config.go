package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds accepted in ADCConfig.Source.
const (
	SourceIIO    = "iio"
	SourceSerial = "serial"
	SourceMock   = "mock"
)

// Config represents the application configuration.
type Config struct {
	ADC         ADCConfig         `yaml:"adc"`
	Serial      SerialConfig      `yaml:"serial"`
	Display     DisplayConfig     `yaml:"display"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Loop        LoopConfig        `yaml:"loop"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Mock        MockConfig        `yaml:"mock"`
	Log         LogConfig         `yaml:"log"`
}

// ADCConfig selects the voltage source and its sysfs channels.
type ADCConfig struct {
	Source   string `yaml:"source"`   // iio, serial or mock
	IIOPath  string `yaml:"iio_path"` // IIO device directory
	ChannelX int    `yaml:"channel_x"`
	ChannelY int    `yaml:"channel_y"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// DisplayConfig contains framebuffer configuration.
type DisplayConfig struct {
	Device     string `yaml:"device"`
	Sysfs      string `yaml:"sysfs"`
	CursorSize int    `yaml:"cursor_size"` // Side of the square cursor in pixels, odd
	Foreground Color  `yaml:"foreground"`
	Background Color  `yaml:"background"`
}

// CalibrationConfig contains the auto-calibration constants.
type CalibrationConfig struct {
	EMAAlpha         float64 `yaml:"ema_alpha"`          // Weight of the new sample
	CenterAlpha      float64 `yaml:"center_alpha"`       // Center tracking rate before lock
	CenterLockFrames int     `yaml:"center_lock_frames"` // Updates until the center is frozen
	RangeAlpha       float64 `yaml:"range_alpha"`        // Pull of a new extreme
	VoltageMin       float64 `yaml:"voltage_min"`        // ADC floor (V)
	VoltageMax       float64 `yaml:"voltage_max"`        // ADC ceiling (V)
	MinSpan          float64 `yaml:"min_span"`           // Smallest span used for scaling (V)
	DegenerateBand   float64 `yaml:"degenerate_band"`    // Half-width of a collapsed range (V)
	Deadzone         float64 `yaml:"deadzone"`           // Snap threshold (V)
	DeadzoneFrames   int     `yaml:"deadzone_frames"`    // Consecutive frames before snapping
}

// LoopConfig contains render loop timing.
type LoopConfig struct {
	Interval       time.Duration `yaml:"interval"`
	StatusInterval time.Duration `yaml:"status_interval"`
}

// TelemetryConfig contains MQTT telemetry configuration. An empty broker disables it.
type TelemetryConfig struct {
	Broker   string        `yaml:"broker"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	Interval time.Duration `yaml:"interval"`
}

// MockConfig contains mock joystick configuration.
type MockConfig struct {
	Center    float64       `yaml:"center"`    // Rest voltage (V)
	Amplitude float64       `yaml:"amplitude"` // Sweep amplitude (V)
	Noise     float64       `yaml:"noise"`     // Noise amplitude (V)
	Period    time.Duration `yaml:"period"`    // Duration of one sweep
	Idle      time.Duration `yaml:"idle"`      // Rest time before sweeping
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		ADC: ADCConfig{
			Source:   SourceIIO,
			IIOPath:  "/sys/bus/iio/devices/iio:device0",
			ChannelX: 1,
			ChannelY: 0,
		},
		Serial: SerialConfig{
			Port:        "/dev/ttyACM0",
			BaudRate:    115200,
			ReadTimeout: 500 * time.Millisecond,
		},
		Display: DisplayConfig{
			Device:     "/dev/fb0",
			Sysfs:      "/sys/class/graphics/fb0",
			CursorSize: 7,
			Foreground: Color{R: 255, G: 255, B: 255},
			Background: Color{R: 0, G: 0, B: 0},
		},
		Calibration: CalibrationConfig{
			EMAAlpha:         0.25,
			CenterAlpha:      0.02,
			CenterLockFrames: 100,
			RangeAlpha:       0.8,
			VoltageMin:       0.0,
			VoltageMax:       1.8,
			MinSpan:          0.01,
			DegenerateBand:   0.01,
			Deadzone:         0.04,
			DeadzoneFrames:   6,
		},
		Loop: LoopConfig{
			Interval:       20 * time.Millisecond, // ~50 Hz
			StatusInterval: 2 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Broker:   "",
			Topic:    "joycursor/telemetry",
			ClientID: "joycursor",
			Interval: time.Second,
		},
		Mock: MockConfig{
			Center:    0.9,
			Amplitude: 0.6,
			Noise:     0.004,
			Period:    6 * time.Second,
			Idle:      3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.ADC.Source {
	case SourceIIO, SourceSerial, SourceMock:
	default:
		return fmt.Errorf("unknown adc source %q", c.ADC.Source)
	}

	if c.Display.CursorSize%2 == 0 {
		return fmt.Errorf("cursor size must be odd, got %d", c.Display.CursorSize)
	}

	cal := c.Calibration
	if cal.VoltageMax <= cal.VoltageMin {
		return fmt.Errorf("voltage_max (%g) must be above voltage_min (%g)", cal.VoltageMax, cal.VoltageMin)
	}
	if cal.EMAAlpha <= 0 || cal.EMAAlpha > 1 {
		return fmt.Errorf("ema_alpha must be in (0, 1], got %g", cal.EMAAlpha)
	}
	if cal.RangeAlpha <= 0 || cal.RangeAlpha > 1 {
		return fmt.Errorf("range_alpha must be in (0, 1], got %g", cal.RangeAlpha)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.ADC.Source == "" {
		c.ADC.Source = def.ADC.Source
	}
	if c.ADC.IIOPath == "" {
		c.ADC.IIOPath = def.ADC.IIOPath
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}

	if c.Display.Device == "" {
		c.Display.Device = def.Display.Device
	}
	if c.Display.Sysfs == "" {
		c.Display.Sysfs = def.Display.Sysfs
	}
	if c.Display.CursorSize <= 0 {
		c.Display.CursorSize = def.Display.CursorSize
	}

	if c.Calibration.EMAAlpha == 0 {
		c.Calibration.EMAAlpha = def.Calibration.EMAAlpha
	}
	if c.Calibration.CenterAlpha == 0 {
		c.Calibration.CenterAlpha = def.Calibration.CenterAlpha
	}
	if c.Calibration.CenterLockFrames <= 0 {
		c.Calibration.CenterLockFrames = def.Calibration.CenterLockFrames
	}
	if c.Calibration.RangeAlpha == 0 {
		c.Calibration.RangeAlpha = def.Calibration.RangeAlpha
	}
	if c.Calibration.VoltageMax == 0 {
		c.Calibration.VoltageMax = def.Calibration.VoltageMax
	}
	if c.Calibration.MinSpan == 0 {
		c.Calibration.MinSpan = def.Calibration.MinSpan
	}
	if c.Calibration.DegenerateBand == 0 {
		c.Calibration.DegenerateBand = def.Calibration.DegenerateBand
	}
	if c.Calibration.Deadzone == 0 {
		c.Calibration.Deadzone = def.Calibration.Deadzone
	}
	if c.Calibration.DeadzoneFrames <= 0 {
		c.Calibration.DeadzoneFrames = def.Calibration.DeadzoneFrames
	}

	if c.Loop.Interval == 0 {
		c.Loop.Interval = def.Loop.Interval
	}
	if c.Loop.StatusInterval == 0 {
		c.Loop.StatusInterval = def.Loop.StatusInterval
	}

	if c.Telemetry.Topic == "" {
		c.Telemetry.Topic = def.Telemetry.Topic
	}
	if c.Telemetry.ClientID == "" {
		c.Telemetry.ClientID = def.Telemetry.ClientID
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = def.Telemetry.Interval
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
