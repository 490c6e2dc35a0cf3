package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, SourceIIO, cfg.ADC.Source)
	assert.Equal(t, "/sys/bus/iio/devices/iio:device0", cfg.ADC.IIOPath)
	assert.Equal(t, 1, cfg.ADC.ChannelX)
	assert.Equal(t, 0, cfg.ADC.ChannelY)
	assert.Equal(t, "/dev/fb0", cfg.Display.Device)
	assert.Equal(t, 7, cfg.Display.CursorSize)
	assert.Equal(t, Color{R: 255, G: 255, B: 255}, cfg.Display.Foreground)
	assert.Equal(t, 0.25, cfg.Calibration.EMAAlpha)
	assert.Equal(t, 0.02, cfg.Calibration.CenterAlpha)
	assert.Equal(t, 100, cfg.Calibration.CenterLockFrames)
	assert.Equal(t, 0.8, cfg.Calibration.RangeAlpha)
	assert.Equal(t, 1.8, cfg.Calibration.VoltageMax)
	assert.Equal(t, 0.04, cfg.Calibration.Deadzone)
	assert.Equal(t, 6, cfg.Calibration.DeadzoneFrames)
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.Interval)
	assert.Equal(t, 2*time.Second, cfg.Loop.StatusInterval)
	assert.Empty(t, cfg.Telemetry.Broker)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/fb0", cfg.Display.Device)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeConfig(t, `
adc:
  source: serial
  channel_x: 3
  channel_y: 2

serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600

display:
  device: /dev/fb1
  cursor_size: 9
  foreground: {r: 255, g: 0, b: 0}

calibration:
  voltage_max: 3.3
  center_lock_frames: 50

loop:
  interval: 10ms

telemetry:
  broker: tcp://localhost:1883
  topic: bench/joystick
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, SourceSerial, cfg.ADC.Source)
	assert.Equal(t, 3, cfg.ADC.ChannelX)
	assert.Equal(t, 2, cfg.ADC.ChannelY)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, "/dev/fb1", cfg.Display.Device)
	assert.Equal(t, 9, cfg.Display.CursorSize)
	assert.Equal(t, Color{R: 255}, cfg.Display.Foreground)
	assert.Equal(t, Color{}, cfg.Display.Background)
	assert.Equal(t, 3.3, cfg.Calibration.VoltageMax)
	assert.Equal(t, 50, cfg.Calibration.CenterLockFrames)
	assert.Equal(t, 10*time.Millisecond, cfg.Loop.Interval)
	assert.Equal(t, "tcp://localhost:1883", cfg.Telemetry.Broker)
	assert.Equal(t, "bench/joystick", cfg.Telemetry.Topic)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeConfig(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeConfig(t, `
serial:
  port: "/dev/ttyS2"
calibration:
  deadzone: 0
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyS2", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)         // default
	assert.Equal(t, 0.04, cfg.Calibration.Deadzone)      // explicit zero replaced
	assert.Equal(t, 1.8, cfg.Calibration.VoltageMax)     // default
	assert.Equal(t, "joycursor", cfg.Telemetry.ClientID) // default
}

func TestLoad_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown source", content: "adc:\n  source: spi\n"},
		{name: "even cursor", content: "display:\n  cursor_size: 8\n"},
		{name: "inverted voltage range", content: "calibration:\n  voltage_min: 2.0\n  voltage_max: 1.0\n"},
		{name: "ema alpha above one", content: "calibration:\n  ema_alpha: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.ADC.Source = SourceMock
	cfg.Calibration.VoltageMax = 3.3

	name := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(name))

	loaded, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, SourceMock, loaded.ADC.Source)
	assert.Equal(t, 3.3, loaded.Calibration.VoltageMax)
	assert.Equal(t, cfg, loaded)
}
