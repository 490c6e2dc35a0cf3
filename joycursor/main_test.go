package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/joycursor/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "config.yaml", ""
	sourceFlag, portFlag, deviceFlag, brokerFlag = "", "", "", ""

	var out bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestInitConfig(t *testing.T) {
	name := filepath.Join(t.TempDir(), "joycursor.yaml")

	out, err := execute(t, "init-config", name)
	require.NoError(t, err)
	assert.Contains(t, out, name)

	cfg, err := config.Load(name)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = execute(t, "init-config", name)
	assert.Error(t, err)

	_, err = execute(t, "init-config", "--force", name)
	assert.NoError(t, err)
}

func TestGeometry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "virtual_size", "320,240\n")
	writeFile(t, dir, "bits_per_pixel", "16\n")
	cfgFile := writeFile(t, dir, "config.yaml", "display:\n  sysfs: "+dir+"\n")

	out, err := execute(t, "geometry", "--config", cfgFile, "--device", filepath.Join(dir, "fb0"))
	require.NoError(t, err)
	assert.Contains(t, out, "320x240")
	assert.Contains(t, out, "16 bpp")
	assert.Contains(t, out, "RGB565")
}

func TestGeometry_UnsupportedDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "virtual_size", "320,240\n")
	writeFile(t, dir, "bits_per_pixel", "8\n")
	cfgFile := writeFile(t, dir, "config.yaml", "display:\n  sysfs: "+dir+"\n")

	out, err := execute(t, "geometry", "--config", cfgFile)
	assert.Error(t, err)
	assert.Contains(t, out, "unsupported")
}

func loadWithArgs(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	configPath, logLevel = "config.yaml", ""
	sourceFlag, portFlag, deviceFlag, brokerFlag = "", "", "", ""

	var cfg *config.Config
	cmd := NewCommand()
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		return err
	}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cfg, cmd.Execute()
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadWithArgs(t,
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--log-level", "debug",
		"--source", "mock",
		"--port", "/dev/ttyUSB3",
		"--device", "/dev/fb1",
		"--mqtt-broker", "tcp://broker:1883",
	)
	require.NoError(t, err)

	require.NotNil(t, cfg)
	assert.Equal(t, config.SourceMock, cfg.ADC.Source)
	assert.Equal(t, "/dev/ttyUSB3", cfg.Serial.Port)
	assert.Equal(t, "/dev/fb1", cfg.Display.Device)
	assert.Equal(t, "tcp://broker:1883", cfg.Telemetry.Broker)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_KeepsFileValues(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", "adc:\n  source: serial\nserial:\n  port: /dev/ttyS1\n")

	cfg, err := loadWithArgs(t, "--config", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, config.SourceSerial, cfg.ADC.Source)
	assert.Equal(t, "/dev/ttyS1", cfg.Serial.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Rejected(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	_, err := loadWithArgs(t, "--config", missing, "--source", "spi")
	assert.Error(t, err)

	_, err = loadWithArgs(t, "--config", missing, "--log-level", "loud")
	assert.Error(t, err)
}
