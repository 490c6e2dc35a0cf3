package adc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeIIO(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestIIO_Read(t *testing.T) {
	dir := fakeIIO(t, map[string]string{
		"in_voltage_scale": "0.439453125\n",
		"in_voltage1_raw":  "2048\n",
		"in_voltage0_raw":  "1024\n",
	})

	src := NewIIO(dir, 1, 0)
	require.NoError(t, src.Open())
	defer src.Close()

	s, err := src.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, s.X, 1e-12)
	assert.InDelta(t, 0.45, s.Y, 1e-12)

	// Values are re-read every call.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in_voltage1_raw"), []byte("0"), 0644))
	s, err = src.Read()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.X)
}

func TestIIO_OpenMissingChannel(t *testing.T) {
	dir := fakeIIO(t, map[string]string{
		"in_voltage_scale": "1",
		"in_voltage0_raw":  "1",
	})

	src := NewIIO(dir, 1, 0)
	assert.Error(t, src.Open())

	_, err := src.Read()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestIIO_OpenTwice(t *testing.T) {
	dir := fakeIIO(t, map[string]string{
		"in_voltage_scale": "1",
		"in_voltage0_raw":  "1",
		"in_voltage1_raw":  "1",
	})

	src := NewIIO(dir, 0, 1)
	require.NoError(t, src.Open())
	assert.ErrorIs(t, src.Open(), ErrAlreadyOpen)
	require.NoError(t, src.Close())
	require.NoError(t, src.Open())
}

func TestIIO_ReadGarbage(t *testing.T) {
	dir := fakeIIO(t, map[string]string{
		"in_voltage_scale": "1.0",
		"in_voltage0_raw":  "12",
		"in_voltage1_raw":  "n/a",
	})

	src := NewIIO(dir, 1, 0)
	require.NoError(t, src.Open())

	_, err := src.Read()
	assert.Error(t, err)
}

func TestIIO_ReadRemovedDevice(t *testing.T) {
	dir := fakeIIO(t, map[string]string{
		"in_voltage_scale": "1.0",
		"in_voltage0_raw":  "12",
		"in_voltage1_raw":  "12",
	})

	src := NewIIO(dir, 1, 0)
	require.NoError(t, src.Open())
	require.NoError(t, os.Remove(filepath.Join(dir, "in_voltage_scale")))

	_, err := src.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVoltage(t *testing.T) {
	assert.Equal(t, 1.5, Voltage(3000, 0.5))
	assert.Equal(t, 0.0, Voltage(0, 0.805))
}
