//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1  // ADC read interval in milliseconds (same for both axes)
	NUM_SAMPLES        = 20 // Number of samples averaged per output line, ~50 lines/sec

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V), set calibration.voltage_max: 3.3 on the host
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Joystick pins
	PIN_AXIS_X = machine.A1
	PIN_AXIS_Y = machine.A0

	// Serial configuration
	// Format "raw_x,raw_y,scale\n", e.g. "4095,4095,0.8056640625\n" = 24 bytes max per line
	// 50 lines/sec * 24 bytes/line = 1,200 bytes/sec
	// 115200 provides ~9.6x headroom (11,520 bytes/sec max)
	UART_BAUD_RATE = 115200
)
