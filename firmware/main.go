//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
	"time"
)

var (
	adcX machine.ADC
	adcY machine.ADC
	uart = machine.UART0

	// ADC averaging - running sums and count
	sumX  uint32
	sumY  uint32
	count int

	// Millivolts per count, printed with every line
	scale string

	// Timing
	lastADCRead time.Time
)

func main() {
	PIN_AXIS_X.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_AXIS_Y.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcX = machine.ADC{Pin: PIN_AXIS_X}
	adcY = machine.ADC{Pin: PIN_AXIS_Y}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcX.Configure(adcConfig)
	adcY.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	scale = strconv.FormatFloat(float64(ADC_REFERENCE_MV)/float64(uint32(1)<<ADC_RESOLUTION), 'f', -1, 64)
	lastADCRead = time.Now()

	for {
		now := time.Now()

		// Read both axes back to back so a line never mixes old and new positions
		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			sumX += uint32(read(adcX))
			sumY += uint32(read(adcY))
			count++
			lastADCRead = now
		}

		if count >= NUM_SAMPLES {
			outputAveragedValues()
			sumX = 0
			sumY = 0
			count = 0
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// read returns a count in [0, 2^ADC_RESOLUTION). Get always scales to 16 bits.
func read(adc machine.ADC) uint16 {
	return adc.Get() >> (16 - ADC_RESOLUTION)
}

func outputAveragedValues() {
	n := uint32(count)
	if n == 0 {
		n = 1
	}

	// Output format: "raw_x,raw_y,scale\n"
	// Example: "2048,1985,0.8056640625\n"
	print(sumX / n)
	print(",")
	print(sumY / n)
	print(",")
	print(scale)
	print("\n")
}
