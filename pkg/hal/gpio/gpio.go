// Package gpio implements the hal interfaces on Raspberry Pi hardware
// using the Linux GPIO character device. The servo is driven with software
// PWM and the MCP3008 ADC is read over bit-banged SPI, so no kernel PWM or
// SPI overlays are required.
package gpio

// Pins identifies the GPIO lines used by the controller (BCM numbering).
type Pins struct {
	Servo     int
	Relay     int
	Vibration int
	Buzzer    int

	// Bit-banged SPI to the MCP3008.
	SPIClock int
	SPIMosi  int
	SPIMiso  int
	SPICs    int
}
