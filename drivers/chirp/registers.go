package chirp

const (
	// 7-bit address range accepted by the address register.
	AddressMin = 0x01
	AddressMax = 0x7F

	// Factory default address.
	AddressDefault = 0x20

	// --- Register sub-addresses ---
	RegCapacitance  = 0x00 // R, 16-bit BE
	RegAddress      = 0x01 // W, new 7-bit address
	RegLightRequest = 0x03 // W, trigger pattern (value == register)
	RegLightValue   = 0x04 // R, 16-bit BE, valid LightSettle after a request
	RegTemperature  = 0x05 // R, 16-bit BE, tenths of °C
	RegReset        = 0x06 // W, trigger pattern (value == register)
)
