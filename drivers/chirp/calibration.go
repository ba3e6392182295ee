package chirp

import "chirpcode-go/x/mathx"

// Fixed calibration points for raw capacitance.
const (
	MoistureDry = 263
	MoistureWet = 483
)

// Moisture maps raw capacitance to percent, saturating outside the
// dry/wet points.
func Moisture(capacitance uint16) float32 {
	pct := (float32(capacitance) - MoistureDry) / (MoistureWet - MoistureDry) * 100
	return mathx.Clamp(pct, 0, 100)
}

// Celsius converts tenths of a degree to °C.
func Celsius(raw uint16) float32 {
	return float32(raw) / 10
}
