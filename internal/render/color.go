package render

import "math"

// Color is a 24-bit background color.
type Color struct {
	R, G, B uint8
}

// ToColor maps scalar to a red/green pair that cycles blue with the frame.
// Red rises with the scalar, green is its complement. Out of range input
// clamps; NaN maps to the midpoint.
func ToColor(scalar float64, frame uint64) Color {
	v := 128
	if !math.IsNaN(scalar) {
		v = int(min(max(math.Round((scalar+1)/2*255), 0), 255))
	}
	return Color{
		R: uint8(v),
		G: uint8(255 - v),
		B: uint8(frame % 255),
	}
}
