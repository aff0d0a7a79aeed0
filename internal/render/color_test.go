package render

import (
	"math"
	"testing"
)

func TestToColor(t *testing.T) {
	tests := []struct {
		name   string
		scalar float64
		frame  uint64
		want   Color
	}{
		{"minimum", -1, 0, Color{0, 255, 0}},
		{"maximum", 1, 0, Color{255, 0, 0}},
		{"zero rounds up", 0, 0, Color{128, 127, 0}},
		{"below range clamps", -3.5, 7, Color{0, 255, 7}},
		{"above range clamps", 42, 7, Color{255, 0, 7}},
		{"blue wraps at 255", 1, 255, Color{255, 0, 0}},
		{"blue after wrap", 1, 300, Color{255, 0, 45}},
		{"nan", math.NaN(), 1, Color{128, 127, 1}},
		{"positive infinity", math.Inf(1), 0, Color{255, 0, 0}},
		{"negative infinity", math.Inf(-1), 0, Color{0, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToColor(tt.scalar, tt.frame); got != tt.want {
				t.Errorf("ToColor(%v, %d) = %v, want %v", tt.scalar, tt.frame, got, tt.want)
			}
		})
	}
}

func TestToColor_Complementary(t *testing.T) {
	for i := -100; i <= 100; i++ {
		c := ToColor(float64(i)/50, uint64(i+100))
		if int(c.R)+int(c.G) != 255 {
			t.Fatalf("R+G = %d for scalar %v", int(c.R)+int(c.G), float64(i)/50)
		}
	}
}
