package render

import "fmt"

// Status is the data shown in the optional header row.
type Status struct {
	PointerX, PointerY int
	VX, VY, VZ         float64
	FPS                float64
	CacheRatio         float64
}

func (s Status) String() string {
	return fmt.Sprintf("Mouse: %3d,%3d Vel: %.3f,%.3f,%.3f FPS: %.1f Cache: %.0f%%",
		s.PointerX, s.PointerY, s.VX, s.VY, s.VZ, s.FPS, s.CacheRatio*100)
}
