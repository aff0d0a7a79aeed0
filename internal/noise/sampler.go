package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Coord is a point in the noise volume.
type Coord struct {
	X, Y, Z float64
}

// Sampler maps a coordinate to a scalar in [-1, 1].
type Sampler interface {
	Sample(c Coord) float64
}

// Params configures the built-in samplers. Fields a sampler does not use are ignored.
type Params struct {
	Seed        int64
	Octaves     int
	Persistence float64
	Alpha       float64
	Beta        float64
}

func DefaultParams() Params {
	return Params{
		Seed:        0,
		Octaves:     3,
		Persistence: 0.5,
		Alpha:       2.0,
		Beta:        2.0,
	}
}

// Perlin wraps aquilax/go-perlin. Alpha is the weight of each successive
// octave, beta the frequency multiplier.
type Perlin struct {
	p *perlin.Perlin
}

func NewPerlin(params Params) *Perlin {
	octaves := params.Octaves
	if octaves < 1 {
		octaves = 1
	}
	return &Perlin{p: perlin.NewPerlin(params.Alpha, params.Beta, int32(octaves), params.Seed)}
}

func (s *Perlin) Sample(c Coord) float64 {
	return s.p.Noise3D(c.X, c.Y, c.Z)
}

// Simplex sums octaves of OpenSimplex noise, halving amplitude by
// Persistence and doubling frequency each octave.
type Simplex struct {
	os         opensimplex.Noise
	amplitudes []float64
	norm       float64
}

func NewSimplex(params Params) *Simplex {
	octaves := params.Octaves
	if octaves < 1 {
		octaves = 1
	}
	s := &Simplex{
		os:         opensimplex.New(params.Seed),
		amplitudes: make([]float64, octaves),
	}
	for i := range s.amplitudes {
		s.amplitudes[i] = math.Pow(params.Persistence, float64(i))
		s.norm += s.amplitudes[i]
	}
	if s.norm == 0 {
		s.amplitudes[0], s.norm = 1, 1
	}
	return s
}

func (s *Simplex) Sample(c Coord) float64 {
	var sum float64
	freq := 1.0
	for _, amp := range s.amplitudes {
		sum += amp * s.os.Eval3(c.X*freq, c.Y*freq, c.Z*freq)
		freq *= 2
	}
	return sum / s.norm
}

// Constant returns the same value everywhere.
type Constant float64

func (v Constant) Sample(Coord) float64 { return float64(v) }

// Func adapts a plain function to a Sampler.
type Func func(x, y, z float64) float64

func (f Func) Sample(c Coord) float64 { return f(c.X, c.Y, c.Z) }
