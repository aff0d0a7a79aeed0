package input

import (
	"errors"
	"math"
	"testing"
)

type chunkSource struct {
	chunks []string
	err    error
}

func (s *chunkSource) ReadAvailable(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(s.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, s.chunks[0])
	s.chunks = s.chunks[1:]
	return n, nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestController_NoInput(t *testing.T) {
	c := NewController(&chunkSource{}, DefaultOptions())
	b := c.Poll()
	if b.Quit || b.Changed || len(b.Events) != 0 {
		t.Errorf("unexpected batch %+v", b)
	}
}

func TestController_MotionDelta(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 80, 24
	src := &chunkSource{chunks: []string{
		"\x1b[<35;41;13M", // 0-based (40,12): the centre
		"\x1b[<35;43;13M", // delta (2,0)
	}}
	c := NewController(src, opts)

	if b := c.Poll(); b.Changed {
		t.Error("motion at the centre should not change velocity")
	}
	b := c.Poll()
	if !b.Changed {
		t.Fatal("expected velocity change")
	}
	v := c.Velocity()
	if !near(v.X, 2*opts.Sensitivity) || v.Y != 0 || v.Z != 0 {
		t.Errorf("velocity = %+v", v)
	}

	// no further input: velocity persists
	for i := 0; i < 5; i++ {
		c.Poll()
	}
	if c.Velocity() != v {
		t.Errorf("velocity drifted to %+v", c.Velocity())
	}
}

func TestController_FirstMotionFromCentre(t *testing.T) {
	src := &chunkSource{chunks: []string{"\x1b[<35;51;13M"}}
	opts := DefaultOptions()
	c := NewController(src, opts)
	c.Poll()

	// same law as velocity = (pointer - centre) * sensitivity
	if v := c.Velocity(); !near(v.X, 10*opts.Sensitivity) || v.Y != 0 {
		t.Errorf("velocity = %+v", v)
	}
	if x, y := c.Pointer(); x != 50 || y != 12 {
		t.Errorf("pointer = %d,%d", x, y)
	}
}

func TestController_Wheel(t *testing.T) {
	src := &chunkSource{chunks: []string{"\x1b[<64;1;1M\x1b[<64;1;1M\x1b[<65;1;1M"}}
	opts := DefaultOptions()
	c := NewController(src, opts)

	b := c.Poll()
	if !b.Changed || len(b.Events) != 3 {
		t.Fatalf("batch = %+v", b)
	}
	if v := c.Velocity(); !near(v.Z, opts.WheelStep) {
		t.Errorf("vz = %v, want %v", v.Z, opts.WheelStep)
	}
}

func TestController_Quit(t *testing.T) {
	c := NewController(&chunkSource{chunks: []string{"xq"}}, DefaultOptions())
	if !c.Poll().Quit {
		t.Error("expected quit")
	}
}

func TestController_MalformedInput(t *testing.T) {
	src := &chunkSource{chunks: []string{
		"\x1b[<35;4",
		"0;12M",
		"\x1b[<\x1b[",
	}}
	c := NewController(src, DefaultOptions())

	for i := 0; i < 3; i++ {
		b := c.Poll()
		if b.Changed || b.Quit {
			t.Errorf("poll %d: unexpected batch %+v", i, b)
		}
	}
	if c.Velocity() != (Velocity{}) {
		t.Errorf("velocity changed to %+v", c.Velocity())
	}
}

func TestController_ReadErrorIsTransient(t *testing.T) {
	src := &chunkSource{err: errors.New("EAGAIN")}
	c := NewController(src, DefaultOptions())
	if b := c.Poll(); b.Quit || b.Changed {
		t.Errorf("read error surfaced as %+v", b)
	}

	src.err = nil
	src.chunks = []string{"q"}
	if !c.Poll().Quit {
		t.Error("controller did not recover after read error")
	}
}

func TestController_SetViewport(t *testing.T) {
	src := &chunkSource{}
	c := NewController(src, DefaultOptions())
	c.SetViewport(100, 50)
	if x, y := c.Pointer(); x != 50 || y != 25 {
		t.Errorf("pointer = %d,%d", x, y)
	}

	src.chunks = []string{"\x1b[<35;2;2M"}
	c.Poll()
	c.SetViewport(10, 10)
	if x, y := c.Pointer(); x != 1 || y != 1 {
		t.Errorf("tracked pointer moved to %d,%d", x, y)
	}
}

func TestController_InitialVelocity(t *testing.T) {
	opts := DefaultOptions()
	opts.Velocity = Velocity{X: 0.1, Z: 0.02}
	c := NewController(&chunkSource{}, opts)
	if c.Velocity() != opts.Velocity {
		t.Errorf("velocity = %+v", c.Velocity())
	}
}
