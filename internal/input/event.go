package input

// Kind identifies a recognized input report.
type Kind uint8

const (
	KindMotion Kind = iota + 1
	KindWheel
	KindQuit
)

func (k Kind) String() string {
	switch k {
	case KindMotion:
		return "motion"
	case KindWheel:
		return "wheel"
	case KindQuit:
		return "quit"
	}
	return "unknown"
}

// Event is a single parsed report. X and Y are 0-based cells for motion;
// Wheel is +1 for up and -1 for down.
type Event struct {
	Kind  Kind
	X, Y  int
	Wheel int
}

// Velocity is the per-frame displacement of the sampling origin.
type Velocity struct {
	X, Y, Z float64
}
