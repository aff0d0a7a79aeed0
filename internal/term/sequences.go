package term

import (
	"io"
	"os"
)

var (
	csiSGR0 = []byte("\x1b[0m")
	csiRIS  = []byte("\x1bc")
	csiHome = []byte("\x1b[H")
	csiClr  = []byte("\x1b[2J")

	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")

	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// any-motion tracking with SGR extended coordinates
	csiMouseMotionOn  = []byte("\x1b[?1003h")
	csiMouseMotionOff = []byte("\x1b[?1003l")
	csiMouseSGROn     = []byte("\x1b[?1006h")
	csiMouseSGROff    = []byte("\x1b[?1006l")
)

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// setupSequence enters the alternate screen and enables mouse reporting.
func setupSequence() []byte {
	return join(
		csiAltScreenEnter,
		csiCursorHide,
		csiAutoWrapOff,
		csiSGR0,
		csiClr,
		csiHome,
		csiMouseSGROn,
		csiMouseMotionOn,
	)
}

// teardownSequence undoes setupSequence, mouse first.
func teardownSequence() []byte {
	return join(
		csiMouseMotionOff,
		csiMouseSGROff,
		csiSGR0,
		csiCursorShow,
		csiAltScreenExit,
		csiAutoWrapOn,
	)
}

// EmergencyReset restores a sane terminal from panic recovery.
func EmergencyReset(w io.Writer) {
	w.Write(teardownSequence())
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// escape sequences alone don't restore termios
	resetTerminalMode()
}
