//go:build unix

package term

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("term: stdin is not a terminal")

// Terminal is a raw-mode session on a pair of tty file descriptors.
type Terminal struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int
	old   *term.State
	once  sync.Once
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Open puts stdin/stdout into render mode.
func Open() (*Terminal, error) {
	return OpenFiles(os.Stdin, os.Stdout)
}

func OpenFiles(in, out *os.File) (*Terminal, error) {
	t := &Terminal{
		in:    in,
		out:   out,
		inFd:  int(in.Fd()),
		outFd: int(out.Fd()),
	}
	if !term.IsTerminal(t.inFd) {
		return nil, ErrNotTerminal
	}

	old, err := term.MakeRaw(t.inFd)
	if err != nil {
		return nil, fmt.Errorf("term: raw mode: %w", err)
	}
	t.old = old

	if _, err := t.out.Write(setupSequence()); err != nil {
		term.Restore(t.inFd, t.old)
		return nil, fmt.Errorf("term: setup: %w", err)
	}
	return t, nil
}

// Close restores the terminal. Safe to call more than once.
func (t *Terminal) Close() error {
	var err error
	t.once.Do(func() {
		_, werr := t.out.Write(teardownSequence())
		rerr := term.Restore(t.inFd, t.old)
		err = errors.Join(werr, rerr)
	})
	return err
}

// Size returns columns and rows, falling back to 80x24.
func (t *Terminal) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(t.outFd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// ReadAvailable reads whatever input is pending without blocking.
func (t *Terminal) ReadAvailable(p []byte) (int, error) {
	fds := []unix.PollFd{{Fd: int32(t.inFd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, nil
	}

	rn, err := unix.Read(t.inFd, p)
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	return rn, nil
}

// Write sends one payload to the terminal.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}
