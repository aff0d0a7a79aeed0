// Package term drives an xterm-compatible terminal for the render loop.
//
// It puts the terminal in raw mode on the alternate screen with the cursor
// hidden, auto-wrap off and any-motion SGR mouse reporting on, and restores
// all of it on Close. Reads never block and each frame is one Write.
//
// EmergencyReset is meant for panic recovery when Close cannot run.
package term
