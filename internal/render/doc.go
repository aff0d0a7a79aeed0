// Package render turns sampled noise into terminal cells.
//
// [ToColor] maps a scalar in [-1, 1] and a frame counter to a truecolor
// background. [FrameBuffer] assembles a full frame of colored cells into one
// byte payload, written to the terminal with a single Write.
package render
