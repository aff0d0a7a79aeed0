package render

import "errors"

var (
	ErrIncompleteFrame = errors.New("render: frame finished before every cell was appended")
	ErrFrameOverflow   = errors.New("render: more cells appended than the frame holds")
)
