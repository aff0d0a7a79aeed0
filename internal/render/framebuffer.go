package render

// FrameBuffer accumulates one frame of cells into a reusable byte slice.
//
// Call Begin, optionally Header, then Append exactly width*height times in
// row-major order, then Finish. The slice returned by Finish aliases the
// buffer and is only valid until the next Begin.
type FrameBuffer struct {
	buf      []byte
	width    int
	height   int
	cells    int
	overflow bool
}

// NewFrameBuffer preallocates room for a width x height frame. The buffer
// grows on demand if a later frame is larger.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{buf: make([]byte, 0, EstimateSize(width, height))}
}

// EstimateSize is the worst-case payload size of a width x height frame
// without a header.
func EstimateSize(width, height int) int {
	const maxCell = len("\x1b[48;2;255;255;255m ")
	const rowEnd = len("\x1b[0m\x1b[1E")
	if width < 0 || height < 0 {
		return 0
	}
	return len(csiHome) + len(csiReset) + height*(width*maxCell+rowEnd)
}

func (f *FrameBuffer) Begin(width, height int) {
	f.buf = f.buf[:0]
	f.width = max(width, 0)
	f.height = max(height, 0)
	f.cells = 0
	f.overflow = false

	f.buf = append(f.buf, csiHome...)
	f.buf = append(f.buf, csiReset...)
}

// Header writes a plain text status line above the grid, truncated to the
// frame width. It must be called before the first Append.
func (f *FrameBuffer) Header(line string) {
	if len(line) > f.width {
		line = line[:f.width]
	}
	f.buf = append(f.buf, line...)
	f.buf = append(f.buf, csiReset...)
	f.buf = append(f.buf, csiNextLine...)
}

func (f *FrameBuffer) Append(c Color) {
	if f.cells >= f.width*f.height {
		f.overflow = true
		return
	}
	f.buf = appendCell(f.buf, c)
	f.cells++
	if f.cells%f.width == 0 {
		f.buf = append(f.buf, csiReset...)
		f.buf = append(f.buf, csiNextLine...)
	}
}

// Fragments is the number of cells appended since Begin.
func (f *FrameBuffer) Fragments() int { return f.cells }

func (f *FrameBuffer) Finish() ([]byte, error) {
	if f.overflow {
		return nil, ErrFrameOverflow
	}
	if f.cells < f.width*f.height {
		return nil, ErrIncompleteFrame
	}
	return f.buf, nil
}
