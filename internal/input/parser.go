package input

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b

	// longest SGR mouse report we accept: ESC [ < 9999;9999;9999M
	maxSGRLen = 32
)

// Parse appends the events found in data to dst and returns the extended
// slice. Unrecognized bytes are skipped. A sequence cut off by the end of
// data is dropped along with everything after it.
func Parse(data []byte, dst []Event) []Event {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b == 'q' || b == 'Q' || b == keyCtrlC:
			dst = append(dst, Event{Kind: KindQuit})
			i++

		case b == keyEsc:
			consumed, ev, ok := parseEscape(data[i:])
			if consumed == 0 {
				return dst
			}
			if ok {
				dst = append(dst, ev)
			}
			i += consumed

		default:
			i++
		}
	}
	return dst
}

// parseEscape returns 0 when the sequence is incomplete, otherwise the bytes
// consumed and whether ev is meaningful.
func parseEscape(data []byte) (int, Event, bool) {
	if len(data) < 2 {
		return 0, Event{}, false
	}
	if data[1] != '[' {
		// a bare Esc keypress; the next byte is parsed on its own
		return 1, Event{}, false
	}
	if len(data) < 3 {
		return 0, Event{}, false
	}
	if data[2] == '<' {
		return parseSGRMouse(data)
	}
	return skipCSI(data), Event{}, false
}

// skipCSI consumes a CSI sequence up to and including its final byte.
func skipCSI(data []byte) int {
	for end := 2; end < len(data); end++ {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			return end + 1
		}
		if b < 0x20 || b > 0x7e {
			// not a CSI after all; drop the introducer only
			return end
		}
	}
	return 0
}

// parseSGRMouse decodes ESC [ < Btn ; X ; Y (M|m).
func parseSGRMouse(data []byte) (int, Event, bool) {
	end := 3
	for ; end < len(data) && end < maxSGRLen; end++ {
		b := data[end]
		if b == 'M' || b == 'm' {
			break
		}
		if b == keyEsc {
			// cut off by the next sequence
			return end, Event{}, false
		}
	}
	if end >= len(data) {
		return 0, Event{}, false
	}
	if data[end] != 'M' && data[end] != 'm' {
		// overlong garbage; drop the introducer and rescan
		return 3, Event{}, false
	}

	btn, x, y, ok := parseSGRParams(data[3:end])
	if !ok {
		return end + 1, Event{}, false
	}
	// releases carry no motion or wheel data we use
	if data[end] == 'm' {
		return end + 1, Event{}, false
	}

	buttonID := btn & 0x03
	switch {
	case btn&64 != 0:
		switch buttonID {
		case 0:
			return end + 1, Event{Kind: KindWheel, Wheel: 1}, true
		case 1:
			return end + 1, Event{Kind: KindWheel, Wheel: -1}, true
		}
		return end + 1, Event{}, false
	case btn&32 != 0:
		return end + 1, Event{Kind: KindMotion, X: x - 1, Y: y - 1}, true
	}
	return end + 1, Event{}, false
}

// parseSGRParams extracts btn, x, y from "Btn;X;Y".
func parseSGRParams(data []byte) (btn, x, y int, ok bool) {
	state := 0
	val := 0
	digits := 0

	for _, b := range data {
		switch {
		case b == ';':
			if digits == 0 {
				return 0, 0, 0, false
			}
			switch state {
			case 0:
				btn = val
			case 1:
				x = val
			}
			state++
			val, digits = 0, 0
			if state > 2 {
				return 0, 0, 0, false
			}
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			digits++
			if val > 9999 {
				return 0, 0, 0, false
			}
		default:
			return 0, 0, 0, false
		}
	}

	y = val
	if state != 2 || digits == 0 || x < 1 || y < 1 {
		return 0, 0, 0, false
	}
	return btn, x, y, true
}
