package render

var (
	csiHome     = []byte("\x1b[1;1H")
	csiReset    = []byte("\x1b[0m")
	csiNextLine = []byte("\x1b[1E")
	csiBgRGB    = []byte("\x1b[48;2;")
)

// appendInt appends a non-negative integer without going through strconv.
// Color channels never exceed three digits.
func appendInt(b []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return append(b, byte(n)+'0')
	}
	if n < 100 {
		return append(b, byte(n/10)+'0', byte(n%10)+'0')
	}
	if n < 1000 {
		return append(b, byte(n/100)+'0', byte(n/10%10)+'0', byte(n%10)+'0')
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	return append(b, buf[i:]...)
}

// appendCell appends one background-colored blank cell.
func appendCell(b []byte, c Color) []byte {
	b = append(b, csiBgRGB...)
	b = appendInt(b, int(c.R))
	b = append(b, ';')
	b = appendInt(b, int(c.G))
	b = append(b, ';')
	b = appendInt(b, int(c.B))
	return append(b, 'm', ' ')
}
