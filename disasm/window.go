package disasm

// Window is a bounds-checked view of the input buffer starting at a
// cursor. Reads outside the remaining bytes report ok == false instead of
// touching memory past the end.
type Window struct {
	buf    []byte
	offset int
}

// NewWindow returns the view of buf starting at offset. An offset past the
// end yields an empty window.
func NewWindow(buf []byte, offset int) Window {
	if offset < 0 {
		offset = 0
	}
	if offset > len(buf) {
		offset = len(buf)
	}
	return Window{buf: buf, offset: offset}
}

// Offset is the cursor position of the window in the whole buffer.
func (w Window) Offset() int {
	return w.offset
}

// Len is the number of bytes remaining from the cursor.
func (w Window) Len() int {
	return len(w.buf) - w.offset
}

func (w Window) At(i int) (byte, bool) {
	if i < 0 || i >= w.Len() {
		return 0, false
	}
	return w.buf[w.offset+i], true
}

// Word reads a little-endian 16-bit value at i.
func (w Window) Word(i int) (uint16, bool) {
	lo, ok1 := w.At(i)
	hi, ok2 := w.At(i + 1)
	return uint16(lo) | uint16(hi)<<8, ok1 && ok2
}

// Dword reads a little-endian 32-bit value at i.
func (w Window) Dword(i int) (uint32, bool) {
	lo, ok1 := w.Word(i)
	hi, ok2 := w.Word(i + 2)
	return uint32(lo) | uint32(hi)<<16, ok1 && ok2
}

// Bytes returns up to n bytes from the cursor, fewer if the window is
// shorter. The result aliases the input buffer.
func (w Window) Bytes(n int) []byte {
	if n > w.Len() {
		n = w.Len()
	}
	if n < 0 {
		n = 0
	}
	return w.buf[w.offset : w.offset+n : w.offset+n]
}

// HasPrefix reports whether the window starts with p.
func (w Window) HasPrefix(p []byte) bool {
	if len(p) > w.Len() {
		return false
	}
	for i, b := range p {
		if w.buf[w.offset+i] != b {
			return false
		}
	}
	return true
}
