package anim

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// readAt decodes v (a fixed-size value, struct or slice) from data at off.
func readAt(data []byte, off int, v any) error {
	size := binary.Size(v)
	if size < 0 {
		return fmt.Errorf("readAt: %T has no fixed size", v)
	}
	if off < 0 || off+size > len(data) {
		return fmt.Errorf("%w: %d bytes at 0x%X past end of %d byte buffer",
			ErrMalformedContainer, size, off, len(data))
	}
	return binary.Read(bytes.NewReader(data[off:off+size]), binary.LittleEndian, v)
}

// checkSpan reports whether count elements of size bytes fit in data at off.
// Callers use it before allocating a slice whose length comes from the file.
func checkSpan(data []byte, off, count, size int) error {
	if off < 0 || off > len(data) || count < 0 || count > (len(data)-off)/size {
		return fmt.Errorf("%w: %d entries of %d bytes at 0x%X past end of %d byte buffer",
			ErrMalformedContainer, count, size, off, len(data))
	}
	return nil
}

// seekBuffer is a growable byte buffer with a movable write position.
// Writing past the end zero-fills the gap.
type seekBuffer struct {
	buf []byte
	pos int
}

func (w *seekBuffer) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, w.buf)
			w.buf = grown
		} else {
			w.buf = w.buf[:end]
		}
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

// Seek moves the write position to an absolute offset.
func (w *seekBuffer) Seek(pos int) {
	w.pos = pos
}

// Pos returns the write position.
func (w *seekBuffer) Pos() int {
	return w.pos
}

// Align writes zero bytes until the position is a multiple of n.
func (w *seekBuffer) Align(n int) {
	if rem := w.pos % n; rem != 0 {
		w.Write(make([]byte, n-rem))
	}
}

// put writes a fixed-size little-endian value at the current position.
func (w *seekBuffer) put(v any) {
	// seekBuffer.Write never fails.
	_ = binary.Write(w, binary.LittleEndian, v)
}

// Bytes returns everything written so far.
func (w *seekBuffer) Bytes() []byte {
	return w.buf
}
