// Package lz10 implements the LZ10 variant Level-5 uses to wrap file
// payloads.
//
// A compressed buffer starts with a little-endian uint32 holding
// decompressed_length<<3 | method, with method 1 identifying LZ10. It is
// followed by groups of up to eight tokens, each group led by a control byte
// read from the most significant bit down. A clear bit is a literal byte, a
// set bit a two-byte back-reference: length in the high nibble (plus 3) and
// displacement in the remaining 12 bits (plus 1).
package lz10

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Method is the compression method tag stored in the low 3 bits of the prefix.
	Method = 1

	// MaxInputSize is the largest input whose length still fits the prefix.
	MaxInputSize = 0x1FFFFFFF

	headerSize = 4
	windowSize = 0x1000
	minMatch   = 3
	maxMatch   = 0x12
)

var (
	// ErrPayloadTooLarge is returned when the input exceeds MaxInputSize.
	ErrPayloadTooLarge = errors.New("lz10: payload too large")

	// ErrSizeMismatch is returned by DecompressStrict when the output length
	// differs from the length recorded in the prefix.
	ErrSizeMismatch = errors.New("lz10: decompressed size mismatch")

	// ErrTruncated is returned when a buffer is too short to hold the prefix.
	ErrTruncated = errors.New("lz10: truncated header")
)

// Compress compresses data. The output is deterministic: equal inputs always
// produce byte-identical outputs.
func Compress(data []byte) ([]byte, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	out := make([]byte, headerSize, headerSize+len(data)+len(data)/8+1)
	binary.LittleEndian.PutUint32(out, uint32(len(data))<<3|Method)

	// One control byte plus at most eight two-byte tokens.
	var block [1 + 8*2]byte
	blockLen, tokens := 1, 0

	pos := 0
	for pos < len(data) {
		if tokens == 8 {
			out = append(out, block[:blockLen]...)
			block[0] = 0
			blockLen, tokens = 1, 0
		}

		length, disp := longestMatch(data, pos)
		if length < minMatch {
			block[blockLen] = data[pos]
			blockLen++
			pos++
		} else {
			block[0] |= 1 << (7 - tokens)
			block[blockLen] = byte((length-minMatch)<<4) | byte((disp-1)>>8)&0x0F
			block[blockLen+1] = byte(disp - 1)
			blockLen += 2
			pos += length
		}
		tokens++
	}

	if tokens > 0 {
		out = append(out, block[:blockLen]...)
	}
	return out, nil
}

// longestMatch finds the longest run starting at pos that can be copied from
// up to windowSize bytes back. The run may extend past pos, since the
// decompressor copies byte by byte from its own output. Candidates are scanned
// from the farthest displacement inward and only a strictly longer run
// replaces the current best, so ties resolve to the farthest source.
// Displacement 1 is never considered; files produced by the reference
// encoder never contain it.
func longestMatch(data []byte, pos int) (length, disp int) {
	limit := len(data) - pos
	if limit > maxMatch {
		limit = maxMatch
	}
	if limit == 0 {
		return 0, 0
	}

	window := pos
	if window > windowSize {
		window = windowSize
	}
	start := pos - window

	for i := 0; i < window-1; i++ {
		src := start + i
		n := 0
		for n < limit && data[src+n] == data[pos+n] {
			n++
		}
		if n > length {
			length = n
			disp = window - i
			if length == limit {
				break
			}
		}
	}
	return length, disp
}

// Decompress expands data produced by Compress. It never fails: decoding
// stops at the end of the input, or as soon as a token would read past it,
// and whatever was produced so far is returned. Callers that need to detect
// damaged input should compare the result with an expected size, or use
// DecompressStrict.
func Decompress(data []byte) []byte {
	if len(data) <= headerSize {
		return []byte{}
	}

	out := make([]byte, 0, sizeHint(data))
	p := headerSize
	var flags, mask byte

	for p < len(data) {
		if mask == 0 {
			flags = data[p]
			p++
			mask = 0x80
		}

		if flags&mask == 0 {
			if p+1 > len(data) {
				break
			}
			out = append(out, data[p])
			p++
		} else {
			if p+2 > len(data) {
				break
			}
			n := int(data[p])<<8 | int(data[p+1])
			p += 2
			disp := n&0x0FFF + 1
			count := n>>12 + minMatch

			for j := 0; j < count; j++ {
				// References before the start of the output produce nothing.
				if len(out)-disp >= 0 {
					out = append(out, out[len(out)-disp])
				}
			}
		}
		mask >>= 1
	}
	return out
}

// DecompressSize returns the decompressed length recorded in the prefix of data.
func DecompressSize(data []byte) (int, error) {
	if len(data) < headerSize {
		return 0, ErrTruncated
	}
	return int(binary.LittleEndian.Uint32(data) >> 3), nil
}

// DecompressStrict is Decompress followed by a check of the output length
// against the length recorded in the prefix.
func DecompressStrict(data []byte) ([]byte, error) {
	want, err := DecompressSize(data)
	if err != nil {
		return nil, err
	}

	out := Decompress(data)
	if len(out) != want {
		return nil, fmt.Errorf("%w: got %d bytes, header says %d", ErrSizeMismatch, len(out), want)
	}
	return out, nil
}

// sizeHint returns a capacity guess for the output buffer, bounded so that a
// corrupt prefix cannot trigger a huge allocation.
func sizeHint(data []byte) int {
	size := int(binary.LittleEndian.Uint32(data) >> 3)
	if bound := len(data) * 9; size > bound {
		size = bound
	}
	return size
}
