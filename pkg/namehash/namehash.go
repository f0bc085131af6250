// Package namehash computes the 32-bit name hashes Level-5 files use to key
// animation names and animated nodes (bones, UV layers).
//
// A hash is the CRC-32 (IEEE) of the Shift-JIS encoded name. Files store it
// as a signed 32-bit integer; the text form is the 8-digit uppercase hex of
// its two's-complement bits, e.g. "1A2B3C4D" or "F00DCAFE".
package namehash

import (
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	"github.com/Faultbox/l5anim/pkg/encoding"
)

// ErrInvalidKey is returned when a hash key is not 1-8 hex digits.
var ErrInvalidKey = errors.New("invalid name hash key")

// Sum returns the name hash of already encoded bytes.
func Sum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// String returns the name hash of s after Shift-JIS encoding.
func String(s string) uint32 {
	return Sum(encoding.UTF8ToShiftJIS(s))
}

// Key formats a hash as 8 uppercase hex digits.
func Key(h uint32) string {
	return fmt.Sprintf("%08X", h)
}

// KeyOf is shorthand for Key(String(s)).
func KeyOf(s string) string {
	return Key(String(s))
}

// ParseKey parses a hex key produced by Key. Shorter keys are accepted and
// zero-extended, the way hand-edited files often drop leading zeros.
func ParseKey(key string) (uint32, error) {
	if len(key) == 0 || len(key) > 8 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	v, err := strconv.ParseUint(key, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return uint32(v), nil
}
