// Package encoding provides text encoding utilities for Level-5 file formats.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISToUTF8 converts Shift-JIS encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func ShiftJISToUTF8(data []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToShiftJIS converts a UTF-8 string to Shift-JIS encoded bytes.
// Characters Shift-JIS cannot represent, and invalid UTF-8, become '?'.
func UTF8ToShiftJIS(s string) []byte {
	encoder := japanese.ShiftJIS.NewEncoder()
	result := make([]byte, 0, len(s))
	for _, r := range s {
		b, err := encoder.Bytes([]byte(string(r)))
		if err != nil {
			result = append(result, '?')
			continue
		}
		result = append(result, b...)
	}
	return result
}

// TruncateShiftJIS encodes s to Shift-JIS and cuts the result to at most
// limit bytes without splitting a double-byte character.
func TruncateShiftJIS(s string, limit int) []byte {
	encoded := UTF8ToShiftJIS(s)
	if len(encoded) <= limit {
		return encoded
	}

	cut := 0
	for cut < limit {
		n := 1
		if isShiftJISLead(encoded[cut]) {
			n = 2
		}
		if cut+n > limit {
			break
		}
		cut += n
	}
	return encoded[:cut]
}

// isShiftJISLead reports whether b starts a double-byte Shift-JIS sequence.
func isShiftJISLead(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
}

// StripNullBytes removes every null byte from a byte slice.
func StripNullBytes(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte{0}, nil)
}

// CString returns the bytes of data up to the first null terminator.
func CString(data []byte) []byte {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		return data[:idx]
	}
	return data
}

// NameToUTF8 converts a stored name to UTF-8. Names that already are valid
// UTF-8 are kept as-is, everything else is treated as Shift-JIS.
func NameToUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return ShiftJISToUTF8(data)
}
