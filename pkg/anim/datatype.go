package anim

import (
	"fmt"
	"math"
)

// Data type tags of stored value components.
const (
	DataTypeNormShort = 1 // int16 divided by 0x7FFF
	DataTypeFloat     = 2 // float32
	DataTypeShort     = 3 // int16 as is
)

// dataTypeSize returns the byte size of one component of the given type.
func dataTypeSize(dataType uint8) (int, error) {
	switch dataType {
	case DataTypeNormShort, DataTypeShort:
		return 2, nil
	case DataTypeFloat:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedDataType, dataType)
}

// readValue decodes one value of the given kind stored at off with the given
// data type tag.
func readValue(data []byte, off int, dataType uint8, kind TrackKind) (Value, error) {
	size, err := dataTypeSize(dataType)
	if err != nil {
		return nil, err
	}

	c := make([]float32, kind.VectorSize())
	for i := range c {
		at := off + i*size
		switch dataType {
		case DataTypeNormShort:
			var s int16
			if err := readAt(data, at, &s); err != nil {
				return nil, err
			}
			c[i] = float32(s) / float32(math.MaxInt16)
		case DataTypeFloat:
			var f float32
			if err := readAt(data, at, &f); err != nil {
				return nil, err
			}
			c[i] = f
		case DataTypeShort:
			var s int16
			if err := readAt(data, at, &s); err != nil {
				return nil, err
			}
			c[i] = float32(s)
		}
	}
	return NewValue(kind, c)
}
