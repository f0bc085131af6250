package anim

import (
	"errors"

	"github.com/Faultbox/l5anim/pkg/lz10"
)

// Animation container errors.
var (
	ErrMalformedContainer   = errors.New("malformed animation container")
	ErrUnsupportedFormatTag = errors.New("unsupported animation format tag")
	ErrUnsupportedDataType  = errors.New("unsupported animation data type")
	ErrInvalidDocument      = errors.New("invalid animation document")

	// ErrPayloadTooLarge is returned when the uncompressed payload cannot be
	// addressed by the compression prefix.
	ErrPayloadTooLarge = lz10.ErrPayloadTooLarge
)
