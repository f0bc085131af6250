// Package anim reads and writes Level-5 animation containers (.mtn2, .imm2
// and .mtm2 files).
//
// A container wraps an LZ10-compressed payload in a small header carrying
// the format tag, animation name and frame count. The payload stores up to
// four tracks of per-node keyframes in one of two layouts, V1 or V2.
package anim

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Faultbox/l5anim/pkg/lz10"
)

// DecodeOptions controls how strictly a container is checked while decoding.
type DecodeOptions struct {
	// Strict rejects payloads whose decompressed length does not match the
	// size recorded in the compression prefix, or exceeds the header size.
	Strict bool
}

// Decode parses a container.
func Decode(data []byte) (*Document, error) {
	return DecodeWithOptions(data, DecodeOptions{})
}

// DecodeWithOptions parses a container using the given options.
func DecodeWithOptions(data []byte, opts DecodeOptions) (*Document, error) {
	env, err := ReadEnvelope(data)
	if err != nil {
		return nil, err
	}

	payload, err := env.Payload(opts.Strict)
	if err != nil {
		return nil, err
	}

	doc := New(env.Format, payloadVersion(payload), env.Name, env.FrameCount)
	switch doc.Version {
	case V2:
		err = decodeV2(doc, payload, env.TrackCounts)
	default:
		err = decodeV1(doc, payload, env.TrackCounts)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", doc.Version, err)
	}
	return doc, nil
}

// Payload decompresses the envelope's payload. In strict mode the output
// must match the length in the compression prefix and fit the header size.
func (e *Envelope) Payload(strict bool) ([]byte, error) {
	payload, err := lz10.LZ10{Strict: strict}.Decompress(e.Compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	if strict && len(payload) > e.DecompSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header allows %d",
			ErrMalformedContainer, len(payload), e.DecompSize)
	}
	return payload, nil
}

// payloadVersion tells the layouts apart by the first word, which V2 always
// sets to the hash table offset.
func payloadVersion(payload []byte) Version {
	if len(payload) >= 4 && int32(binary.LittleEndian.Uint32(payload)) == v2Signature {
		return V2
	}
	return V1
}

var payloadCompressor lz10.Compressor = lz10.New()

// Encode serialises doc into a container using doc.Version's payload layout.
// The document is validated first and is never modified.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var payload []byte
	switch doc.Version {
	case V1:
		payload = encodeV1(doc)
	default:
		var err error
		if payload, err = encodeV2(doc); err != nil {
			return nil, err
		}
	}

	compressed, err := payloadCompressor.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compressing %d byte payload: %w", len(payload), err)
	}
	return writeEnvelope(doc, payload, compressed, trackCounts(doc)), nil
}

// ParseFile reads and decodes a container file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading animation: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteFile encodes doc and writes it to path.
func WriteFile(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing animation: %w", err)
	}
	return nil
}
