package anim

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Faultbox/l5anim/pkg/namehash"
)

// Key names of the interchange tree shared by the JSON and YAML forms.
const (
	keyFormat     = "Format"
	keyVersion    = "Version"
	keyFrameCount = "FrameCount"
	keyName       = "AnimationName"
	keyNodes      = "Nodes"
)

// formatComponent renders a component in its shortest float32 form.
func formatComponent(f float32) (string, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return "", fmt.Errorf("%w: component %v has no text form", ErrInvalidDocument, f)
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
}

func parseFrameKey(s string) (int, error) {
	frame, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: frame key %q", ErrInvalidDocument, s)
	}
	return frame, nil
}

func parseNodeKey(s string) (uint32, error) {
	h, err := namehash.ParseKey(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return h, nil
}

// valueFromFields builds a value of kind from field name to number text.
// Fields that are not given stay zero.
func valueFromFields(kind TrackKind, fields map[string]string) (Value, error) {
	v := ZeroValue(kind)
	for name, text := range fields {
		f, ok := FieldByName(kind, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrInvalidDocument, kind, name)
		}
		x, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidDocument, kind, name, err)
		}
		v = f.Set(v, float32(x))
	}
	return v, nil
}

// addKeyframes stores keys under the node hash of the kind's track. The track
// is added on first use, so kinds without keyframes never create one.
func addKeyframes(doc *Document, kind TrackKind, hash uint32, keys []Keyframe) error {
	if len(keys) == 0 {
		return nil
	}
	track, err := doc.AddTrack(kind)
	if err != nil {
		return err
	}
	n := track.AddNode(hash)
	for _, k := range keys {
		n.Set(k.Frame, k.Value)
	}
	return nil
}
