package anim

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Value is one keyframe value. The set of implementations is closed: one
// type per TrackKind.
type Value interface {
	// Kind returns the track kind this value belongs to.
	Kind() TrackKind
	// Components returns the float components in encoding order.
	Components() []float32

	isValue()
}

// Location is a bone translation.
type Location struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
	Z float32 `json:"Z"`
}

// Rotation is a bone rotation quaternion.
type Rotation struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
	Z float32 `json:"Z"`
	W float32 `json:"W"`
}

// Scale is a bone scale.
type Scale struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
	Z float32 `json:"Z"`
}

// UVMove is a texture coordinate offset.
type UVMove struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
}

// UVScale is a texture coordinate scale.
type UVScale struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
}

// TextureBrightness is a material brightness factor.
type TextureBrightness struct {
	Brightness float32 `json:"Brightness"`
}

// TextureUnk is a three component material track of unknown meaning.
type TextureUnk struct {
	X float32 `json:"X"`
	Y float32 `json:"Y"`
	Z float32 `json:"Z"`
}

func (Location) Kind() TrackKind          { return KindLocation }
func (Rotation) Kind() TrackKind          { return KindRotation }
func (Scale) Kind() TrackKind             { return KindScale }
func (UVMove) Kind() TrackKind            { return KindUVMove }
func (UVScale) Kind() TrackKind           { return KindUVScale }
func (TextureBrightness) Kind() TrackKind { return KindTextureBrightness }
func (TextureUnk) Kind() TrackKind        { return KindTextureUnk }

func (v Location) Components() []float32          { return []float32{v.X, v.Y, v.Z} }
func (v Rotation) Components() []float32          { return []float32{v.X, v.Y, v.Z, v.W} }
func (v Scale) Components() []float32             { return []float32{v.X, v.Y, v.Z} }
func (v UVMove) Components() []float32            { return []float32{v.X, v.Y} }
func (v UVScale) Components() []float32           { return []float32{v.X, v.Y} }
func (v TextureBrightness) Components() []float32 { return []float32{v.Brightness} }
func (v TextureUnk) Components() []float32        { return []float32{v.X, v.Y, v.Z} }

func (Location) isValue()          {}
func (Rotation) isValue()          {}
func (Scale) isValue()             {}
func (UVMove) isValue()            {}
func (UVScale) isValue()           {}
func (TextureBrightness) isValue() {}
func (TextureUnk) isValue()        {}

// NewValue builds the value of the given kind from its components.
func NewValue(kind TrackKind, c []float32) (Value, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown track kind %d", ErrInvalidDocument, kind)
	}
	if len(c) != kind.VectorSize() {
		return nil, fmt.Errorf("%w: %s needs %d components, got %d",
			ErrInvalidDocument, kind, kind.VectorSize(), len(c))
	}

	switch kind {
	case KindLocation:
		return Location{c[0], c[1], c[2]}, nil
	case KindRotation:
		return Rotation{c[0], c[1], c[2], c[3]}, nil
	case KindScale:
		return Scale{c[0], c[1], c[2]}, nil
	case KindUVMove:
		return UVMove{c[0], c[1]}, nil
	case KindUVScale:
		return UVScale{c[0], c[1]}, nil
	case KindTextureBrightness:
		return TextureBrightness{c[0]}, nil
	default:
		return TextureUnk{c[0], c[1], c[2]}, nil
	}
}

// ZeroValue returns the zero value of the given kind, or nil for an
// unknown kind.
func ZeroValue(kind TrackKind) Value {
	v, err := NewValue(kind, make([]float32, kind.VectorSize()))
	if err != nil {
		return nil
	}
	return v
}

// AppendValue appends the little-endian float32 encoding of v to dst.
func AppendValue(dst []byte, v Value) []byte {
	for _, c := range v.Components() {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(c))
	}
	return dst
}

// Field gives named access to one component of a value kind.
type Field struct {
	Name string
	// Get returns the component. The value must be of the field's kind.
	Get func(Value) float32
	// Set returns a copy of the value with the component replaced.
	Set func(Value, float32) Value
}

var fieldTable = buildFieldTable()

func buildFieldTable() map[TrackKind][]Field {
	table := make(map[TrackKind][]Field, len(kindTable))
	for kind, info := range kindTable {
		fields := make([]Field, len(info.fields))
		for i, name := range info.fields {
			i := i // per-iteration copy (go.mod language version is pre-1.22)
			fields[i] = Field{
				Name: name,
				Get: func(v Value) float32 {
					return v.Components()[i]
				},
				Set: func(v Value, x float32) Value {
					c := v.Components()
					c[i] = x
					nv, _ := NewValue(v.Kind(), c)
					return nv
				},
			}
		}
		table[kind] = fields
	}
	return table
}

// Fields returns the accessor table of a kind, nil for unknown kinds.
// The returned slice is shared and must not be modified.
func Fields(kind TrackKind) []Field {
	return fieldTable[kind]
}

// FieldByName looks up one accessor of a kind.
func FieldByName(kind TrackKind, name string) (Field, bool) {
	for _, f := range fieldTable[kind] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
