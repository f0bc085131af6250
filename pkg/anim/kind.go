package anim

import (
	"fmt"
	"strings"
)

// Known container tags.
const (
	FormatMTN = "XMTN" // .mtn2 skeletal motion
	FormatIMM = "XIMA" // .imm2 image (UV) animation
	FormatMTM = "XMTM" // .mtm2 material animation
)

// KnownFormat reports whether tag is one of the supported container tags.
func KnownFormat(tag string) bool {
	switch tag {
	case FormatMTN, FormatIMM, FormatMTM:
		return true
	}
	return false
}

// Version selects the payload layout of a container.
type Version string

// Payload layouts.
const (
	V1 Version = "V1" // sequential node tables
	V2 Version = "V2" // hash-indexed tracks
)

// ParseVersion parses "V1" or "V2". An empty string means V2, which is what
// files written without an explicit version have always been saved as.
func ParseVersion(s string) (Version, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "V1":
		return V1, nil
	case "V2", "":
		return V2, nil
	}
	return "", fmt.Errorf("%w: unknown version %q", ErrInvalidDocument, s)
}

// TrackKind identifies the kind of value a track carries. The numeric value
// is the tag stored in files.
type TrackKind uint8

// Track kinds. Tag 6 is not used by any known file.
const (
	KindLocation          TrackKind = 1
	KindRotation          TrackKind = 2
	KindScale             TrackKind = 3
	KindUVMove            TrackKind = 4
	KindUVScale           TrackKind = 5
	KindTextureBrightness TrackKind = 7
	KindTextureUnk        TrackKind = 8
)

// MaxTracks is the number of track slots a container header has room for.
const MaxTracks = 4

type kindInfo struct {
	name   string
	fields []string
}

var kindTable = map[TrackKind]kindInfo{
	KindLocation:          {"BoneLocation", []string{"X", "Y", "Z"}},
	KindRotation:          {"BoneRotation", []string{"X", "Y", "Z", "W"}},
	KindScale:             {"BoneScale", []string{"X", "Y", "Z"}},
	KindUVMove:            {"UVMove", []string{"X", "Y"}},
	KindUVScale:           {"UVScale", []string{"X", "Y"}},
	KindTextureBrightness: {"TextureBrightness", []string{"Brightness"}},
	KindTextureUnk:        {"TextureUnk", []string{"X", "Y", "Z"}},
}

var kindAliases = map[string]TrackKind{
	"location": KindLocation,
	"rotation": KindRotation,
	"scale":    KindScale,
}

// Kinds returns every known track kind in tag order.
func Kinds() []TrackKind {
	return []TrackKind{
		KindLocation, KindRotation, KindScale, KindUVMove,
		KindUVScale, KindTextureBrightness, KindTextureUnk,
	}
}

// Valid reports whether k is a known track kind.
func (k TrackKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// String returns the canonical name of the kind.
func (k TrackKind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("TrackKind(%d)", uint8(k))
}

// VectorSize returns the number of float components in a value of this kind.
func (k TrackKind) VectorSize() int {
	return len(kindTable[k].fields)
}

// ValueSize returns the encoded size in bytes of one value of this kind.
func (k TrackKind) ValueSize() int {
	return k.VectorSize() * 4
}

// FieldNames returns the component names of the kind, in encoding order.
func (k TrackKind) FieldNames() []string {
	return append([]string(nil), kindTable[k].fields...)
}

// ParseTrackKind resolves a track name. Canonical names match exactly;
// the short names "Location", "Rotation" and "Scale" are accepted too.
func ParseTrackKind(name string) (TrackKind, error) {
	for k, info := range kindTable {
		if info.name == name {
			return k, nil
		}
	}
	if k, ok := kindAliases[strings.ToLower(name)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: unknown track kind %q", ErrInvalidDocument, name)
}
