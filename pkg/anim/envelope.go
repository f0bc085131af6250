package anim

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/Faultbox/l5anim/pkg/encoding"
	"github.com/Faultbox/l5anim/pkg/namehash"
)

// Fixed envelope offsets written on encode.
const (
	headerSize        = 0x24
	header2Size       = 0x24
	nameOffset        = 0x24
	frameCountOffset  = 0x50
	compressedOffset  = 0x54
	absentTrack int32 = -1
)

// header is the primary container header.
type header struct {
	Magic          uint64
	DecompSize     int32
	NameOffset     int32
	CompDataOffset int32
	TrackCounts    [4]int32
}

// header2 is the shorter layout some files use. It is recognised by the
// primary header reading a zero DecompSize.
type header2 struct {
	Magic          uint64
	Reserved       [8]byte
	DecompSize     int32
	NameOffset     int32
	CompDataOffset int32
	TrackCounts    [2]int32
}

// Envelope is the outer part of a container: everything but the payload
// layout.
type Envelope struct {
	Format     string
	Name       string
	NameHash   uint32
	FrameCount int
	DecompSize int

	// TrackCounts holds the four header track counts. Slots the header does
	// not have are -1.
	TrackCounts [4]int

	// Secondary is set when the file uses the shorter header layout.
	Secondary bool

	// Compressed is the compressed payload, including its 4-byte prefix.
	Compressed []byte
}

// ReadEnvelope parses the container header, name and frame count.
func ReadEnvelope(data []byte) (*Envelope, error) {
	var h header
	if err := readAt(data, 0, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	env := &Envelope{}

	// A zero size means this is the other header layout.
	if h.DecompSize == 0 {
		var h2 header2
		if err := readAt(data, 0, &h2); err != nil {
			return nil, fmt.Errorf("reading secondary header: %w", err)
		}
		h = header{
			Magic:          h2.Magic,
			DecompSize:     h2.DecompSize,
			NameOffset:     h2.NameOffset,
			CompDataOffset: h2.CompDataOffset,
			TrackCounts:    [4]int32{h2.TrackCounts[0], h2.TrackCounts[1], absentTrack, absentTrack},
		}
		env.Secondary = true
	}

	format, err := decodeMagic(h.Magic)
	if err != nil {
		return nil, err
	}
	env.Format = format
	env.DecompSize = int(h.DecompSize)
	for i, c := range h.TrackCounts {
		env.TrackCounts[i] = int(c)
	}

	off := int(h.NameOffset)
	if err := readAt(data, off, &env.NameHash); err != nil {
		return nil, fmt.Errorf("reading name hash: %w", err)
	}

	var frameCount int32
	if err := readAt(data, int(h.CompDataOffset)-4, &frameCount); err != nil {
		return nil, fmt.Errorf("reading frame count: %w", err)
	}
	env.FrameCount = int(frameCount)

	// The name field runs up to the frame count and is not always terminated.
	nameEnd := int(h.CompDataOffset) - 4
	if nameEnd < off+4 {
		return nil, fmt.Errorf("%w: name at 0x%X overlaps frame count at 0x%X",
			ErrMalformedContainer, off+4, nameEnd)
	}
	env.Name = encoding.NameToUTF8(encoding.CString(data[off+4 : nameEnd]))

	env.Compressed = data[h.CompDataOffset:]
	return env, nil
}

// decodeMagic turns the 8-byte magic field into a format tag.
func decodeMagic(magic uint64) (string, error) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], magic)
	tag := encoding.StripNullBytes(raw[:])

	if !utf8.Valid(tag) {
		return "", fmt.Errorf("%w: magic % X is not text", ErrMalformedContainer, raw)
	}
	if !KnownFormat(string(tag)) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormatTag, tag)
	}
	return string(tag), nil
}

// encodeMagic packs up to 8 bytes of the tag little-endian into the magic field.
func encodeMagic(tag string) uint64 {
	var magic uint64
	for i := 0; i < len(tag) && i < 8; i++ {
		magic |= uint64(tag[i]) << (8 * i)
	}
	return magic
}

// writeEnvelope assembles a container from an uncompressed payload.
func writeEnvelope(doc *Document, payload, compressed []byte, counts [4]int32) []byte {
	w := &seekBuffer{buf: make([]byte, 0, compressedOffset+len(compressed))}

	name := encoding.TruncateShiftJIS(doc.Name, MaxNameLength)
	w.Seek(nameOffset)
	w.put(namehash.Sum(name))
	w.Write(name)
	w.Write(make([]byte, frameCountOffset-w.Pos()))
	w.put(int32(doc.FrameCount))
	w.Write(compressed)

	// The size field holds twice the payload length, matching files produced
	// by existing tools. Readers only compare it against zero.
	w.Seek(0)
	w.put(header{
		Magic:          encodeMagic(doc.Format),
		DecompSize:     int32(len(payload) * 2),
		NameOffset:     nameOffset,
		CompDataOffset: compressedOffset,
		TrackCounts:    counts,
	})
	return w.Bytes()
}

// trackCounts returns the node count of each header slot.
func trackCounts(doc *Document) [4]int32 {
	var counts [4]int32
	for i, t := range doc.Tracks {
		if i >= MaxTracks {
			break
		}
		counts[i] = int32(len(t.Nodes))
	}
	return counts
}
