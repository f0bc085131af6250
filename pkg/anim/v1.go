package anim

import (
	"fmt"
)

const (
	v1TableHeaderSize = 20
	v1NodeHeaderSize  = 32

	// v1NodeKindVector is the only node kind ever written.
	v1NodeKindVector = 1
)

// v1TableHeader points at the four blocks that make up one node.
type v1TableHeader struct {
	NodeOffset              int32
	KeyFrameOffset          int32
	DifferentKeyFrameOffset int32
	DataOffset              int32
	Padding                 int32
}

// v1NodeHeader describes one node and the sizes of its blocks.
type v1NodeHeader struct {
	NameHash             uint32
	TrackKind            uint8
	DataType             uint8
	NodeKind             uint8
	Reserved             uint8
	FrameStart           int16
	FrameEnd             int16
	DataCount            int16
	DifferentFrameCount  int16
	DataByteSize         uint8
	DataVectorSize       uint8
	DataVectorLength     int16
	DifferentFrameLength int32
	FrameLength          int32
	DataLength           int32
}

// decodeV1 reads a sequential-table payload into doc.
func decodeV1(doc *Document, payload []byte, counts [4]int) error {
	total := 0
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}

	for i := 0; i < total; i++ {
		if err := decodeV1Node(doc, payload, i); err != nil {
			return fmt.Errorf("reading node %d: %w", i, err)
		}
	}
	return nil
}

func decodeV1Node(doc *Document, payload []byte, index int) error {
	var table v1TableHeader
	if err := readAt(payload, index*v1TableHeaderSize, &table); err != nil {
		return fmt.Errorf("table header: %w", err)
	}

	var node v1NodeHeader
	if err := readAt(payload, int(table.NodeOffset), &node); err != nil {
		return fmt.Errorf("node header: %w", err)
	}
	if node.TrackKind == 0 {
		return nil
	}

	kind := TrackKind(node.TrackKind)
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown track kind %d", ErrMalformedContainer, node.TrackKind)
	}
	if int(node.DataVectorSize) < kind.VectorSize() {
		return fmt.Errorf("%w: %s node stores %d components, needs %d",
			ErrMalformedContainer, kind, node.DataVectorSize, kind.VectorSize())
	}
	if _, err := dataTypeSize(node.DataType); err != nil {
		return err
	}

	// The per-frame key index table carries nothing the explicit frame list
	// does not; it is only bounds checked.
	if n := int(node.DifferentFrameLength) / 2; n > 0 {
		if err := checkSpan(payload, int(table.KeyFrameOffset), n, 2); err != nil {
			return fmt.Errorf("key frame table: %w", err)
		}
	}

	count := max(int(node.FrameLength)/2, 0)
	if err := checkSpan(payload, int(table.DifferentKeyFrameOffset), count, 2); err != nil {
		return fmt.Errorf("frame list: %w", err)
	}
	frames := make([]int16, count)
	if err := readAt(payload, int(table.DifferentKeyFrameOffset), frames); err != nil {
		return fmt.Errorf("frame list: %w", err)
	}
	if len(frames) == 0 {
		return nil
	}

	track := doc.Track(kind)
	if track == nil {
		var err error
		if track, err = doc.AddTrack(kind); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedContainer, err)
		}
	}
	n := track.AddNode(node.NameHash)

	stride := int(node.DataVectorSize) * int(node.DataByteSize)
	for j, frame := range frames {
		v, err := readValue(payload, int(table.DataOffset)+j*stride, node.DataType, kind)
		if err != nil {
			return fmt.Errorf("value %d: %w", j, err)
		}
		n.add(int(frame), v)
	}
	return nil
}

// encodeV1 writes doc as a sequential-table payload. Every node is extended
// with a keyframe at FrameCount when its last keyframe ends earlier.
func encodeV1(doc *Document) []byte {
	// An empty payload would leave the header size field at zero, which
	// readers take as the other header layout.
	if doc.NodeCount() == 0 {
		return make([]byte, 4)
	}

	w := &seekBuffer{}

	headerPos := 0
	nodeOffset := doc.NodeCount() * v1TableHeaderSize

	for _, t := range doc.Tracks {
		size := t.Kind.VectorSize()
		for _, n := range t.Nodes {
			keys := withFinalKeyframe(n.keys, doc.FrameCount)
			start := nodeOffset

			w.Seek(start)
			w.put(v1NodeHeader{
				NameHash:             n.Hash,
				TrackKind:            uint8(t.Kind),
				DataType:             DataTypeFloat,
				NodeKind:             v1NodeKindVector,
				FrameStart:           0,
				FrameEnd:             int16(doc.FrameCount),
				DataCount:            int16(len(keys)),
				DifferentFrameCount:  int16(doc.FrameCount + 1),
				DataByteSize:         4,
				DataVectorSize:       uint8(size),
				DataVectorLength:     int16(size * 4),
				DifferentFrameLength: int32((doc.FrameCount + 1) * 2),
				FrameLength:          int32(len(keys) * 2),
				DataLength:           int32(len(keys) * size * 4),
			})

			keyFrameOffset := w.Pos()
			w.put(stepTable(keys, doc.FrameCount+1))
			w.Align(4)

			frameListOffset := w.Pos()
			frames := make([]int16, len(keys))
			for i, k := range keys {
				frames[i] = int16(k.Frame)
			}
			w.put(frames)
			w.Align(4)

			dataOffset := w.Pos()
			var values []byte
			for _, k := range keys {
				values = AppendValue(values, k.Value)
			}
			w.Write(values)

			nodeOffset = w.Pos()

			w.Seek(headerPos)
			w.put(v1TableHeader{
				NodeOffset:              int32(start),
				KeyFrameOffset:          int32(keyFrameOffset),
				DifferentKeyFrameOffset: int32(frameListOffset),
				DataOffset:              int32(dataOffset),
			})
			headerPos = w.Pos()
		}
	}
	return w.Bytes()
}

// withFinalKeyframe returns keys, extended by a copy of the last value at
// frameCount if the keys stop short of it. keys is never modified.
func withFinalKeyframe(keys []Keyframe, frameCount int) []Keyframe {
	if len(keys) == 0 || keys[len(keys)-1].Frame == frameCount {
		return keys
	}
	out := make([]Keyframe, len(keys), len(keys)+1)
	copy(out, keys)
	return append(out, Keyframe{Frame: frameCount, Value: keys[len(keys)-1].Value})
}

// stepTable expands keyframes into a per-frame table of size entries where
// entry f is the index of the keyframe in effect at frame f. Frames before
// the first keyframe map to 0.
func stepTable(keys []Keyframe, size int) []int16 {
	table := make([]int16, size)
	for i, k := range keys {
		next := size
		if i+1 < len(keys) {
			next = keys[i+1].Frame
		}
		for f := k.Frame; f < next && f < size; f++ {
			table[f] = int16(i)
		}
	}
	return table
}
