package anim

import (
	"fmt"
	"math"
)

const (
	// v2Signature is the first word of every V2 payload: the offset of the
	// hash table, which always directly follows the 12-byte data header.
	v2Signature = 0x0C

	v2TrackPointersSize = MaxTracks * 2
	v2TrackDescSize     = 8
	v2TrackBlockSize    = v2TrackPointersSize + MaxTracks*v2TrackDescSize
	v2NodeRecordSize    = 16

	// Frame counts whose high byte is non-zero store it biased by this value.
	v2FrameCountBias = 32
)

type v2DataHeader struct {
	HashOffset  int32
	TrackOffset int32
	DataOffset  int32
}

type v2TrackDesc struct {
	Kind       uint8
	DataType   uint8
	Reserved   uint8
	VectorSize uint8
	Start      int16
	End        int16
}

type v2NodeRecord struct {
	FlagOffset     int32
	KeyFrameOffset int32
	KeyDataOffset  int32
	Reserved       int32
}

// packFrameCount encodes a keyframe count into its low and high bytes.
func packFrameCount(n int) (lo, hi uint8) {
	if n < 255 {
		return uint8(n), 0
	}
	return uint8(n & 0xFF), uint8(v2FrameCountBias + (n>>8)&0xFF)
}

// unpackFrameCount is the inverse of packFrameCount.
func unpackFrameCount(lo, hi uint8) int {
	if hi == 0 {
		return int(lo)
	}
	return (int(hi)-v2FrameCountBias)<<8 | int(lo)
}

// decodeV2 reads a hash-indexed payload into doc.
func decodeV2(doc *Document, payload []byte, counts [4]int) error {
	var dh v2DataHeader
	if err := readAt(payload, 0, &dh); err != nil {
		return fmt.Errorf("data header: %w", err)
	}

	hashCount := int(dh.TrackOffset-dh.HashOffset) / 4
	if hashCount < 0 {
		return fmt.Errorf("%w: track table at 0x%X precedes hash table at 0x%X",
			ErrMalformedContainer, dh.TrackOffset, dh.HashOffset)
	}
	if err := checkSpan(payload, int(dh.HashOffset), hashCount, 4); err != nil {
		return fmt.Errorf("hash table: %w", err)
	}
	hashes := make([]uint32, hashCount)
	if err := readAt(payload, int(dh.HashOffset), hashes); err != nil {
		return fmt.Errorf("hash table: %w", err)
	}

	cursor := 0
	slot := 0
	for i, count := range counts {
		if count == int(absentTrack) {
			continue
		}

		var ptr uint16
		if err := readAt(payload, int(dh.TrackOffset)+2*slot, &ptr); err != nil {
			return fmt.Errorf("track %d pointer: %w", i, err)
		}
		slot++

		var desc v2TrackDesc
		if err := readAt(payload, int(ptr), &desc); err != nil {
			return fmt.Errorf("track %d descriptor: %w", i, err)
		}
		if count <= 0 {
			continue
		}

		kind := TrackKind(desc.Kind)
		if !kind.Valid() {
			return fmt.Errorf("%w: track %d has %d nodes but kind %d",
				ErrMalformedContainer, i, count, desc.Kind)
		}
		if int(desc.VectorSize) < kind.VectorSize() {
			return fmt.Errorf("%w: %s track stores %d components, needs %d",
				ErrMalformedContainer, kind, desc.VectorSize, kind.VectorSize())
		}
		if _, err := dataTypeSize(desc.DataType); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}

		track := doc.Track(kind)
		if track == nil {
			var err error
			if track, err = doc.AddTrack(kind); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedContainer, err)
			}
		}

		for j := 0; j < count; j++ {
			at := int(dh.DataOffset) + v2NodeRecordSize*(cursor+j)
			if err := decodeV2Node(track, payload, at, hashes, desc); err != nil {
				return fmt.Errorf("track %d node %d: %w", i, j, err)
			}
		}
		cursor += count
	}
	return nil
}

func decodeV2Node(track *Track, payload []byte, at int, hashes []uint32, desc v2TrackDesc) error {
	var rec v2NodeRecord
	if err := readAt(payload, at, &rec); err != nil {
		return fmt.Errorf("node record: %w", err)
	}

	var flag struct {
		HashIndex int16
		CountLow  uint8
		CountHigh uint8
	}
	if err := readAt(payload, int(rec.FlagOffset), &flag); err != nil {
		return fmt.Errorf("node flags: %w", err)
	}
	if flag.HashIndex < 0 || int(flag.HashIndex) >= len(hashes) {
		return fmt.Errorf("%w: hash index %d outside table of %d",
			ErrMalformedContainer, flag.HashIndex, len(hashes))
	}

	count := unpackFrameCount(flag.CountLow, flag.CountHigh)
	if count <= 0 {
		return nil
	}

	if err := checkSpan(payload, int(rec.KeyFrameOffset), count, 2); err != nil {
		return fmt.Errorf("frame list: %w", err)
	}
	frames := make([]int16, count)
	if err := readAt(payload, int(rec.KeyFrameOffset), frames); err != nil {
		return fmt.Errorf("frame list: %w", err)
	}

	size, _ := dataTypeSize(desc.DataType)
	stride := int(desc.VectorSize) * size

	node := track.AddNode(hashes[flag.HashIndex])
	for k, frame := range frames {
		v, err := readValue(payload, int(rec.KeyDataOffset)+k*stride, desc.DataType, track.Kind)
		if err != nil {
			return fmt.Errorf("value %d: %w", k, err)
		}
		node.add(int(frame), v)
	}
	return nil
}

// encodeV2 writes doc as a hash-indexed payload.
func encodeV2(doc *Document) ([]byte, error) {
	hashes, index := distinctHashes(doc)
	total := doc.NodeCount()

	trackOffset := v2Signature + 4*len(hashes)
	tableOffset := trackOffset + v2TrackBlockSize
	if tableOffset > math.MaxUint16 || len(hashes) > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %d distinct node hashes do not fit the track tables",
			ErrInvalidDocument, len(hashes))
	}

	// Node data starts after room for one hash and one record per node, even
	// when several nodes share a hash.
	dataOffset := v2Signature + 4*total + v2TrackBlockSize + v2NodeRecordSize*total

	w := &seekBuffer{}
	w.put(v2DataHeader{
		HashOffset:  v2Signature,
		TrackOffset: int32(trackOffset),
		DataOffset:  int32(tableOffset),
	})
	w.put(hashes)

	descOffset := trackOffset + v2TrackPointersSize
	for i := 0; i < MaxTracks; i++ {
		w.Seek(trackOffset + 2*i)
		w.put(uint16(descOffset + v2TrackDescSize*i))

		var desc v2TrackDesc
		if i < len(doc.Tracks) && len(doc.Tracks[i].Nodes) > 0 {
			t := doc.Tracks[i]
			desc = v2TrackDesc{
				Kind:       uint8(t.Kind),
				DataType:   DataTypeFloat,
				VectorSize: uint8(t.Kind.VectorSize()),
				End:        int16(doc.FrameCount),
			}

			for _, n := range t.Nodes {
				flagOffset := dataOffset

				w.Seek(flagOffset)
				lo, hi := packFrameCount(len(n.keys))
				w.put(int16(index[n.Hash]))
				w.put([]uint8{lo, hi})
				frames := make([]int16, len(n.keys))
				var values []byte
				for k, key := range n.keys {
					frames[k] = int16(key.Frame)
					values = AppendValue(values, key.Value)
				}
				w.put(frames)
				w.Align(4)

				valueOffset := w.Pos()
				w.Write(values)
				dataOffset = w.Pos()

				w.Seek(tableOffset)
				w.put(v2NodeRecord{
					FlagOffset:     int32(flagOffset),
					KeyFrameOffset: int32(flagOffset + 4),
					KeyDataOffset:  int32(valueOffset),
				})
				tableOffset += v2NodeRecordSize
			}
		}

		w.Seek(descOffset + v2TrackDescSize*i)
		w.put(desc)
	}
	return w.Bytes(), nil
}

// distinctHashes lists node hashes in first-seen order across all tracks,
// along with each hash's position in that list.
func distinctHashes(doc *Document) ([]uint32, map[uint32]int) {
	var hashes []uint32
	index := make(map[uint32]int)
	for _, t := range doc.Tracks {
		for _, n := range t.Nodes {
			if _, ok := index[n.Hash]; !ok {
				index[n.Hash] = len(hashes)
				hashes = append(hashes, n.Hash)
			}
		}
	}
	return hashes, index
}
