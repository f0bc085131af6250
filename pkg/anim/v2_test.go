package anim

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFrameCount(t *testing.T) {
	tests := []struct {
		n      int
		lo, hi uint8
	}{
		{0, 0, 0},
		{1, 1, 0},
		{254, 254, 0},
		{255, 0xFF, 32},
		{256, 0x00, 33},
		{8191, 0xFF, 63},
	}

	for _, tt := range tests {
		lo, hi := packFrameCount(tt.n)
		assert.Equal(t, tt.lo, lo, "lo byte of %d", tt.n)
		assert.Equal(t, tt.hi, hi, "hi byte of %d", tt.n)
		assert.Equal(t, tt.n, unpackFrameCount(lo, hi))
	}
}

func TestEncodeV2_Layout(t *testing.T) {
	doc := New(FormatMTN, V2, "walk", 10)
	track, _ := doc.AddTrack(KindLocation)
	n := track.AddNode(0xCAFEBABE)
	n.Set(0, Location{1, 2, 3})
	n.Set(10, Location{4, 5, 6})

	payload, err := encodeV2(doc)
	require.NoError(t, err)
	require.Len(t, payload, 0x68)

	var dh v2DataHeader
	require.NoError(t, readAt(payload, 0, &dh))
	assert.Equal(t, v2DataHeader{HashOffset: 0x0C, TrackOffset: 0x10, DataOffset: 0x38}, dh)
	assert.Equal(t, uint32(0xCAFEBABE), binary.LittleEndian.Uint32(payload[0x0C:]))

	ptrs := make([]uint16, 4)
	require.NoError(t, readAt(payload, 0x10, ptrs))
	assert.Equal(t, []uint16{0x18, 0x20, 0x28, 0x30}, ptrs)

	var desc v2TrackDesc
	require.NoError(t, readAt(payload, 0x18, &desc))
	assert.Equal(t, v2TrackDesc{Kind: 1, DataType: DataTypeFloat, VectorSize: 3, End: 10}, desc)
	assert.Equal(t, make([]byte, 24), payload[0x20:0x38], "unused descriptors")

	var rec v2NodeRecord
	require.NoError(t, readAt(payload, 0x38, &rec))
	assert.Equal(t, v2NodeRecord{FlagOffset: 0x48, KeyFrameOffset: 0x4C, KeyDataOffset: 0x50}, rec)

	assert.Equal(t, []byte{0, 0, 2, 0, 0, 0, 10, 0}, payload[0x48:0x50])

	values := make([]float32, 6)
	require.NoError(t, readAt(payload, 0x50, values))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)

	got := New(FormatMTN, V2, "walk", 10)
	require.NoError(t, decodeV2(got, payload, [4]int{1, 0, 0, 0}))
	assert.True(t, doc.Equal(got))
}

func TestEncodeV2_SharedHashes(t *testing.T) {
	doc := New(FormatMTN, V2, "walk", 10)
	loc, _ := doc.AddTrack(KindLocation)
	loc.AddNode(0xAAAA).Set(0, Location{1, 1, 1})
	rot, _ := doc.AddTrack(KindRotation)
	rot.AddNode(0xAAAA).Set(0, Rotation{0, 0, 0, 1})

	payload, err := encodeV2(doc)
	require.NoError(t, err)

	var dh v2DataHeader
	require.NoError(t, readAt(payload, 0, &dh))
	assert.Equal(t, int32(0x10), dh.TrackOffset, "one distinct hash")

	// Node data starts after room for one hash per node.
	var rec v2NodeRecord
	require.NoError(t, readAt(payload, int(dh.DataOffset), &rec))
	assert.Equal(t, int32(0x0C+4*2+40+16*2), rec.FlagOffset)

	var second v2NodeRecord
	require.NoError(t, readAt(payload, int(dh.DataOffset)+v2NodeRecordSize, &second))
	assert.Zero(t, binary.LittleEndian.Uint16(payload[second.FlagOffset:]), "hash index")

	got := New(FormatMTN, V2, "walk", 10)
	require.NoError(t, decodeV2(got, payload, [4]int{1, 1, 0, 0}))
	assert.True(t, doc.Equal(got))
}

func TestEncodeV2_ManyKeyframes(t *testing.T) {
	doc := New(FormatIMM, V2, "scroll", 300)
	track, _ := doc.AddTrack(KindUVMove)
	n := track.AddNode(5)
	for f := 0; f < 256; f++ {
		n.Set(f, UVMove{float32(f), -float32(f)})
	}

	payload, err := encodeV2(doc)
	require.NoError(t, err)

	var rec v2NodeRecord
	require.NoError(t, readAt(payload, 0x38, &rec))
	assert.Equal(t, []byte{0x00, 33}, payload[rec.FlagOffset+2:rec.FlagOffset+4])

	data, err := Encode(doc)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(got))
}

func TestDecodeV2_BadHashIndex(t *testing.T) {
	doc := sampleDocument(V2)
	payload, err := encodeV2(doc)
	require.NoError(t, err)

	var dh v2DataHeader
	require.NoError(t, readAt(payload, 0, &dh))
	var rec v2NodeRecord
	require.NoError(t, readAt(payload, int(dh.DataOffset), &rec))
	binary.LittleEndian.PutUint16(payload[rec.FlagOffset:], 5)

	_, err = Decode(containerFor(t, doc, payload))
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestDecodeV2_KindZeroWithNodes(t *testing.T) {
	doc := sampleDocument(V2)
	payload, err := encodeV2(doc)
	require.NoError(t, err)

	var dh v2DataHeader
	require.NoError(t, readAt(payload, 0, &dh))
	ptr := binary.LittleEndian.Uint16(payload[dh.TrackOffset:])
	payload[ptr] = 0

	_, err = Decode(containerFor(t, doc, payload))
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestDecodeV2_UnsupportedDataType(t *testing.T) {
	doc := sampleDocument(V2)
	payload, err := encodeV2(doc)
	require.NoError(t, err)

	var dh v2DataHeader
	require.NoError(t, readAt(payload, 0, &dh))
	ptr := binary.LittleEndian.Uint16(payload[dh.TrackOffset:])
	payload[ptr+1] = 9

	_, err = Decode(containerFor(t, doc, payload))
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestDecodeV2_NormalizedShorts(t *testing.T) {
	doc := New(FormatIMM, V2, "uv", 1)
	track, _ := doc.AddTrack(KindUVScale)
	track.AddNode(9).Set(1, UVScale{0, 0})

	payload, err := encodeV2(doc)
	require.NoError(t, err)

	// Rewrite the track as int16/0x7FFF components.
	payload[0x18+1] = DataTypeNormShort
	var rec v2NodeRecord
	require.NoError(t, readAt(payload, 0x38, &rec))
	binary.LittleEndian.PutUint16(payload[rec.KeyDataOffset:], 0x7FFF)
	binary.LittleEndian.PutUint16(payload[rec.KeyDataOffset+2:], 0x8001)

	got := New(FormatIMM, V2, "uv", 1)
	require.NoError(t, decodeV2(got, payload, [4]int{1, 0, 0, 0}))
	v, ok := got.Tracks[0].Nodes[0].Get(1)
	require.True(t, ok)
	assert.Equal(t, UVScale{1, -1}, v)
}

func TestDecodeV2_AbsentSlots(t *testing.T) {
	doc := New(FormatMTN, V2, "walk", 2)
	loc, _ := doc.AddTrack(KindLocation)
	loc.AddNode(1).Set(0, Location{1, 2, 3})
	scale, _ := doc.AddTrack(KindScale)
	scale.AddNode(1).Set(2, Scale{1, 1, 1})

	payload, err := encodeV2(doc)
	require.NoError(t, err)

	got := New(FormatMTN, V2, "walk", 2)
	require.NoError(t, decodeV2(got, payload, [4]int{1, 1, -1, -1}))
	assert.True(t, doc.Equal(got))
}

func TestDecodeV2_OversizedHashTable(t *testing.T) {
	doc := sampleDocument(V2)
	payload, err := encodeV2(doc)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(payload[4:], 0x7FFFFFF0)
	data := containerFor(t, doc, payload)

	allocated := allocatedDuring(func() { _, err = Decode(data) })
	assert.ErrorIs(t, err, ErrMalformedContainer)
	assert.Less(t, allocated, uint64(16<<20))
}
