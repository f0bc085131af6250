package anim

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func float32Inf() float32 {
	return float32(math.Inf(1))
}

func TestYAML_RoundTrip(t *testing.T) {
	doc := sampleDocument(V2)
	doc.Tracks[0].AddNode(0x00001000).Set(1, Location{0.1, 1e-7, -3.5})

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	var got Document
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.True(t, doc.Equal(&got))
}

func TestMarshalYAML_Order(t *testing.T) {
	doc := New(FormatIMM, V1, "scroll", 4)
	track, _ := doc.AddTrack(KindUVMove)
	track.AddNode(0xFF).Set(4, UVMove{0.5, 1})

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	want := []string{"Format: XIMA", "Version: V1", "FrameCount: 4", "AnimationName: scroll", "Nodes:", "UVMove:", "000000FF", "4:", "X: 0.5", "Y: 1"}
	text := string(data)
	last := -1
	for _, w := range want {
		i := strings.Index(text, w)
		require.GreaterOrEqual(t, i, 0, "missing %q in\n%s", w, text)
		assert.Greater(t, i, last, "%q out of order", w)
		last = i
	}
}

func TestUnmarshalYAML(t *testing.T) {
	input := `
Format: XMTM
Version: V1
FrameCount: 3
AnimationName: glow
Nodes:
  TextureBrightness:
    "0000000A":
      3: {Brightness: 0.25}
      1: {Brightness: 1}
`
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(input), &doc))

	assert.Equal(t, FormatMTM, doc.Format)
	assert.Equal(t, V1, doc.Version)
	assert.Equal(t, 3, doc.FrameCount)
	assert.Equal(t, "glow", doc.Name)

	n := doc.Track(KindTextureBrightness).Node(0x0A)
	require.NotNil(t, n)
	assert.Equal(t, []int{1, 3}, n.Frames())
	v, _ := n.Get(3)
	assert.Equal(t, TextureBrightness{0.25}, v)
}

func TestUnmarshalYAML_EmptyTrackDropped(t *testing.T) {
	input := `
Nodes:
  BoneScale:
    "00000001": {}
  BoneRotation: {}
  BoneLocation:
    "00000002":
      0: {X: 1, Y: 2, Z: 3}
`
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(input), &doc))

	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, KindLocation, doc.Tracks[0].Kind)
	assert.NotNil(t, doc.Tracks[0].Node(2))
}

func TestUnmarshalYAML_Errors(t *testing.T) {
	for _, input := range []string{
		"Nodes: [1, 2]",
		"Nodes: {Color: {}}",
		"Nodes: {UVMove: {zz: {}}}",
		"Nodes: {UVMove: {'01': {0: {X: abc}}}}",
		"Nodes: {UVMove: {'01': {0: {X: [1]}}}}",
	} {
		var doc Document
		err := yaml.Unmarshal([]byte(input), &doc)
		assert.ErrorIs(t, err, ErrInvalidDocument, input)
	}
}
