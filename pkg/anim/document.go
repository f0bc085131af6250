package anim

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/l5anim/pkg/namehash"
)

// MaxNameLength is the number of encoded name bytes a container can hold.
// Longer names are truncated on encode.
const MaxNameLength = 40

// MaxFrameCount is the largest frame count whose per-frame tables still fit
// the 16-bit fields of both payload layouts.
const MaxFrameCount = math.MaxInt16 - 1

// Document is a decoded animation container.
type Document struct {
	Format     string  // container tag, e.g. XMTN
	Version    Version // payload layout used when encoding
	Name       string  // animation name
	FrameCount int     // last valid frame index
	Tracks     []*Track
}

// New creates an empty document.
func New(format string, version Version, name string, frameCount int) *Document {
	return &Document{
		Format:     format,
		Version:    version,
		Name:       name,
		FrameCount: frameCount,
	}
}

// Track returns the track of the given kind, or nil.
func (d *Document) Track(kind TrackKind) *Track {
	for _, t := range d.Tracks {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}

// AddTrack returns the track of the given kind, appending it if the
// document does not have one yet.
func (d *Document) AddTrack(kind TrackKind) (*Track, error) {
	if t := d.Track(kind); t != nil {
		return t, nil
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown track kind %d", ErrInvalidDocument, kind)
	}
	if len(d.Tracks) >= MaxTracks {
		return nil, fmt.Errorf("%w: cannot add %s, already %d tracks", ErrInvalidDocument, kind, MaxTracks)
	}

	t := &Track{Kind: kind}
	d.Tracks = append(d.Tracks, t)
	return t, nil
}

// RemoveTrack deletes the track of the given kind. It reports whether a
// track was removed.
func (d *Document) RemoveTrack(kind TrackKind) bool {
	for i, t := range d.Tracks {
		if t.Kind == kind {
			d.Tracks = append(d.Tracks[:i], d.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes across all tracks.
func (d *Document) NodeCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Nodes)
	}
	return n
}

// Validate checks the document against what the container can represent.
func (d *Document) Validate() error {
	if !KnownFormat(d.Format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormatTag, d.Format)
	}
	if d.Version != V1 && d.Version != V2 {
		return fmt.Errorf("%w: unknown version %q", ErrInvalidDocument, d.Version)
	}
	if d.FrameCount < 0 || d.FrameCount > MaxFrameCount {
		return fmt.Errorf("%w: frame count %d out of range [0, %d]", ErrInvalidDocument, d.FrameCount, MaxFrameCount)
	}
	if len(d.Tracks) > MaxTracks {
		return fmt.Errorf("%w: %d tracks, at most %d allowed", ErrInvalidDocument, len(d.Tracks), MaxTracks)
	}

	seen := make(map[TrackKind]bool, len(d.Tracks))
	for _, t := range d.Tracks {
		if !t.Kind.Valid() {
			return fmt.Errorf("%w: unknown track kind %d", ErrInvalidDocument, t.Kind)
		}
		if seen[t.Kind] {
			return fmt.Errorf("%w: duplicate %s track", ErrInvalidDocument, t.Kind)
		}
		seen[t.Kind] = true

		if err := t.validate(d.FrameCount); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Tracks = make([]*Track, len(d.Tracks))
	for i, t := range d.Tracks {
		c.Tracks[i] = t.clone()
	}
	return &c
}

// Equal reports whether two documents hold the same header fields, tracks,
// nodes and keyframes in the same order.
func (d *Document) Equal(o *Document) bool {
	if d.Format != o.Format || d.Version != o.Version || d.Name != o.Name ||
		d.FrameCount != o.FrameCount || len(d.Tracks) != len(o.Tracks) {
		return false
	}
	for i := range d.Tracks {
		if !d.Tracks[i].equal(o.Tracks[i]) {
			return false
		}
	}
	return true
}

// Track is one channel of an animation: every node in it carries values of
// the track's kind.
type Track struct {
	Kind  TrackKind
	Nodes []*Node
}

// Node returns the node with the given name hash, or nil.
func (t *Track) Node(hash uint32) *Node {
	for _, n := range t.Nodes {
		if n.Hash == hash {
			return n
		}
	}
	return nil
}

// AddNode returns the node with the given name hash, appending an empty one
// if the track does not have it yet.
func (t *Track) AddNode(hash uint32) *Node {
	if n := t.Node(hash); n != nil {
		return n
	}
	n := &Node{Hash: hash}
	t.Nodes = append(t.Nodes, n)
	return n
}

// RemoveNode deletes the node with the given name hash.
func (t *Track) RemoveNode(hash uint32) bool {
	for i, n := range t.Nodes {
		if n.Hash == hash {
			t.Nodes = append(t.Nodes[:i], t.Nodes[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Track) validate(frameCount int) error {
	seen := make(map[uint32]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if seen[n.Hash] {
			return fmt.Errorf("%w: %s node %s appears twice", ErrInvalidDocument, t.Kind, n.Key())
		}
		seen[n.Hash] = true

		if len(n.keys) == 0 {
			return fmt.Errorf("%w: %s node %s has no keyframes", ErrInvalidDocument, t.Kind, n.Key())
		}
		for _, k := range n.keys {
			if k.Frame < 0 || k.Frame > frameCount {
				return fmt.Errorf("%w: %s node %s frame %d outside [0, %d]",
					ErrInvalidDocument, t.Kind, n.Key(), k.Frame, frameCount)
			}
			if k.Value == nil || k.Value.Kind() != t.Kind {
				return fmt.Errorf("%w: %s node %s frame %d holds a %v value",
					ErrInvalidDocument, t.Kind, n.Key(), k.Frame, valueKind(k.Value))
			}
		}
	}
	return nil
}

func valueKind(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

func (t *Track) clone() *Track {
	c := &Track{Kind: t.Kind, Nodes: make([]*Node, len(t.Nodes))}
	for i, n := range t.Nodes {
		c.Nodes[i] = &Node{Hash: n.Hash, keys: append([]Keyframe(nil), n.keys...)}
	}
	return c
}

func (t *Track) equal(o *Track) bool {
	if t.Kind != o.Kind || len(t.Nodes) != len(o.Nodes) {
		return false
	}
	for i, n := range t.Nodes {
		m := o.Nodes[i]
		if n.Hash != m.Hash || len(n.keys) != len(m.keys) {
			return false
		}
		for j := range n.keys {
			if n.keys[j] != m.keys[j] {
				return false
			}
		}
	}
	return true
}

// Keyframe is a value stored at an explicit frame.
type Keyframe struct {
	Frame int
	Value Value
}

// Node is an animated target, such as a bone or a UV layer, identified by
// the hash of its name. Keyframes are kept in ascending frame order.
type Node struct {
	Hash uint32
	keys []Keyframe
}

// Key returns the node hash as 8 hex digits.
func (n *Node) Key() string {
	return namehash.Key(n.Hash)
}

// Len returns the number of keyframes.
func (n *Node) Len() int {
	return len(n.keys)
}

// Keyframes returns a copy of the keyframes in ascending frame order.
func (n *Node) Keyframes() []Keyframe {
	return append([]Keyframe(nil), n.keys...)
}

// Frames returns the keyframe frame indices in ascending order.
func (n *Node) Frames() []int {
	frames := make([]int, len(n.keys))
	for i, k := range n.keys {
		frames[i] = k.Frame
	}
	return frames
}

// Get returns the value stored at frame.
func (n *Node) Get(frame int) (Value, bool) {
	i, ok := n.search(frame)
	if !ok {
		return nil, false
	}
	return n.keys[i].Value, true
}

// Set stores v at frame, replacing any existing keyframe there.
func (n *Node) Set(frame int, v Value) {
	i, ok := n.search(frame)
	if ok {
		n.keys[i].Value = v
		return
	}
	n.insert(i, Keyframe{Frame: frame, Value: v})
}

// Delete removes the keyframe at frame.
func (n *Node) Delete(frame int) bool {
	i, ok := n.search(frame)
	if !ok {
		return false
	}
	n.keys = append(n.keys[:i], n.keys[i+1:]...)
	return true
}

// add stores v at frame unless the frame already has a value. Decoders use
// it so that the first occurrence of a repeated frame wins.
func (n *Node) add(frame int, v Value) {
	i, ok := n.search(frame)
	if !ok {
		n.insert(i, Keyframe{Frame: frame, Value: v})
	}
}

func (n *Node) search(frame int) (int, bool) {
	i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i].Frame >= frame })
	return i, i < len(n.keys) && n.keys[i].Frame == frame
}

func (n *Node) insert(i int, k Keyframe) {
	n.keys = append(n.keys, Keyframe{})
	copy(n.keys[i+1:], n.keys[i:])
	n.keys[i] = k
}
