package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/Faultbox/l5anim/pkg/anim"
	"github.com/Faultbox/l5anim/pkg/namehash"
)

// Summary describes a container without its keyframe values.
type Summary struct {
	Path       string
	Size       int
	Digest     uint64 // xxHash64 of the file
	Format     string
	Version    anim.Version
	Name       string
	FrameCount int
	Secondary  bool // file uses the short header layout
	Tracks     []TrackSummary
}

// TrackSummary lists the nodes of one track.
type TrackSummary struct {
	Kind  anim.TrackKind
	Nodes []NodeSummary
}

// NodeSummary is one node of a track.
type NodeSummary struct {
	Hash      uint32
	Name      string // resolved name, empty when unknown
	Keyframes int
	First     int
	Last      int
}

// Info summarises the container at path. Node names are looked up in
// names, which may be nil.
func (c *Converter) Info(path string, names namehash.NameResolver) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	env, err := anim.ReadEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := anim.DecodeWithOptions(data, anim.DecodeOptions{Strict: c.opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Summary{
		Path:       path,
		Size:       len(data),
		Digest:     xxhash.Sum64(data),
		Format:     doc.Format,
		Version:    doc.Version,
		Name:       doc.Name,
		FrameCount: doc.FrameCount,
		Secondary:  env.Secondary,
	}
	for _, t := range doc.Tracks {
		ts := TrackSummary{Kind: t.Kind}
		for _, n := range t.Nodes {
			frames := n.Frames()
			ns := NodeSummary{
				Hash:      n.Hash,
				Keyframes: len(frames),
				First:     frames[0],
				Last:      frames[len(frames)-1],
			}
			if names != nil {
				ns.Name, _ = names.Resolve(n.Hash)
			}
			ts.Nodes = append(ts.Nodes, ns)
		}
		s.Tracks = append(s.Tracks, ts)
	}
	return s, nil
}

// WriteTo prints the summary in a human readable form.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	header := "primary"
	if s.Secondary {
		header = "secondary"
	}
	fmt.Fprintf(cw, "File:       %s\n", s.Path)
	fmt.Fprintf(cw, "Size:       %d bytes (xxh64 %016x)\n", s.Size, s.Digest)
	fmt.Fprintf(cw, "Format:     %s (%s header)\n", s.Format, header)
	fmt.Fprintf(cw, "Version:    %s\n", s.Version)
	fmt.Fprintf(cw, "Name:       %s\n", s.Name)
	fmt.Fprintf(cw, "FrameCount: %d\n", s.FrameCount)

	for _, t := range s.Tracks {
		fmt.Fprintf(cw, "\n%s (%d nodes)\n", t.Kind, len(t.Nodes))
		for _, n := range t.Nodes {
			name := n.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(cw, "  %s  %-24s %4d keys  frames %d..%d\n",
				namehash.Key(n.Hash), name, n.Keyframes, n.First, n.Last)
		}
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
