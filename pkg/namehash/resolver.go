package namehash

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// NameResolver maps a name hash back to a human readable name.
// The codec never consults a resolver; it exists for display code.
type NameResolver interface {
	Resolve(h uint32) (string, bool)
}

// MapResolver is a NameResolver backed by an in-memory table.
type MapResolver map[uint32]string

var _ NameResolver = MapResolver(nil)

// NewMapResolver hashes every name and returns the resulting table.
// When two names collide the first one is kept.
func NewMapResolver(names ...string) MapResolver {
	r := make(MapResolver, len(names))
	for _, name := range names {
		r.Add(name)
	}
	return r
}

// Add hashes name and records it unless the hash is already known.
func (r MapResolver) Add(name string) uint32 {
	h := String(name)
	if _, ok := r[h]; !ok {
		r[h] = name
	}
	return h
}

// Resolve implements NameResolver.
func (r MapResolver) Resolve(h uint32) (string, bool) {
	name, ok := r[h]
	return name, ok
}

// Names returns the known names sorted alphabetically.
func (r MapResolver) Names() []string {
	names := make([]string, 0, len(r))
	for _, name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nameList is the on-disk form of a resolver table.
type nameList struct {
	Names []string `yaml:"names"`
}

// LoadMapResolver reads a YAML file of the form
//
//	names:
//	  - Hips
//	  - Spine
//
// and hashes every entry.
func LoadMapResolver(path string) (MapResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading name list: %w", err)
	}

	var list nameList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing name list %s: %w", path, err)
	}
	return NewMapResolver(list.Names...), nil
}
