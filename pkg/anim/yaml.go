package anim

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML returns the interchange tree as an ordered YAML mapping.
func (d *Document) MarshalYAML() (any, error) {
	nodes := mappingNode()
	for _, t := range d.Tracks {
		track := mappingNode()
		for _, n := range t.Nodes {
			frames := mappingNode()
			for _, key := range n.keys {
				value := mappingNode()
				for _, f := range Fields(t.Kind) {
					text, err := formatComponent(f.Get(key.Value))
					if err != nil {
						return nil, fmt.Errorf("%s node %s frame %d: %w", t.Kind, n.Key(), key.Frame, err)
					}
					appendPair(value, strScalar(f.Name), scalar("", text))
				}
				appendPair(frames, scalar("!!int", strconv.Itoa(key.Frame)), value)
			}
			appendPair(track, strScalar(n.Key()), frames)
		}
		appendPair(nodes, strScalar(t.Kind.String()), track)
	}

	root := mappingNode()
	appendPair(root, strScalar(keyFormat), strScalar(d.Format))
	appendPair(root, strScalar(keyVersion), strScalar(string(d.Version)))
	appendPair(root, strScalar(keyFrameCount), scalar("!!int", strconv.Itoa(d.FrameCount)))
	appendPair(root, strScalar(keyName), strScalar(d.Name))
	appendPair(root, strScalar(keyNodes), nodes)
	return root, nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// strScalar tags the value as a string so that keys such as "00001000"
// are quoted instead of read back as numbers.
func strScalar(value string) *yaml.Node {
	return scalar("!!str", value)
}

func appendPair(m, key, value *yaml.Node) {
	m.Content = append(m.Content, key, value)
}

// UnmarshalYAML reads the interchange tree. Mapping order becomes track,
// node and keyframe order. A missing Version means V2.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	doc := New("", V2, "", 0)
	err := walkMapping(value, func(key string, v *yaml.Node) error {
		switch key {
		case keyFormat:
			return v.Decode(&doc.Format)
		case keyVersion:
			var s string
			if err := v.Decode(&s); err != nil {
				return err
			}
			ver, err := ParseVersion(s)
			doc.Version = ver
			return err
		case keyFrameCount:
			return v.Decode(&doc.FrameCount)
		case keyName:
			return v.Decode(&doc.Name)
		case keyNodes:
			return decodeYAMLTracks(v, doc)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("decoding animation YAML: %w", err)
	}

	*d = *doc
	return nil
}

func decodeYAMLTracks(value *yaml.Node, doc *Document) error {
	return walkMapping(value, func(kindName string, v *yaml.Node) error {
		kind, err := ParseTrackKind(kindName)
		if err != nil {
			return err
		}
		return walkMapping(v, func(hashKey string, v *yaml.Node) error {
			hash, err := parseNodeKey(hashKey)
			if err != nil {
				return err
			}
			var keys []Keyframe
			err = walkMapping(v, func(frameKey string, v *yaml.Node) error {
				frame, err := parseFrameKey(frameKey)
				if err != nil {
					return err
				}
				fields := make(map[string]string)
				err = walkMapping(v, func(name string, v *yaml.Node) error {
					if v.Kind != yaml.ScalarNode {
						return fmt.Errorf("%w: %s is not a number", ErrInvalidDocument, name)
					}
					fields[name] = v.Value
					return nil
				})
				if err != nil {
					return fmt.Errorf("frame %d: %w", frame, err)
				}
				val, err := valueFromFields(kind, fields)
				if err != nil {
					return fmt.Errorf("frame %d: %w", frame, err)
				}
				keys = append(keys, Keyframe{Frame: frame, Value: val})
				return nil
			})
			if err != nil {
				return fmt.Errorf("node %s: %w", hashKey, err)
			}
			return addKeyframes(doc, kind, hash, keys)
		})
	})
}

// walkMapping calls fn for each key and value of a mapping node, in order.
// An empty or null node is treated as an empty mapping.
func walkMapping(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected mapping", ErrInvalidDocument, node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
