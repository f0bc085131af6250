package anim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON writes the interchange tree. Track, node and frame order
// follow the document.
func (d *Document) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	writeJSONField(&b, keyFormat, strconv.Quote(d.Format))
	b.WriteByte(',')
	writeJSONField(&b, keyVersion, strconv.Quote(string(d.Version)))
	b.WriteByte(',')
	writeJSONField(&b, keyFrameCount, strconv.Itoa(d.FrameCount))
	b.WriteByte(',')
	name, err := json.Marshal(d.Name)
	if err != nil {
		return nil, err
	}
	writeJSONField(&b, keyName, string(name))
	b.WriteByte(',')

	b.WriteString(strconv.Quote(keyNodes))
	b.WriteString(":{")
	for i, t := range d.Tracks {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(t.Kind.String()))
		b.WriteString(":{")
		for j, n := range t.Nodes {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(n.Key()))
			b.WriteString(":{")
			for k, key := range n.keys {
				if k > 0 {
					b.WriteByte(',')
				}
				if err := writeJSONKeyframe(&b, t.Kind, key); err != nil {
					return nil, fmt.Errorf("%s node %s frame %d: %w", t.Kind, n.Key(), key.Frame, err)
				}
			}
			b.WriteByte('}')
		}
		b.WriteByte('}')
	}
	b.WriteString("}}")
	return b.Bytes(), nil
}

func writeJSONField(b *bytes.Buffer, key, raw string) {
	b.WriteString(strconv.Quote(key))
	b.WriteByte(':')
	b.WriteString(raw)
}

func writeJSONKeyframe(b *bytes.Buffer, kind TrackKind, key Keyframe) error {
	b.WriteString(strconv.Quote(strconv.Itoa(key.Frame)))
	b.WriteString(":{")
	for i, f := range Fields(kind) {
		text, err := formatComponent(f.Get(key.Value))
		if err != nil {
			return err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONField(b, f.Name, text)
	}
	b.WriteByte('}')
	return nil
}

// UnmarshalJSON reads the interchange tree. Object key order becomes track,
// node and keyframe order. A missing Version means V2.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc := New("", V2, "", 0)
	err := walkObject(dec, func(key string) error {
		switch key {
		case keyFormat:
			return dec.Decode(&doc.Format)
		case keyVersion:
			var s string
			if err := dec.Decode(&s); err != nil {
				return err
			}
			v, err := ParseVersion(s)
			doc.Version = v
			return err
		case keyFrameCount:
			return dec.Decode(&doc.FrameCount)
		case keyName:
			return dec.Decode(&doc.Name)
		case keyNodes:
			return decodeJSONTracks(dec, doc)
		default:
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
	})
	if err != nil {
		return fmt.Errorf("decoding animation JSON: %w", err)
	}

	*d = *doc
	return nil
}

func decodeJSONTracks(dec *json.Decoder, doc *Document) error {
	return walkObject(dec, func(kindName string) error {
		kind, err := ParseTrackKind(kindName)
		if err != nil {
			return err
		}
		return walkObject(dec, func(hashKey string) error {
			hash, err := parseNodeKey(hashKey)
			if err != nil {
				return err
			}
			var keys []Keyframe
			err = walkObject(dec, func(frameKey string) error {
				frame, err := parseFrameKey(frameKey)
				if err != nil {
					return err
				}
				var fields map[string]json.Number
				if err := dec.Decode(&fields); err != nil {
					return fmt.Errorf("frame %d: %w", frame, err)
				}
				text := make(map[string]string, len(fields))
				for k, v := range fields {
					text[k] = v.String()
				}
				v, err := valueFromFields(kind, text)
				if err != nil {
					return fmt.Errorf("frame %d: %w", frame, err)
				}
				keys = append(keys, Keyframe{Frame: frame, Value: v})
				return nil
			})
			if err != nil {
				return fmt.Errorf("node %s: %w", hashKey, err)
			}
			return addKeyframes(doc, kind, hash, keys)
		})
	})
}

// walkObject reads one JSON object from dec, calling fn for each key with
// the decoder positioned at the key's value. fn must consume the value.
func walkObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrInvalidDocument, tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key, got %v", ErrInvalidDocument, tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}

	// closing brace
	_, err = dec.Token()
	return err
}
