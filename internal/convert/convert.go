// Package convert implements the file-level operations of the l5anim
// command: binary to text, text to binary, round-trip verification and
// summaries.
package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/l5anim/internal/config"
	"github.com/Faultbox/l5anim/pkg/anim"
)

// ErrVerifyMismatch is returned when re-encoding a decoded file does not
// reproduce its bytes.
var ErrVerifyMismatch = errors.New("re-encoded output differs")

// Options control a Converter.
type Options struct {
	Format string // text form written by DecodeFile: json or yaml
	Indent string // JSON indent
	Strict bool   // strict payload size checks on decode
	Verify bool   // check EncodeFile output by decoding it again
}

// OptionsFrom takes the converter settings out of a loaded config.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Format: cfg.Interchange.Format,
		Indent: cfg.Interchange.Indent,
		Strict: cfg.Codec.Strict,
		Verify: cfg.Codec.Verify,
	}
}

// Converter runs conversions and logs each one.
type Converter struct {
	opts Options
	log  *zap.Logger
}

// New creates a Converter. A nil logger discards log output.
func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Format == "" {
		opts.Format = config.FormatJSON
	}
	return &Converter{opts: opts, log: log}
}

// DecodeFile decodes the container at in and writes its text form to out.
// An empty out writes next to in, with the extension replaced by .json or
// .yaml. It returns the path written.
func (c *Converter) DecodeFile(in, out string) (string, error) {
	start := time.Now()

	data, err := os.ReadFile(in)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", in, err)
	}
	doc, err := anim.DecodeWithOptions(data, anim.DecodeOptions{Strict: c.opts.Strict})
	if err != nil {
		return "", fmt.Errorf("%s: %w", in, err)
	}

	text, err := MarshalDocument(doc, c.opts.Format, c.opts.Indent)
	if err != nil {
		return "", fmt.Errorf("%s: %w", in, err)
	}

	if out == "" {
		out = SiblingPath(in, "."+c.opts.Format)
	}
	if err := os.WriteFile(out, text, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}

	c.log.Info("decoded animation",
		zap.String("input", in),
		zap.String("output", out),
		zap.String("format", doc.Format),
		zap.String("version", string(doc.Version)),
		zap.String("name", doc.Name),
		zap.Int("frames", doc.FrameCount),
		zap.Int("tracks", len(doc.Tracks)),
		zap.Int("nodes", doc.NodeCount()),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

// EncodeFile reads a JSON (comments and trailing commas allowed) or YAML
// document from in and writes the container to out. The text format is
// chosen by the extension of in.
func (c *Converter) EncodeFile(in, out string) error {
	start := time.Now()

	text, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	doc, err := ParseDocument(text, FormatOf(in))
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	data, err := anim.Encode(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	if c.opts.Verify {
		if err := checkStable(data); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	c.log.Info("encoded animation",
		zap.String("input", in),
		zap.String("output", out),
		zap.String("format", doc.Format),
		zap.String("version", string(doc.Version)),
		zap.Int("tracks", len(doc.Tracks)),
		zap.Int("nodes", doc.NodeCount()),
		zap.Int("bytes", len(data)),
		zap.Bool("verified", c.opts.Verify),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// checkStable decodes an encoded container and encodes it again, expecting
// the same bytes.
func checkStable(data []byte) error {
	doc, err := anim.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding encoded output: %w", err)
	}
	again, err := anim.Encode(doc)
	if err != nil {
		return fmt.Errorf("re-encoding output: %w", err)
	}
	if !bytes.Equal(data, again) {
		return fmt.Errorf("%w: %016x != %016x", ErrVerifyMismatch, xxhash.Sum64(data), xxhash.Sum64(again))
	}
	return nil
}

// VerifyReport is the result of Verify.
type VerifyReport struct {
	Path         string
	InputSize    int
	OutputSize   int
	InputDigest  uint64 // xxHash64 of the file
	OutputDigest uint64 // xxHash64 of the re-encoded file
}

// Match reports whether re-encoding reproduced the file.
func (r *VerifyReport) Match() bool {
	return r.InputSize == r.OutputSize && r.InputDigest == r.OutputDigest
}

// Verify decodes the container at path, encodes it again and compares the
// two. A mismatch is reported, not returned as an error.
func (c *Converter) Verify(path string) (*VerifyReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := anim.DecodeWithOptions(data, anim.DecodeOptions{Strict: c.opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out, err := anim.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: re-encoding: %w", path, err)
	}

	report := &VerifyReport{
		Path:         path,
		InputSize:    len(data),
		OutputSize:   len(out),
		InputDigest:  xxhash.Sum64(data),
		OutputDigest: xxhash.Sum64(out),
	}

	if report.Match() {
		c.log.Info("round trip matches", zap.String("path", path), zap.String("xxh64", fmt.Sprintf("%016x", report.InputDigest)))
	} else {
		c.log.Warn("round trip differs",
			zap.String("path", path),
			zap.Int("input_bytes", report.InputSize),
			zap.Int("output_bytes", report.OutputSize),
			zap.String("input_xxh64", fmt.Sprintf("%016x", report.InputDigest)),
			zap.String("output_xxh64", fmt.Sprintf("%016x", report.OutputDigest)),
		)
	}
	return report, nil
}

// MarshalDocument renders doc as JSON or YAML.
func MarshalDocument(doc *anim.Document, format, indent string) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case config.FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", indent)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown interchange format %q", format)
}

// ParseDocument reads a document in the given text format. JSON input may
// contain comments and trailing commas.
func ParseDocument(data []byte, format string) (*anim.Document, error) {
	var doc anim.Document
	switch format {
	case config.FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case config.FormatJSON, "":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown interchange format %q", format)
	}
	return &doc, nil
}

// FormatOf guesses the text format of a file from its extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	}
	return config.FormatJSON
}

// SiblingPath replaces the extension of path with ext.
func SiblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
