package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/l5anim/pkg/anim"
	"github.com/Faultbox/l5anim/pkg/namehash"
)

// isolate keeps user config files out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	doc := anim.New(anim.FormatMTN, anim.V2, "walk", 4)
	track, _ := doc.AddTrack(anim.KindLocation)
	n := track.AddNode(namehash.String("hip"))
	n.Set(0, anim.Location{X: 1})
	n.Set(4, anim.Location{Y: 1})

	path := filepath.Join(dir, "walk.mtn2")
	if err := anim.WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{nil, {"-h"}, {"--help"}} {
		var out bytes.Buffer
		if err := run(args, &out); err != nil {
			t.Fatalf("run(%v): %v", args, err)
		}
		if !strings.Contains(out.String(), "Usage:") {
			t.Errorf("run(%v) did not print usage", args)
		}
	}
}

func TestRun_DecodeEncode(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)

	if err := run([]string{"-d", bin}, &bytes.Buffer{}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	text := filepath.Join(dir, "walk.json")
	if _, err := os.Stat(text); err != nil {
		t.Fatalf("expected %s: %v", text, err)
	}

	out := filepath.Join(dir, "again.mtn2")
	if err := run([]string{"-c", text, out, "--verify"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	want, _ := os.ReadFile(bin)
	got, _ := os.ReadFile(out)
	if !bytes.Equal(want, got) {
		t.Error("re-encoded container differs from the original")
	}
}

func TestRun_DecodeYAML(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)

	if err := run([]string{"--yaml", "-d", bin}, &bytes.Buffer{}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "walk.yaml")); err != nil {
		t.Errorf("expected walk.yaml: %v", err)
	}
}

func TestRun_Info(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)

	names := filepath.Join(dir, "bones.yaml")
	if err := os.WriteFile(names, []byte("names:\n  - hip\n  - knee\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"-i", "--names", names, bin}, &out); err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"Format:     XMTN", "Version:    V2", "BoneLocation (1 nodes)", "hip"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_LogFile(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)
	logFile := filepath.Join(dir, "l5anim.log")

	names := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(names, []byte("names: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run([]string{"-d", "--log-file", logFile, bin}, &bytes.Buffer{}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := run([]string{"-i", "--log-file", logFile, "--names", names, bin}, &bytes.Buffer{}); err != nil {
		t.Fatalf("info: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	text := string(content)
	for _, want := range []string{
		`"caller":"convert/convert.go:`,
		`"logger":"convert"`,
		`"level":"WARN"`,
		"name list is empty",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("log missing %q:\n%s", want, text)
		}
	}
}

func TestRun_Check(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)

	var out bytes.Buffer
	if err := run([]string{"--check", bin}, &out); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ok") {
		t.Errorf("unexpected check output: %q", out.String())
	}
}

func TestRun_SaveConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "saved.yaml")

	if err := run([]string{"--save-config", path, "--yaml", "--strict"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("save-config: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "format: yaml") || !strings.Contains(string(data), "strict: true") {
		t.Errorf("saved config does not carry flag values:\n%s", data)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := isolate(t)
	bin := writeSample(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"two modes", []string{"-d", "-i", bin}},
		{"decode without input", []string{"-d"}},
		{"encode without output", []string{"-c", "walk.json"}},
		{"encode too many paths", []string{"-c", "a", "b", "c"}},
		{"output with many inputs", []string{"-d", "-o", "x.json", bin, bin}},
		{"missing file", []string{"-d", filepath.Join(dir, "missing.mtn2")}},
		{"unknown flag", []string{"--frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}); err == nil {
				t.Errorf("run(%v) succeeded, want error", tt.args)
			}
		})
	}
}
