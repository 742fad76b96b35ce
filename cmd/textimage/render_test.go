package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/textimage/imageenc"
	"github.com/ByLCY/textimage/layout"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRenderWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "hello.png")
	debugPath := filepath.Join(dir, "debug", "layout.json")
	_, stderr, err := execute(t, "", "render", "hello", "world", "-o", out, "--max-width", "300", "--debug-layout", debugPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stderr, "hello.png") {
		t.Fatalf("expected status line, got %q", stderr)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 48 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}

	raw, err := os.ReadFile(debugPath)
	if err != nil {
		t.Fatalf("read debug json: %v", err)
	}
	var trace layout.Trace
	if err := json.Unmarshal(raw, &trace); err != nil {
		t.Fatalf("decode debug json: %v", err)
	}
	if len(trace.Lines) != 1 || trace.Lines[0].Text != "hello world" || trace.Height != 28 {
		t.Fatalf("unexpected debug trace %+v", trace)
	}
	if len(trace.Tokens) != 2 || !reflect.DeepEqual(trace.Lines[0].Words, []string{"hello", "world"}) {
		t.Fatalf("unexpected debug tokens %+v", trace)
	}
}

func TestRenderDataURLFromStdinWithBinding(t *testing.T) {
	stdout, _, err := execute(t, "Hi ${name}\n", "render", "--data-url", "--data", `{"name":"Ada"}`, "--custom-height", "30")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := imageenc.DecodeDataURL(strings.TrimSpace(stdout))
	if err != nil {
		t.Fatalf("decode data url: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 30 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
}

func TestRenderPresetFile(t *testing.T) {
	dir := t.TempDir()
	presets := filepath.Join(dir, "presets.tip")
	if err := os.WriteFile(presets, []byte(`
preset Card {
  maxWidth: 240
  customHeight: 100
  text: "card text"
}
`), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	out := filepath.Join(dir, "card.bmp")
	if _, _, err := execute(t, "", "render", "--presets", presets, "-p", "Card", "--custom-height", "90", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Fatalf("expected a bmp file")
	}
}

func TestRenderErrors(t *testing.T) {
	cases := [][]string{
		{"render", "x", "--text-align", "sideways"},
		{"render", "x", "--backend", "gpu"},
		{"render", "x", "--format", "svg", "-o", "-"},
		{"render", "x", "-p", "Card"},
		{"render", "x", "--data", "{"},
		{"render", "x", "--max-width", "abc"},
	}
	for _, args := range cases {
		if _, _, err := execute(t, "", args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	cases := []struct {
		format, output string
		want           imageenc.Format
	}{
		{"jpeg", "out.png", imageenc.JPEG},
		{"", "out.tiff", imageenc.TIFF},
		{"", "out.GIF", imageenc.GIF},
	}
	for _, c := range cases {
		got, err := outputFormat(c.format, c.output)
		if err != nil || got != c.want {
			t.Fatalf("outputFormat(%q, %q) = %q, %v", c.format, c.output, got, err)
		}
	}
	want := imageenc.PNG
	if imageenc.Available(imageenc.WebP) {
		want = imageenc.WebP
	}
	if got, _ := outputFormat("", "-"); got != want {
		t.Fatalf("default format should be %s, got %s", want, got)
	}
}
