package layout_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/layout/layouttest"
)

func TestTraceGroupsTokensByLine(t *testing.T) {
	text := "aaa bbb\nccc  ddd"
	b, err := layout.Layout(text, testConfig(50), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	trace := layout.NewTrace(text, b)
	if len(trace.Tokens) != 5 {
		t.Fatalf("unexpected tokens %+v", trace.Tokens)
	}
	var starts []int
	var words [][]string
	for _, l := range trace.Lines {
		starts = append(starts, l.FirstToken)
		words = append(words, l.Words)
	}
	if want := []int{0, 1, 2, 4}; !reflect.DeepEqual(starts, want) {
		t.Fatalf("line starts %v, want %v", starts, want)
	}
	want := [][]string{{"aaa"}, {"bbb"}, {"ccc"}, {"ddd"}}
	if !reflect.DeepEqual(words, want) {
		t.Fatalf("line words %v, want %v", words, want)
	}
	if !trace.Lines[1].Forced {
		t.Fatalf("line ended by a newline should be forced")
	}
}

func TestWriteDebugJSON(t *testing.T) {
	b, err := layout.Layout("hi there", testConfig(400), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	path := filepath.Join(t.TempDir(), "trace.json")
	if err := layout.WriteDebugJSON("hi there", b, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got layout.Trace
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "hi there" || got.Height != 28 || len(got.Lines) != 1 {
		t.Fatalf("unexpected trace %+v", got)
	}
	if !reflect.DeepEqual(got.Lines[0].Words, []string{"hi", "there"}) || got.Lines[0].Text != "hi there" {
		t.Fatalf("unexpected line %+v", got.Lines[0])
	}

	if empty := layout.NewTrace("x", nil); len(empty.Lines) != 0 || len(empty.Tokens) != 1 {
		t.Fatalf("nil block should only carry tokens, got %+v", empty)
	}
}
