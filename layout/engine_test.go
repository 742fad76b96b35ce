package layout_test

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/layout/layouttest"
)

func testConfig(width int) layout.Config {
	return layout.Config{
		MaxWidth:   width,
		FontSize:   18,
		LineHeight: 28,
		BgColor:    color.White,
		TextColor:  color.Black,
		FontFamily: "Mono",
		FontWeight: "normal",
		TextAlign:  config.AlignLeft,
	}
}

func lineTexts(b *layout.Block) []string {
	out := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.Text
	}
	return out
}

func TestLayoutHonorsNewlines(t *testing.T) {
	cases := map[string][]string{
		"a\nb":   {"a", "b"},
		"a\n\nb": {"a", "", "b"},
		"a\n":    {"a", ""},
	}
	for in, want := range cases {
		block, err := layout.Layout(in, testConfig(400), layouttest.New(10), nil)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := lineTexts(block); !reflect.DeepEqual(got, want) {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
		wantHeight := float64(len(want)-1)*28 + 28
		if block.Height != wantHeight {
			t.Fatalf("%q: height %g want %g", in, block.Height, wantHeight)
		}
	}
}

func TestLayoutGreedyWrap(t *testing.T) {
	// 字宽 10、余量 fontSize/3 = 6：两个词的行最宽 "three four" = 106，三个词的行至少 136。
	block, err := layout.Layout("one two three four", testConfig(110), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if got, want := lineTexts(block), []string{"one two", "three four"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
	if block.Lines[0].Forced || block.Lines[1].Forced {
		t.Fatalf("width breaks must not be marked forced")
	}
	if block.Height != 56 {
		t.Fatalf("height: got %g want 56", block.Height)
	}
}

func TestLayoutEmptyText(t *testing.T) {
	block, err := layout.Layout("", testConfig(100), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(block.Lines) != 1 || block.Lines[0].Text != "" {
		t.Fatalf("expected a single empty line, got %q", lineTexts(block))
	}
	if block.Height != 28 {
		t.Fatalf("height: got %g want 28", block.Height)
	}
}

func TestLayoutHeightCoversGlyphsWhenLineHeightIsSmall(t *testing.T) {
	cfg := testConfig(400)
	cfg.LineHeight = 10
	block, err := layout.Layout("a\nb", cfg, layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	// 10 (第一行前进量) + max(10, 18)
	if block.Height != 28 {
		t.Fatalf("height: got %g want 28", block.Height)
	}
	if block.PixelHeight() != 28 {
		t.Fatalf("pixel height: got %d want 28", block.PixelHeight())
	}
}

func TestLayoutNeverSplitsWords(t *testing.T) {
	block, err := layout.Layout("supercalifragilistic", testConfig(50), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if got := lineTexts(block); !reflect.DeepEqual(got, []string{"supercalifragilistic"}) {
		t.Fatalf("got %q", got)
	}

	block, err = layout.Layout("a supercalifragilistic b", testConfig(50), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if got, want := lineTexts(block), []string{"a", "supercalifragilistic", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLayoutCollapsesRepeatedSpaces(t *testing.T) {
	block, err := layout.Layout("  a  b  ", testConfig(400), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if got := lineTexts(block); !reflect.DeepEqual(got, []string{"a b"}) {
		t.Fatalf("got %q", got)
	}
}

func TestLayoutLeadingSpaceBeforeOverflowingWord(t *testing.T) {
	// 首个 token 为空词时，超宽的第二个词会先输出一个空行。
	block, err := layout.Layout(" supercalifragilistic", testConfig(50), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if got, want := lineTexts(block), []string{"", "supercalifragilistic"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLayoutAlignmentOrigins(t *testing.T) {
	cases := map[config.TextAlign]float64{
		config.AlignLeft:   0,
		config.AlignCenter: 55,
		config.AlignRight:  104,
		config.AlignEnd:    104,
	}
	for align, want := range cases {
		cfg := testConfig(110)
		cfg.TextAlign = align
		backend := layouttest.New(10)
		if _, err := layout.Layout("one two three four", cfg, backend, nil); err != nil {
			t.Fatalf("%s: %v", align, err)
		}
		surface := backend.Surfaces[0]
		if len(surface.Texts) != 2 {
			t.Fatalf("%s: expected 2 painted lines, got %d", align, len(surface.Texts))
		}
		for _, call := range surface.Texts {
			if call.X != want {
				t.Fatalf("%s: origin x %g want %g", align, call.X, want)
			}
			if call.Align != align {
				t.Fatalf("%s: surface align %q", align, call.Align)
			}
		}
		if surface.Texts[1].Y != 28 {
			t.Fatalf("%s: second line y %g want 28", align, surface.Texts[1].Y)
		}
	}
}

func TestLayoutUsesMeasuringSurfaceAndPaintsFont(t *testing.T) {
	backend := layouttest.New(10)
	if _, err := layout.Layout("hello", testConfig(120), backend, nil); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(backend.Surfaces) != 1 {
		t.Fatalf("expected one measuring surface, got %d", len(backend.Surfaces))
	}
	s := backend.Surfaces[0]
	if s.Bounds() != image.Rect(0, 0, 120, layout.MeasureHeight) {
		t.Fatalf("measuring surface bounds: %v", s.Bounds())
	}
	call := s.Texts[0]
	if call.Font.String() != "normal 18px Mono" {
		t.Fatalf("font: %q", call.Font.String())
	}
	if call.Color != color.Black {
		t.Fatalf("text color: %v", call.Color)
	}
	if got := s.RGBA().RGBAAt(119, 99); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("measuring surface should be filled with background, got %v", got)
	}
}

func TestLayoutPaintsIntoTarget(t *testing.T) {
	backend := layouttest.New(10)
	target := backend.NewSurface(100, 300)
	block, err := layout.Layout("a b c d e f g", testConfig(30), backend, target)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(backend.Surfaces) != 1 {
		t.Fatalf("target given, no measuring surface expected; got %d surfaces", len(backend.Surfaces))
	}
	if block.Pixels.Bounds() != image.Rect(0, 0, 30, int(block.Height)) {
		t.Fatalf("snapshot bounds: %v (height %g)", block.Pixels.Bounds(), block.Height)
	}
	// 第一行 "a" 画在 (0,0)，字形块为 10×18
	if got := block.Pixels.RGBAAt(5, 5); got != (color.RGBA{A: 255}) {
		t.Fatalf("expected glyph ink at (5,5), got %v", got)
	}
	if got := block.Pixels.RGBAAt(5, 20); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("expected background at (5,20), got %v", got)
	}
}

func TestLayoutSnapshotBeyondMeasuringSurfaceIsTransparent(t *testing.T) {
	block, err := layout.Layout("a\nb\nc\nd\ne", testConfig(50), layouttest.New(10), nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if block.Height != 140 {
		t.Fatalf("height: got %g want 140", block.Height)
	}
	if got := block.Pixels.RGBAAt(40, 120); got.A != 0 {
		t.Fatalf("pixels outside the measuring surface must be transparent, got %v", got)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	text := "the quick brown fox\njumps over the lazy dog and keeps running"
	first, err := layout.Layout(text, testConfig(120), layouttest.New(9), nil)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := layout.Layout(text, testConfig(120), layouttest.New(9), nil)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Height != second.Height || !reflect.DeepEqual(first.Lines, second.Lines) {
		t.Fatalf("layout not deterministic:\n%+v\n%+v", first.Lines, second.Lines)
	}
}

func TestLayoutRegistersFontBeforeMeasuring(t *testing.T) {
	backend := layouttest.New(10)
	cfg := testConfig(200)
	cfg.FontPath = "fonts/custom.ttf"
	if _, err := layout.Layout("hi there", cfg, backend, nil); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(backend.Events) == 0 || backend.Events[0] != "register" {
		t.Fatalf("font must be registered first, events: %v", backend.Events)
	}
	if backend.Registered["Mono"] != "fonts/custom.ttf" {
		t.Fatalf("font bound to wrong family: %v", backend.Registered)
	}
}

func TestLayoutFontRegistrationFailure(t *testing.T) {
	backend := layouttest.New(10)
	backend.MissingFonts = map[string]bool{"missing.ttf": true}
	cfg := testConfig(200)
	cfg.FontPath = "missing.ttf"
	_, err := layout.Layout("hi", cfg, backend, nil)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !errors.Is(err, layouttest.ErrFontMissing) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestLayoutRejectsNonPositiveWidth(t *testing.T) {
	_, err := layout.Layout("hi", testConfig(0), layouttest.New(10), nil)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLayoutMaxPixels(t *testing.T) {
	backend := layouttest.New(10)
	cfg := testConfig(200)
	cfg.MaxPixels = 200*layout.MeasureHeight - 1
	if _, err := layout.Layout("hi", cfg, backend, nil); !errors.Is(err, config.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for the measuring surface, got %v", err)
	}
	if len(backend.Surfaces) != 0 {
		t.Fatalf("no surface may be allocated, got %d", len(backend.Surfaces))
	}

	cfg.MaxPixels = 200 * layout.MeasureHeight
	if _, err := layout.Layout("a\nb\nc\nd", cfg, layouttest.New(10), nil); !errors.Is(err, config.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for a tall block, got %v", err)
	}
	if _, err := layout.Layout("a\nb\nc", cfg, layouttest.New(10), nil); err != nil {
		t.Fatalf("block within the limit should lay out: %v", err)
	}
}
