// Package layouttest 提供等宽、可记录调用的绘制后端，供排版与合成测试使用。
//
// 每个 rune 宽 CharWidth 像素；FillText 把每个非空格字符画成 CharWidth×FontSize 的实心块，
// 因此像素输出完全确定。
package layouttest

import (
	"errors"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/renderer"
)

// ErrFontMissing 由 RegisterFont 在 MissingFonts 命中时返回。
var ErrFontMissing = errors.New("layouttest: font file missing")

// TextCall 记录一次 FillText。
type TextCall struct {
	Text  string
	X, Y  float64
	Align config.TextAlign
	Font  layout.Font
	Color color.Color
}

// Backend 是记录型后端。
type Backend struct {
	CharWidth    float64
	MissingFonts map[string]bool // path -> 注册失败
	Registered   map[string]string
	Surfaces     []*Surface
	// Events 按顺序记录 "register"、"measure" 等事件，用于检查调用次序。
	Events []string
}

// New 创建每个字符宽 charWidth 像素的后端。
func New(charWidth float64) *Backend {
	return &Backend{CharWidth: charWidth, Registered: map[string]string{}}
}

func (b *Backend) NewSurface(width, height int) layout.Surface {
	s := &Surface{Buffer: renderer.NewBuffer(width, height), backend: b}
	b.Surfaces = append(b.Surfaces, s)
	return s
}

func (b *Backend) RegisterFont(path, family string) error {
	b.Events = append(b.Events, "register")
	if b.MissingFonts[path] {
		return ErrFontMissing
	}
	b.Registered[family] = path
	return nil
}

// Surface 是等宽假表面。
type Surface struct {
	*renderer.Buffer
	backend *Backend
	font    layout.Font
	align   config.TextAlign
	Texts   []TextCall
}

func (s *Surface) SetFont(f layout.Font) error {
	s.font = f
	return nil
}

func (s *Surface) SetTextAlign(a config.TextAlign) { s.align = a }

func (s *Surface) MeasureText(text string) float64 {
	s.backend.Events = append(s.backend.Events, "measure")
	return float64(utf8.RuneCountInString(text)) * s.backend.CharWidth
}

func (s *Surface) FillText(text string, x, y float64) {
	s.Texts = append(s.Texts, TextCall{Text: text, X: x, Y: y, Align: s.align, Font: s.font, Color: s.FillColor()})
	cw := s.backend.CharWidth
	width := float64(utf8.RuneCountInString(text)) * cw
	switch s.align {
	case config.AlignCenter:
		x -= width / 2
	case config.AlignRight, config.AlignEnd:
		x -= width
	}
	i := 0
	for _, r := range text {
		if r != ' ' {
			x0 := int(x + float64(i)*cw)
			rect := image.Rect(x0, int(y), int(x+float64(i+1)*cw), int(y+s.font.Size))
			s.FillRect(rect)
		}
		i++
	}
}

// Lines 返回已绘制的文本内容。
func (s *Surface) Lines() []string {
	out := make([]string, len(s.Texts))
	for i, c := range s.Texts {
		out[i] = c.Text
	}
	return out
}
