// Package rasterrenderer 用 golang/freetype 的 TrueType 光栅器实现 layout.Surface。
// 度量以 26.6 定点数计算，DPI 固定为 72，因此 1pt = 1px，输出逐像素可复现。
package rasterrenderer

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/fonts"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/logging"
	"github.com/ByLCY/textimage/renderer"
)

// Backend 管理已解析的 TrueType 字体。
type Backend struct {
	fontMu     sync.Mutex
	registered map[string]*truetype.Font
	defaults   map[string]*truetype.Font
	hinting    font.Hinting
}

var _ layout.Backend = (*Backend)(nil)

// Option 调整后端行为。
type Option func(*Backend)

// WithHinting 设置字形微调方式，默认不微调。
func WithHinting(h font.Hinting) Option {
	return func(b *Backend) { b.hinting = h }
}

// NewBackend 创建后端。
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		registered: map[string]*truetype.Font{},
		defaults:   map[string]*truetype.Font{},
		hinting:    font.HintingNone,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) NewSurface(width, height int) layout.Surface {
	return &Surface{Buffer: renderer.NewBuffer(width, height), backend: b}
}

func (b *Backend) RegisterFont(path, family string) error {
	data, err := fonts.Load(path)
	if err != nil {
		return err
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	b.fontMu.Lock()
	b.registered[strings.ToLower(family)] = parsed
	b.fontMu.Unlock()
	logging.Logger().Debug("font registered", "backend", "raster", "family", family, "path", path)
	return nil
}

func (b *Backend) face(f layout.Font) (font.Face, error) {
	b.fontMu.Lock()
	defer b.fontMu.Unlock()

	parsed, ok := b.registered[strings.ToLower(f.Family)]
	if !ok {
		style := fonts.ParseStyle(f.Weight)
		key := fmt.Sprintf("%s|%t|%t", strings.ToLower(f.Family), style.Weight.Bold(), style.Italic)
		if parsed, ok = b.defaults[key]; !ok {
			var err error
			parsed, err = truetype.Parse(fonts.Default(f.Family, style.Weight.Bold(), style.Italic))
			if err != nil {
				return nil, fmt.Errorf("解析内置字体失败: %w", err)
			}
			b.defaults[key] = parsed
		}
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: b.hinting,
	}), nil
}

// Surface 是 TrueType 光栅表面。
type Surface struct {
	*renderer.Buffer
	backend *Backend
	face    font.Face
	align   config.TextAlign
}

var _ layout.Surface = (*Surface)(nil)

func (s *Surface) SetFont(f layout.Font) error {
	face, err := s.backend.face(f)
	if err != nil {
		return err
	}
	s.face = face
	return nil
}

func (s *Surface) SetTextAlign(a config.TextAlign) { s.align = a }

func (s *Surface) MeasureText(text string) float64 {
	if s.face == nil {
		return 0
	}
	return fromFixed(font.MeasureString(s.face, text))
}

// FillText 在 (x, y) 处以 top 基线绘制文本，x 按当前对齐方式解释。
func (s *Surface) FillText(text string, x, y float64) {
	if s.face == nil || text == "" {
		return
	}
	switch s.align {
	case config.AlignCenter:
		x -= s.MeasureText(text) / 2
	case config.AlignRight, config.AlignEnd:
		x -= s.MeasureText(text)
	}
	d := &font.Drawer{
		Dst:  s.RGBA(),
		Src:  image.NewUniform(s.FillColor()),
		Face: s.face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y) + s.face.Metrics().Ascent},
	}
	d.DrawString(text)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
