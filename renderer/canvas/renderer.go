package canvasrenderer

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/fonts"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/logging"
	"github.com/ByLCY/textimage/renderer"
)

// canvas 以 mm 为单位，光栅化时取 1 mm = 1 px；字号需要换算为 pt。
var resolution = canvas.DPMM(1.0)

const ptPerUnit = 72 / 25.4

// Backend draws text via github.com/tdewolff/canvas and rasterizes it onto RGBA buffers.
type Backend struct {
	fontMu     sync.Mutex
	registered map[string]*canvas.FontFamily // by lower-cased family name
	defaults   map[string]*canvas.FontFamily // built-in faces by family|bold|italic
}

var _ layout.Backend = (*Backend)(nil)

// NewBackend creates a backend with no registered fonts.
func NewBackend() *Backend {
	return &Backend{
		registered: map[string]*canvas.FontFamily{},
		defaults:   map[string]*canvas.FontFamily{},
	}
}

// NewSurface 创建透明的 width×height 表面。
func (b *Backend) NewSurface(width, height int) layout.Surface {
	return &Surface{Buffer: renderer.NewBuffer(width, height), backend: b, align: canvas.Left}
}

// RegisterFont 加载字体文件（或 builtin:*）并绑定到 family，同名 family 后注册的生效。
func (b *Backend) RegisterFont(path, family string) error {
	data, err := fonts.Load(path)
	if err != nil {
		return err
	}
	fam := canvas.NewFontFamily(family)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	b.fontMu.Lock()
	b.registered[strings.ToLower(family)] = fam
	b.fontMu.Unlock()
	logging.Logger().Debug("font registered", "backend", "canvas", "family", family, "path", path)
	return nil
}

// fontFamily 返回已注册的 family；未注册时按字重与斜体选择内置字体。
func (b *Backend) fontFamily(f layout.Font) (*canvas.FontFamily, error) {
	b.fontMu.Lock()
	defer b.fontMu.Unlock()

	if fam, ok := b.registered[strings.ToLower(f.Family)]; ok {
		return fam, nil
	}
	style := fonts.ParseStyle(f.Weight)
	key := fmt.Sprintf("%s|%t|%t", strings.ToLower(f.Family), style.Weight.Bold(), style.Italic)
	if fam, ok := b.defaults[key]; ok {
		return fam, nil
	}
	fam := canvas.NewFontFamily(f.Family)
	if err := fam.LoadFont(fonts.Default(f.Family, style.Weight.Bold(), style.Italic), 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载内置字体失败: %w", err)
	}
	b.defaults[key] = fam
	return fam, nil
}

// Surface 是基于 tdewolff/canvas 的绘制表面。
type Surface struct {
	*renderer.Buffer
	backend *Backend
	family  *canvas.FontFamily
	size    float64 // px
	align   canvas.TextAlign
	measure *canvas.FontFace
}

var _ layout.Surface = (*Surface)(nil)

func (s *Surface) SetFont(f layout.Font) error {
	fam, err := s.backend.fontFamily(f)
	if err != nil {
		return err
	}
	s.family = fam
	s.size = f.Size
	s.measure = s.face(color.Black)
	return nil
}

func (s *Surface) SetTextAlign(a config.TextAlign) {
	switch a {
	case config.AlignCenter:
		s.align = canvas.Center
	case config.AlignRight, config.AlignEnd:
		s.align = canvas.Right
	default:
		s.align = canvas.Left
	}
}

// MeasureText 返回像素宽度；未设置字体时为 0。
func (s *Surface) MeasureText(text string) float64 {
	if s.measure == nil {
		return 0
	}
	return s.measure.TextWidth(text)
}

// FillText 在 (x, y) 处以 top 基线绘制一行文本。
func (s *Surface) FillText(text string, x, y float64) {
	if s.family == nil || text == "" {
		return
	}
	face := s.face(s.FillColor())
	bounds := s.Bounds()

	c := canvas.New(float64(bounds.Dx()), float64(bounds.Dy()))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 与像素坐标一致：左上角为原点
	baseline := y + face.Metrics().Ascent
	ctx.DrawText(x, baseline, canvas.NewTextLine(face, text, s.align))
	c.RenderTo(rasterizer.FromImage(s.RGBA(), resolution, canvas.DefaultColorSpace))
}

func (s *Surface) face(col color.Color) *canvas.FontFace {
	return s.family.Face(s.size*ptPerUnit, col, canvas.FontRegular, canvas.FontNormal)
}
