// Package compose 把排版结果合成到最终画布：边距、固定高度、垂直居中与裁剪。
package compose

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/logging"
)

// Canvas 是合成结果。
type Canvas struct {
	Image *image.RGBA
	// Block 是第二遍排版的结果，Pixels 即贴到画布上的文本层。
	Block *layout.Block
	// Offset 是文本层左上角在画布中的位置。
	Offset image.Point
	// Clipped 表示 CustomHeight 放不下文本与边距，底部被裁掉。
	Clipped bool
}

// Size 返回画布尺寸。
func (c *Canvas) Size() image.Point {
	return c.Image.Bounds().Size()
}

// Option 调整 Compose 的行为。
type Option func(*options)

type options struct {
	maxPixels int
}

// WithMaxPixels 限制探测表面、文本层与画布各自的像素面积，超出时返回 config.ErrTooLarge。
func WithMaxPixels(n int) Option {
	return func(o *options) { o.maxPixels = n }
}

// Compose 执行两遍排版并合成画布。
//
// 第一遍在探测表面上测得文本块高度，据此分配画布；第二遍在与文本块等大的新表面上重绘，
// 再以源拷贝方式贴到边距或垂直居中的位置。超出画布的部分被裁掉，不视为错误。
func Compose(text string, cfg config.RenderConfig, backend layout.Backend, opts ...Option) (*Canvas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	lc := layout.FromRender(cfg)
	lc.MaxPixels = o.maxPixels

	measured, err := layout.Layout(text, lc, backend, nil)
	if err != nil {
		return nil, err
	}

	withMargins := measured.Height + 2*float64(cfg.Margin)
	height := int(math.Ceil(withMargins))
	clipped := false
	if cfg.CustomHeight != 0 {
		height = cfg.CustomHeight
		if float64(cfg.CustomHeight) < withMargins {
			clipped = true
			logging.Logger().Warn("text does not fit in custom height and will be clipped",
				"customHeight", cfg.CustomHeight, "required", withMargins)
		}
	}

	if config.ExceedsPixels(float64(cfg.MaxWidth), float64(height), o.maxPixels) {
		return nil, fmt.Errorf("%w: 画布 %dx%d，上限 %d 像素", config.ErrTooLarge, cfg.MaxWidth, height, o.maxPixels)
	}
	canvas := backend.NewSurface(cfg.MaxWidth, height)

	// 在独立表面上重绘，保证文本层完整，裁剪只发生在贴图时。
	layer := backend.NewSurface(lc.MaxWidth, measured.PixelHeight())
	block, err := layout.Layout(text, lc, backend, layer)
	if err != nil {
		return nil, err
	}
	if block.Height != measured.Height || !sameBreaks(block.Lines, measured.Lines) {
		logging.Logger().Warn("layout passes disagree",
			"measured", measured.Height, "painted", block.Height)
	}

	bounds := canvas.Bounds()
	canvas.ClearRect(bounds)
	canvas.SetFillColor(cfg.BgColor)
	canvas.FillRect(bounds)

	offset := Offset(cfg, block)
	canvas.PutPixels(block.Pixels, offset)

	logging.Logger().Debug("composed",
		"width", cfg.MaxWidth, "height", height, "lines", len(block.Lines),
		"offset", fmt.Sprintf("%d,%d", offset.X, offset.Y), "clipped", clipped)

	return &Canvas{
		Image:   canvas.GetPixels(bounds),
		Block:   block,
		Offset:  offset,
		Clipped: clipped,
	}, nil
}

// Offset 返回文本层在画布中的左上角。仅在指定了 CustomHeight 时才做垂直居中，
// 结果向零截断。
func Offset(cfg config.RenderConfig, block *layout.Block) image.Point {
	at := image.Pt(cfg.Margin, cfg.Margin)
	if cfg.CustomHeight != 0 && cfg.VerticalAlign == config.VAlignCenter {
		y := float64(cfg.CustomHeight-block.PixelHeight())/2 +
			math.Max(0, (cfg.LineHeight-cfg.FontSize)/2)
		at.Y = int(y)
	}
	return at
}

func sameBreaks(a, b []layout.Line) bool {
	return slices.EqualFunc(a, b, func(x, y layout.Line) bool {
		return x.Text == y.Text && x.Y == y.Y
	})
}
