package layout

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/logging"
)

// MeasureHeight 是第一遍仅用于测量的探测表面高度。
const MeasureHeight = 100

// OriginX 返回文本锚点的 x 坐标。
func OriginX(cfg Config) float64 {
	switch cfg.TextAlign {
	case config.AlignCenter:
		return float64(cfg.MaxWidth) / 2
	case config.AlignRight, config.AlignEnd:
		return float64(cfg.MaxWidth) - cfg.FontSize/3
	default:
		return 0
	}
}

// Layout 对 text 做一遍贪心换行并把每一行画到表面上。
// target 为 nil 时由 backend 创建 MaxWidth×MeasureHeight 的探测表面；否则直接画到 target。
func Layout(text string, cfg Config, backend Backend, target Surface) (*Block, error) {
	if cfg.MaxWidth <= 0 {
		return nil, fmt.Errorf("%w: 换行宽度必须大于 0，当前为 %d", config.ErrInvalidConfig, cfg.MaxWidth)
	}
	if backend == nil && (target == nil || cfg.FontPath != "") {
		return nil, errors.New("layout: 缺少绘制后端 Backend")
	}
	// 字体注册必须先于任何测量，否则度量不正确。
	if cfg.FontPath != "" {
		if err := backend.RegisterFont(cfg.FontPath, cfg.FontFamily); err != nil {
			return nil, fmt.Errorf("%w: 注册字体 %s 失败: %w", config.ErrInvalidConfig, cfg.FontPath, err)
		}
	}
	surface := target
	if surface == nil {
		if config.ExceedsPixels(float64(cfg.MaxWidth), MeasureHeight, cfg.MaxPixels) {
			return nil, fmt.Errorf("%w: 探测表面 %dx%d", config.ErrTooLarge, cfg.MaxWidth, MeasureHeight)
		}
		surface = backend.NewSurface(cfg.MaxWidth, MeasureHeight)
	}

	font := cfg.Font()
	textX := OriginX(cfg)
	surface.SetFillColor(cfg.BgColor)
	surface.FillRect(surface.Bounds())
	surface.SetFillColor(cfg.TextColor)
	if err := surface.SetFont(font); err != nil {
		return nil, fmt.Errorf("%w: 设置字体 %s 失败: %w", config.ErrInvalidConfig, font, err)
	}
	surface.SetTextAlign(cfg.TextAlign)

	var (
		lines []Line
		line  string
		start int
		textY float64
	)
	paint := func(s string, forced bool) {
		surface.FillText(s, textX, textY)
		lines = append(lines, Line{Text: s, X: textX, Y: textY, Width: surface.MeasureText(s), Forced: forced, FirstToken: start})
	}

	slack := cfg.FontSize / 3
	limit := float64(cfg.MaxWidth)
	for i, tok := range Tokenize(text) {
		testLine := strings.Trim(line+" "+tok.Word, " ")
		// 显式换行优先于宽度判断；首个词即使超宽也不换行。
		if tok.BreakBefore || (surface.MeasureText(testLine)+slack > limit && i > 0) {
			paint(line, tok.BreakBefore)
			line, start = tok.Word, i
			textY += cfg.LineHeight
			continue
		}
		line = testLine
	}
	paint(line, false)

	height := textY + math.Max(cfg.LineHeight, cfg.FontSize)
	if config.ExceedsPixels(float64(cfg.MaxWidth), math.Ceil(height), cfg.MaxPixels) {
		return nil, fmt.Errorf("%w: 文本块 %dx%g", config.ErrTooLarge, cfg.MaxWidth, math.Ceil(height))
	}
	pixelHeight := int(math.Ceil(height))
	logging.Logger().Debug("layout pass",
		"font", font.String(), "wrapWidth", cfg.MaxWidth, "lines", len(lines), "height", height)

	return &Block{
		Height: height,
		Origin: textX,
		Font:   font,
		Lines:  lines,
		Pixels: surface.GetPixels(image.Rect(0, 0, cfg.MaxWidth, pixelHeight)),
	}, nil
}
