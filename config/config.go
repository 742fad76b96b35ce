// Package config 定义一次渲染调用所需的不可变配置，以及从默认值合并调用方覆盖项的构建器。
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ErrInvalidConfig 标记致命的配置错误（非法取值、换行宽度不为正、字体无法加载）。
var ErrInvalidConfig = errors.New("配置无效")

// ErrTooLarge 表示画布或文本层超出调用方设定的像素上限。
var ErrTooLarge = errors.New("画布尺寸超出限制")

// ExceedsPixels 报告 w×h 是否超过 limit，limit <= 0 表示不限制。
func ExceedsPixels(w, h float64, limit int) bool {
	return limit > 0 && w*h > float64(limit)
}

// TextAlign 是文本水平对齐方式。
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
	AlignEnd    TextAlign = "end"
)

// ParseTextAlign 不区分大小写。
func ParseTextAlign(s string) (TextAlign, error) {
	switch a := TextAlign(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight, AlignEnd:
		return a, nil
	}
	return "", fmt.Errorf("%w: 未知的 textAlign %q（可选 left/center/right/end）", ErrInvalidConfig, s)
}

// VerticalAlign 只在指定 customHeight 时生效。
type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
)

// ParseVerticalAlign 不区分大小写。
func ParseVerticalAlign(s string) (VerticalAlign, error) {
	switch a := VerticalAlign(strings.ToLower(strings.TrimSpace(s))); a {
	case VAlignTop, VAlignCenter:
		return a, nil
	}
	return "", fmt.Errorf("%w: 未知的 verticalAlign %q（可选 top/center）", ErrInvalidConfig, s)
}

// RenderConfig 是单次调用的完整配置，由 Build 构造后按值传递，不再修改。
type RenderConfig struct {
	BgColor       color.NRGBA
	CustomHeight  int // 0 表示按文本高度自动计算
	Debug         bool
	DebugFilename string
	FontFamily    string
	FontPath      string
	FontSize      float64
	FontWeight    string
	LineHeight    float64
	Margin        int // 四边相同
	MaxWidth      int // 画布总宽度
	TextAlign     TextAlign
	TextColor     color.NRGBA
	VerticalAlign VerticalAlign
}

// WrapWidth 返回排版可用宽度：画布宽度减去左右边距。
func (c RenderConfig) WrapWidth() int {
	return c.MaxWidth - 2*c.Margin
}

// 默认值，与 Overrides 的 JSON 名称一一对应。
const (
	DefaultBgColor       = "#fff"
	DefaultFontFamily    = "Helvetica"
	DefaultFontSize      = 18
	DefaultFontWeight    = "normal"
	DefaultLineHeight    = 28
	DefaultMargin        = 10
	DefaultMaxWidth      = 400
	DefaultTextAlign     = AlignLeft
	DefaultTextColor     = "#000"
	DefaultVerticalAlign = VAlignTop
)

// Default 返回全部取默认值的配置。
func Default() RenderConfig {
	return RenderConfig{
		BgColor:       color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		FontFamily:    DefaultFontFamily,
		FontSize:      DefaultFontSize,
		FontWeight:    DefaultFontWeight,
		LineHeight:    DefaultLineHeight,
		Margin:        DefaultMargin,
		MaxWidth:      DefaultMaxWidth,
		TextAlign:     DefaultTextAlign,
		TextColor:     color.NRGBA{A: 0xff},
		VerticalAlign: DefaultVerticalAlign,
	}
}

// Build 将覆盖项合并到默认值之上并校验结果。
func Build(o Overrides) (RenderConfig, error) {
	cfg := Default()
	var err error
	if o.BgColor != nil {
		if cfg.BgColor, err = ParseColor(*o.BgColor); err != nil {
			return RenderConfig{}, fmt.Errorf("bgColor: %w", err)
		}
	}
	if o.TextColor != nil {
		if cfg.TextColor, err = ParseColor(*o.TextColor); err != nil {
			return RenderConfig{}, fmt.Errorf("textColor: %w", err)
		}
	}
	if o.TextAlign != nil {
		if cfg.TextAlign, err = ParseTextAlign(*o.TextAlign); err != nil {
			return RenderConfig{}, err
		}
	}
	if o.VerticalAlign != nil {
		if cfg.VerticalAlign, err = ParseVerticalAlign(*o.VerticalAlign); err != nil {
			return RenderConfig{}, err
		}
	}
	if o.CustomHeight != nil {
		cfg.CustomHeight = *o.CustomHeight
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.DebugFilename != nil {
		cfg.DebugFilename = *o.DebugFilename
	}
	if o.FontFamily != nil {
		cfg.FontFamily = *o.FontFamily
	}
	if o.FontPath != nil {
		cfg.FontPath = *o.FontPath
	}
	if o.FontSize != nil {
		cfg.FontSize = *o.FontSize
	}
	if o.FontWeight != nil {
		cfg.FontWeight = *o.FontWeight
	}
	if o.LineHeight != nil {
		cfg.LineHeight = *o.LineHeight
	}
	if o.Margin != nil {
		cfg.Margin = *o.Margin
	}
	if o.MaxWidth != nil {
		cfg.MaxWidth = *o.MaxWidth
	}
	if err := cfg.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return cfg, nil
}

// Validate 检查数值约束。
func (c RenderConfig) Validate() error {
	switch {
	case c.MaxWidth <= 0:
		return fmt.Errorf("%w: maxWidth 必须大于 0，当前为 %d", ErrInvalidConfig, c.MaxWidth)
	case c.Margin < 0:
		return fmt.Errorf("%w: margin 不能为负数，当前为 %d", ErrInvalidConfig, c.Margin)
	case c.WrapWidth() <= 0:
		return fmt.Errorf("%w: maxWidth(%d) - 2*margin(%d) 必须大于 0", ErrInvalidConfig, c.MaxWidth, c.Margin)
	case !finite(c.FontSize) || !finite(c.LineHeight):
		return fmt.Errorf("%w: fontSize(%g) 与 lineHeight(%g) 必须是有限数", ErrInvalidConfig, c.FontSize, c.LineHeight)
	case c.FontSize <= 0:
		return fmt.Errorf("%w: fontSize 必须大于 0，当前为 %g", ErrInvalidConfig, c.FontSize)
	case c.LineHeight < 0:
		return fmt.Errorf("%w: lineHeight 不能为负数，当前为 %g", ErrInvalidConfig, c.LineHeight)
	case c.CustomHeight < 0:
		return fmt.Errorf("%w: customHeight 不能为负数，当前为 %d", ErrInvalidConfig, c.CustomHeight)
	case strings.TrimSpace(c.FontFamily) == "":
		return fmt.Errorf("%w: fontFamily 不能为空", ErrInvalidConfig)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
