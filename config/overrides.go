package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Overrides 是调用方提供的部分配置，nil 字段沿用默认值。
// JSON 字段名与对外公开的选项名一致。
type Overrides struct {
	BgColor       *string  `json:"bgColor,omitempty"`
	CustomHeight  *int     `json:"customHeight,omitempty"`
	Debug         *bool    `json:"debug,omitempty"`
	DebugFilename *string  `json:"debugFilename,omitempty"`
	FontFamily    *string  `json:"fontFamily,omitempty"`
	FontPath      *string  `json:"fontPath,omitempty"`
	FontSize      *float64 `json:"fontSize,omitempty"`
	FontWeight    *string  `json:"fontWeight,omitempty"`
	LineHeight    *float64 `json:"lineHeight,omitempty"`
	Margin        *int     `json:"margin,omitempty"`
	MaxWidth      *int     `json:"maxWidth,omitempty"`
	TextAlign     *string  `json:"textAlign,omitempty"`
	TextColor     *string  `json:"textColor,omitempty"`
	VerticalAlign *string  `json:"verticalAlign,omitempty"`
}

// Ptr 便于构造 Overrides 字面量。
func Ptr[T any](v T) *T { return &v }

type setter func(o *Overrides, value string) error

var setters = map[string]setter{
	"bgcolor":       func(o *Overrides, v string) error { o.BgColor = &v; return nil },
	"customheight":  intSetter(func(o *Overrides) **int { return &o.CustomHeight }),
	"debug":         boolSetter(func(o *Overrides) **bool { return &o.Debug }),
	"debugfilename": func(o *Overrides, v string) error { o.DebugFilename = &v; return nil },
	"fontfamily":    func(o *Overrides, v string) error { o.FontFamily = &v; return nil },
	"fontpath":      func(o *Overrides, v string) error { o.FontPath = &v; return nil },
	"fontsize":      floatSetter(func(o *Overrides) **float64 { return &o.FontSize }),
	"fontweight":    func(o *Overrides, v string) error { o.FontWeight = &v; return nil },
	"lineheight":    floatSetter(func(o *Overrides) **float64 { return &o.LineHeight }),
	"margin":        intSetter(func(o *Overrides) **int { return &o.Margin }),
	"maxwidth":      intSetter(func(o *Overrides) **int { return &o.MaxWidth }),
	"textalign":     func(o *Overrides, v string) error { o.TextAlign = &v; return nil },
	"textcolor":     func(o *Overrides, v string) error { o.TextColor = &v; return nil },
	"verticalalign": func(o *Overrides, v string) error { o.VerticalAlign = &v; return nil },
}

var aliases = map[string]string{
	"backgroundcolor": "bgcolor",
	"background":      "bgcolor",
	"color":           "textcolor",
	"width":           "maxwidth",
	"height":          "customheight",
	"align":           "textalign",
	"valign":          "verticalalign",
}

// NormalizeKey 把 font-size / font_size / fontSize 统一成 fontsize。
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer("-", "", "_", "").Replace(k)
	if target, ok := aliases[k]; ok {
		return target
	}
	return k
}

// Keys 返回所有可识别的选项（规范化后的名称）。
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set 按文本值设置一个选项，供命令行参数、预设文件与 HTTP 查询参数使用。
func (o *Overrides) Set(key, value string) error {
	fn, ok := setters[NormalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: 未知选项 %q", ErrInvalidConfig, key)
	}
	if err := fn(o, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Merge 返回 o 被 top 覆盖后的结果，top 中非 nil 的字段胜出。
func (o Overrides) Merge(top Overrides) Overrides {
	out := o
	pick(&out.BgColor, top.BgColor)
	pick(&out.CustomHeight, top.CustomHeight)
	pick(&out.Debug, top.Debug)
	pick(&out.DebugFilename, top.DebugFilename)
	pick(&out.FontFamily, top.FontFamily)
	pick(&out.FontPath, top.FontPath)
	pick(&out.FontSize, top.FontSize)
	pick(&out.FontWeight, top.FontWeight)
	pick(&out.LineHeight, top.LineHeight)
	pick(&out.Margin, top.Margin)
	pick(&out.MaxWidth, top.MaxWidth)
	pick(&out.TextAlign, top.TextAlign)
	pick(&out.TextColor, top.TextColor)
	pick(&out.VerticalAlign, top.VerticalAlign)
	return out
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func intSetter(field func(*Overrides) **int) setter {
	return func(o *Overrides, v string) error {
		px, err := ParseLength(v)
		if err != nil {
			return err
		}
		n := int(math.Round(px))
		*field(o) = &n
		return nil
	}
}

func floatSetter(field func(*Overrides) **float64) setter {
	return func(o *Overrides, v string) error {
		px, err := ParseLength(v)
		if err != nil {
			return err
		}
		*field(o) = &px
		return nil
	}
}

func boolSetter(field func(*Overrides) **bool) setter {
	return func(o *Overrides, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %q 不是合法的布尔值", ErrInvalidConfig, v)
		}
		*field(o) = &b
		return nil
	}
}
