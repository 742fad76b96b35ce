package layout

// 该文件定义排版引擎的输入配置与输出结果，供合成、调试 JSON 共用。

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ByLCY/textimage/config"
)

// Config 是单遍排版所需的配置子集。MaxWidth 为换行宽度（已扣除边距）。
type Config struct {
	MaxWidth   int
	FontSize   float64
	LineHeight float64
	BgColor    color.Color
	TextColor  color.Color
	FontFamily string
	FontPath   string
	FontWeight string
	TextAlign  config.TextAlign
	// MaxPixels 限制探测表面与像素快照的面积，0 表示不限制。
	MaxPixels int
}

// Font 返回用于测量与绘制的字体描述。
func (c Config) Font() Font {
	return Font{Family: c.FontFamily, Size: c.FontSize, Weight: c.FontWeight}
}

// FromRender 由完整渲染配置派生排版配置，换行宽度为 maxWidth - 2*margin。
func FromRender(rc config.RenderConfig) Config {
	return Config{
		MaxWidth:   rc.WrapWidth(),
		FontSize:   rc.FontSize,
		LineHeight: rc.LineHeight,
		BgColor:    rc.BgColor,
		TextColor:  rc.TextColor,
		FontFamily: rc.FontFamily,
		FontPath:   rc.FontPath,
		FontWeight: rc.FontWeight,
		TextAlign:  rc.TextAlign,
	}
}

// Font 对应 CSS font 简写中的 weight、size 与 family。
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"` // px
	Weight string  `json:"weight"`
}

// String 按 "{weight} {size}px {family}" 格式输出。
func (f Font) String() string {
	weight := f.Weight
	if weight == "" {
		weight = "normal"
	}
	return fmt.Sprintf("%s %gpx %s", weight, f.Size, f.Family)
}

// Token 是换行循环处理的最小单位。BreakBefore 表示该词之前有显式换行符。
type Token struct {
	Word        string `json:"word"`
	BreakBefore bool   `json:"breakBefore,omitempty"`
}

// Line 是一行已绘制的文本及其绘制原点。
type Line struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Forced     bool    `json:"forced,omitempty"` // 由显式换行结束
	FirstToken int     `json:"firstToken"`       // 本行首词在 Tokenize 结果中的下标
}

// Block 是一遍排版的结果。
type Block struct {
	Height float64     `json:"height"`
	Origin float64     `json:"origin"`
	Font   Font        `json:"font"`
	Lines  []Line      `json:"lines"`
	Pixels *image.RGBA `json:"-"` // 区域 (0, 0, MaxWidth, ceil(Height)) 的快照
}

// PixelHeight 返回像素快照的高度。
func (b *Block) PixelHeight() int {
	if b == nil || b.Pixels == nil {
		return 0
	}
	return b.Pixels.Bounds().Dy()
}
