package layout

import (
	"image"
	"image/color"

	"github.com/ByLCY/textimage/config"
)

// Surface 是可测量文本并绘制到像素缓冲区的表面，语义与 HTML canvas 2D 上下文一致：
// FillText 的 y 为行顶（top 基线），x 为按当前对齐方式解释的锚点。
type Surface interface {
	Bounds() image.Rectangle
	SetFont(f Font) error
	SetFillColor(c color.Color)
	SetTextAlign(a config.TextAlign)
	// MeasureText 返回文本在当前字体下的像素宽度。
	MeasureText(s string) float64
	FillRect(r image.Rectangle)
	FillText(s string, x, y float64)
	ClearRect(r image.Rectangle)
	// GetPixels 复制区域 r 的像素，落在表面之外的部分为透明。
	GetPixels(r image.Rectangle) *image.RGBA
	// PutPixels 把 src 原样（不做混合）写到 at 处，超出表面的部分被裁掉。
	PutPixels(src *image.RGBA, at image.Point)
}

// Backend 创建表面并管理字体注册。
type Backend interface {
	NewSurface(width, height int) Surface
	// RegisterFont 从 path 加载字体并绑定到 family，必须在首次测量前调用。
	RegisterFont(path, family string) error
}
