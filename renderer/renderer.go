// Package renderer 提供各绘制后端共用的像素缓冲区。
// 具体的文本测量与光栅化见 renderer/canvas（矢量）与 renderer/raster（TrueType）。
package renderer

import (
	"image"
	"image/color"
	"image/draw"
)

// Buffer 实现 layout.Surface 中与字体无关的部分：填充、清除与像素读写。
type Buffer struct {
	img  *image.RGBA
	fill color.Color
}

// NewBuffer 创建 width×height 的透明缓冲区，宽高小于 0 时按 0 处理。
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		img:  image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		fill: color.Black,
	}
}

func (b *Buffer) Bounds() image.Rectangle { return b.img.Bounds() }

// RGBA 返回底层图像，调用方不应在绘制期间持有。
func (b *Buffer) RGBA() *image.RGBA { return b.img }

func (b *Buffer) SetFillColor(c color.Color) { b.fill = c }

func (b *Buffer) FillColor() color.Color { return b.fill }

// FillRect 以 source-over 方式用当前填充色绘制矩形。
func (b *Buffer) FillRect(r image.Rectangle) {
	draw.Draw(b.img, r.Intersect(b.img.Bounds()), image.NewUniform(b.fill), image.Point{}, draw.Over)
}

// ClearRect 把矩形区域置为完全透明。
func (b *Buffer) ClearRect(r image.Rectangle) {
	draw.Draw(b.img, r.Intersect(b.img.Bounds()), image.Transparent, image.Point{}, draw.Src)
}

func (b *Buffer) GetPixels(r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, max(r.Dx(), 0), max(r.Dy(), 0)))
	draw.Draw(out, out.Bounds(), b.img, r.Min, draw.Src)
	return out
}

func (b *Buffer) PutPixels(src *image.RGBA, at image.Point) {
	if src == nil {
		return
	}
	sb := src.Bounds()
	draw.Draw(b.img, sb.Sub(sb.Min).Add(at), src, sb.Min, draw.Src)
}
