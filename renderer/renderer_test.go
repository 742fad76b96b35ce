package renderer

import (
	"image"
	"image/color"
	"testing"
)

func TestBufferFillAndGet(t *testing.T) {
	b := NewBuffer(4, 3)
	b.SetFillColor(color.NRGBA{R: 255, A: 255})
	b.FillRect(image.Rect(0, 0, 10, 10))

	px := b.GetPixels(image.Rect(2, 1, 6, 5))
	if px.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("unexpected bounds: %v", px.Bounds())
	}
	if got := px.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("inside pixel: %v", got)
	}
	// 超出源表面的部分保持透明
	if got := px.RGBAAt(3, 3); got != (color.RGBA{}) {
		t.Fatalf("outside pixel should be transparent, got %v", got)
	}
}

func TestBufferPutPixelsClipsAndReplaces(t *testing.T) {
	dst := NewBuffer(4, 4)
	dst.SetFillColor(color.White)
	dst.FillRect(dst.Bounds())

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{})
	src.SetRGBA(1, 1, color.RGBA{B: 255, A: 255})
	dst.PutPixels(src, image.Pt(-1, 3))

	img := dst.RGBA()
	if got := img.RGBAAt(0, 3); got != (color.RGBA{}) {
		t.Fatalf("expected copied pixel at (0,3), got %v", got)
	}
	if got := img.RGBAAt(1, 3); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("pixel outside src should be untouched, got %v", got)
	}
}

func TestBufferClearRect(t *testing.T) {
	b := NewBuffer(2, 2)
	b.SetFillColor(color.Black)
	b.FillRect(b.Bounds())
	b.ClearRect(image.Rect(0, 0, 1, 1))
	if got := b.RGBA().RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("expected cleared pixel, got %v", got)
	}
	if got := b.RGBA().RGBAAt(1, 1); got.A != 255 {
		t.Fatalf("expected untouched pixel, got %v", got)
	}
}
