// Package textimage 把一段纯文本渲染成位图：贪心换行、两遍排版定高、按边距与垂直对齐合成。
//
//	img, err := textimage.Generate(ctx, "hello world", config.Overrides{FontSize: config.Ptr(24.0)})
//	webp, err := img.Encode(textimage.DefaultFormat)
//
// GenerateSync 直接返回 PNG data URL。
package textimage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ByLCY/textimage/compose"
	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/debugsink"
	"github.com/ByLCY/textimage/imageenc"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/logging"
	canvasrenderer "github.com/ByLCY/textimage/renderer/canvas"
	rasterrenderer "github.com/ByLCY/textimage/renderer/raster"
)

// ErrIO 表示调试快照写入失败。
var ErrIO = errors.New("调试快照写入失败")

// DefaultFormat 是 Image.Encode 未指定格式时使用的格式。
const DefaultFormat = imageenc.WebP

// Backends 列出 NewBackend 支持的后端名称。
var Backends = []string{"raster", "canvas"}

// NewBackend 按名称创建绘制后端，空名称等同于 raster。
func NewBackend(name string) (layout.Backend, error) {
	switch strings.ToLower(name) {
	case "", "raster":
		return rasterrenderer.NewBackend(), nil
	case "canvas":
		return canvasrenderer.NewBackend(), nil
	}
	return nil, fmt.Errorf("%w: 未知的绘制后端 %q", config.ErrInvalidConfig, name)
}

// Generator 串联配置、合成、调试快照与编码。零值可用：raster 后端、快照写到当前目录。
type Generator struct {
	// NewBackend 每次调用创建一个新后端，字体注册不会跨调用保留。
	NewBackend func() layout.Backend
	Sink       debugsink.Sink
	Now        func() time.Time
	// MaxPixels 限制单张画布（及排版中间表面）的像素面积，0 表示不限制。
	MaxPixels int
}

var std Generator

// Generate 使用默认生成器。
func Generate(ctx context.Context, text string, o config.Overrides) (*Image, error) {
	return std.Generate(ctx, text, o)
}

// GenerateSync 使用默认生成器。
func GenerateSync(text string, o config.Overrides) (string, error) {
	return std.GenerateSync(text, o)
}

// Generate 渲染 text，返回可按需编码的图片。ctx 只在写调试快照之前检查。
func (g *Generator) Generate(ctx context.Context, text string, o config.Overrides) (*Image, error) {
	return g.render(ctx, text, o)
}

// GenerateSync 渲染 text 并返回 data:image/png;base64,... 形式的字符串。
func (g *Generator) GenerateSync(text string, o config.Overrides) (string, error) {
	img, err := g.render(context.Background(), text, o)
	if err != nil {
		return "", err
	}
	return imageenc.DataURL(img.canvas.Image)
}

func (g *Generator) render(ctx context.Context, text string, o config.Overrides) (*Image, error) {
	cfg, err := config.Build(o)
	if err != nil {
		return nil, err
	}
	canvas, err := compose.Compose(text, cfg, g.backend(), compose.WithMaxPixels(g.MaxPixels))
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		if err := g.persist(ctx, canvas, cfg.DebugFilename); err != nil {
			return nil, err
		}
	}
	return &Image{canvas: canvas}, nil
}

func (g *Generator) persist(ctx context.Context, canvas *compose.Canvas, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		name = debugsink.DefaultName(g.now())
	}
	data, err := imageenc.Encode(canvas.Image, imageenc.PNG)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := g.sink().Persist(ctx, data, name); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, name, err)
	}
	logging.Logger().Debug("debug snapshot persisted", "name", name)
	return nil
}

func (g *Generator) backend() layout.Backend {
	if g.NewBackend != nil {
		return g.NewBackend()
	}
	return rasterrenderer.NewBackend()
}

func (g *Generator) sink() debugsink.Sink {
	if g.Sink != nil {
		return g.Sink
	}
	return debugsink.FileSink{}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Image 是合成完成的画布。
type Image struct {
	canvas *compose.Canvas
}

// Encode 把画布编码为 f 格式，f 为空时使用 DefaultFormat。
func (im *Image) Encode(f imageenc.Format) ([]byte, error) {
	if f == "" {
		f = DefaultFormat
	}
	return imageenc.Encode(im.canvas.Image, f)
}

// RGBA 返回画布像素，调用方不应修改。
func (im *Image) RGBA() *image.RGBA { return im.canvas.Image }

// Clipped 报告文本是否因 customHeight 被裁剪。
func (im *Image) Clipped() bool { return im.canvas.Clipped }

// Block 返回第二遍排版的结果。
func (im *Image) Block() *layout.Block { return im.canvas.Block }

// Offset 返回文本层在画布中的位置。
func (im *Image) Offset() image.Point { return im.canvas.Offset }
