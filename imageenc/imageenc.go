// Package imageenc 把渲染结果编码为常见的位图格式。
package imageenc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrUnsupportedFormat = errors.New("不支持的图片格式")
	// ErrFormatUnavailable 表示格式已知但当前构建未启用，例如未带 imagick 标签时的 WebP。
	ErrFormatUnavailable = errors.New("图片格式在当前构建中不可用")
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

// JPEGQuality 是 JPEG 编码质量。
const JPEGQuality = 92

var formats = []Format{PNG, JPEG, GIF, BMP, TIFF, WebP}

// Formats 返回全部已知格式。
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// Available 报告 f 在当前构建中能否编码。
func Available(f Format) bool {
	if f == WebP {
		return webpAvailable
	}
	for _, known := range formats {
		if known == f {
			return true
		}
	}
	return false
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MIMEType 返回格式对应的媒体类型。
func (f Format) MIMEType() string {
	return "image/" + string(f)
}

// Encode 把 img 编码为 f 格式。
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case PNG:
		err = png.Encode(&buf, img)
	case JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	case GIF:
		err = gif.Encode(&buf, img, nil)
	case BMP:
		err = bmp.Encode(&buf, img)
	case TIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	case WebP:
		return encodeWebP(img)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", f, err)
	}
	return buf.Bytes(), nil
}

// DataURL 返回 PNG 编码的 data URL。
func DataURL(img image.Image) (string, error) {
	data, err := Encode(img, PNG)
	if err != nil {
		return "", err
	}
	return "data:" + PNG.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL 解析 DataURL 生成的字符串。
func DecodeDataURL(s string) (image.Image, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("%w: 不是 PNG data URL", ErrUnsupportedFormat)
	}
	raw, err := base64.StdEncoding.DecodeString(s[len(prefix):])
	if err != nil {
		return nil, fmt.Errorf("解码 base64 失败: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("解码 png 失败: %w", err)
	}
	return img, nil
}
