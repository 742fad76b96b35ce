//go:build imagick

package imageenc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gographics/imagick/imagick"
)

const webpAvailable = true

// WebPQuality 是 WebP 编码质量。
const WebPQuality = 90

func encodeWebP(img image.Image) ([]byte, error) {
	src, err := Encode(img, PNG)
	if err != nil {
		return nil, err
	}

	imagick.Initialize()
	defer imagick.Terminate()

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if err := mw.ReadImageBlob(src); err != nil {
		return nil, fmt.Errorf("读取 png 数据失败: %w", err)
	}
	if err := mw.SetImageFormat("webp"); err != nil {
		return nil, fmt.Errorf("设置 webp 格式失败: %w", err)
	}
	if err := mw.SetImageCompressionQuality(WebPQuality); err != nil {
		return nil, fmt.Errorf("设置 webp 质量失败: %w", err)
	}
	return bytes.Clone(mw.GetImageBlob()), nil
}
