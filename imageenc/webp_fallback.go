//go:build !imagick

package imageenc

import (
	"fmt"
	"image"
)

const webpAvailable = false

func encodeWebP(image.Image) ([]byte, error) {
	return nil, fmt.Errorf("%w: webp 编码需要以 -tags imagick 构建", ErrFormatUnavailable)
}
