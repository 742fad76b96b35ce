package config

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {A: 0xff},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"transparent": {},
	"red":         {R: 0xff, A: 0xff},
	"green":       {G: 0x80, A: 0xff},
	"lime":        {G: 0xff, A: 0xff},
	"blue":        {B: 0xff, A: 0xff},
	"yellow":      {R: 0xff, G: 0xff, A: 0xff},
	"orange":      {R: 0xff, G: 0xa5, A: 0xff},
	"gray":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"grey":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"silver":      {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	"navy":        {B: 0x80, A: 0xff},
	"purple":      {R: 0x80, B: 0x80, A: 0xff},
}

// ParseColor 支持 #rgb、#rgba、#rrggbb、#rrggbbaa、rgb()/rgba() 以及常见颜色名。
// 返回非预乘的 NRGBA。
func ParseColor(value string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v[1:], value)
	}
	if strings.HasPrefix(v, "rgb") {
		return parseFunc(v, value)
	}
	return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 无法解析", ErrInvalidConfig, value)
}

func parseHex(hex, raw string) (color.NRGBA, error) {
	switch len(hex) {
	case 3, 4:
		expanded := make([]byte, 0, len(hex)*2)
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 长度不合法", ErrInvalidConfig, raw)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 不是十六进制", ErrInvalidConfig, raw)
	}
	if len(hex) == 6 {
		n = n<<8 | 0xff
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseFunc(v, raw string) (color.NRGBA, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 无法解析", ErrInvalidConfig, raw)
	}
	name := strings.TrimSpace(v[:open])
	args := strings.Split(v[open+1:len(v)-1], ",")
	if (name == "rgb" && len(args) != 3) || (name == "rgba" && len(args) != 4) || (name != "rgb" && name != "rgba") {
		return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 参数个数不正确", ErrInvalidConfig, raw)
	}
	var comps [4]uint8
	comps[3] = 0xff
	for i, arg := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: 颜色值 %q 含非法分量 %q", ErrInvalidConfig, raw, arg)
		}
		if i == 3 {
			f *= 255
		}
		comps[i] = uint8(math.Round(math.Max(0, math.Min(255, f))))
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}
