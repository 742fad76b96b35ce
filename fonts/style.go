package fonts

import (
	"strconv"
	"strings"
)

// Weight 是 CSS 字重，100–900。
type Weight int

const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

// Bold 表示该字重应使用粗体字形。
func (w Weight) Bold() bool { return w >= WeightSemiBold }

// Style 是从 fontWeight 字符串中解析出的字重与斜体标记。
type Style struct {
	Weight Weight
	Italic bool
}

// ParseStyle 接受 "normal"、"bold"、"600"、"bold italic"、"light" 等写法，无法识别时按 normal。
func ParseStyle(s string) Style {
	style := Style{Weight: WeightNormal}
	for _, field := range strings.Fields(strings.ToLower(s)) {
		switch field {
		case "italic", "oblique":
			style.Italic = true
		case "thin", "hairline":
			style.Weight = WeightThin
		case "extralight", "ultralight":
			style.Weight = WeightExtraLight
		case "light":
			style.Weight = WeightLight
		case "normal", "regular", "book":
			style.Weight = WeightNormal
		case "medium":
			style.Weight = WeightMedium
		case "semibold", "demibold":
			style.Weight = WeightSemiBold
		case "bold", "bolder":
			style.Weight = WeightBold
		case "extrabold", "ultrabold":
			style.Weight = WeightExtraBold
		case "black", "heavy":
			style.Weight = WeightBlack
		default:
			if n, err := strconv.Atoi(field); err == nil && n >= 1 && n <= 1000 {
				style.Weight = Weight((n + 50) / 100 * 100)
			}
		}
	}
	return style
}
