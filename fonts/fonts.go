// Package fonts 提供内置字体（Go 字体家族）以及按路径加载字体文件的入口。
package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix 标记内置字体路径，例如 "builtin:gomono"。
const BuiltinPrefix = "builtin:"

var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
}

// Names 返回全部内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load 读取字体数据：path 可写为 "builtin:gomono" 或文件系统路径。
func Load(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		data, ok := builtin[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 %s%s", BuiltinPrefix, name)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

var monoFamilies = map[string]bool{
	"monospace":   true,
	"courier":     true,
	"courier new": true,
	"menlo":       true,
	"consolas":    true,
	"go mono":     true,
}

// Default 为未注册的 family 选择内置字体：等宽类 family 用 Go Mono，其余用 Go 无衬线字体。
func Default(family string, bold, italic bool) []byte {
	if monoFamilies[strings.ToLower(strings.TrimSpace(family))] {
		if bold {
			return gomonobold.TTF
		}
		return gomono.TTF
	}
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
