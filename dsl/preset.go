package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/textimage/config"
)

// ErrPresetNotFound 表示文件中没有指定名称的预设。
var ErrPresetNotFound = errors.New("预设不存在")

// TextKey 是预设中默认文本模板的键名。
const TextKey = "text"

// Find 按名称查找预设，名称区分大小写。
func (f *File) Find(name string) (*Preset, bool) {
	if f == nil {
		return nil, false
	}
	for _, p := range f.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Names 返回文件中全部预设名称。
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for _, p := range f.Presets {
		names = append(names, p.Name)
	}
	return names
}

// Overrides 只转换预设自身的条目，不处理 extends。
// 返回的 text 为 nil 表示预设没有给出默认文本。
func (p *Preset) Overrides() (config.Overrides, *string, error) {
	var (
		o    config.Overrides
		text *string
	)
	for _, a := range p.Entries {
		if strings.EqualFold(a.Key, TextKey) {
			v := a.Value.Text()
			text = &v
			continue
		}
		if err := o.Set(a.Key, a.Value.Text()); err != nil {
			return config.Overrides{}, nil, fmt.Errorf("预设 %s 第 %d 行: %w", p.Name, a.Pos.Line, err)
		}
	}
	return o, text, nil
}

// Resolve 沿 extends 链合并预设，子预设覆盖父预设。
func (f *File) Resolve(name string) (config.Overrides, *string, error) {
	return f.resolve(name, map[string]bool{})
}

func (f *File) resolve(name string, seen map[string]bool) (config.Overrides, *string, error) {
	p, ok := f.Find(name)
	if !ok {
		return config.Overrides{}, nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if seen[name] {
		return config.Overrides{}, nil, fmt.Errorf("%w: 预设 %s 存在循环继承", config.ErrInvalidConfig, name)
	}
	seen[name] = true

	own, text, err := p.Overrides()
	if err != nil {
		return config.Overrides{}, nil, err
	}
	if p.Extends == "" {
		return own, text, nil
	}
	base, baseText, err := f.resolve(p.Extends, seen)
	if err != nil {
		return config.Overrides{}, nil, fmt.Errorf("预设 %s 继承 %s 失败: %w", p.Name, p.Extends, err)
	}
	if text == nil {
		text = baseText
	}
	return base.Merge(own), text, nil
}
