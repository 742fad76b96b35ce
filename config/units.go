package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit 表示长度值原始书写的单位。
type Unit int

const (
	UnitPX Unit = iota // 无单位时按 px 处理
	UnitPT
)

// Length 保留数值与单位。
type Length struct {
	Value float64
	Unit  Unit
}

// Pixels 换算为像素（1pt = 1/72in，1px = 1/96in）。
func (l Length) Pixels() float64 {
	if l.Unit == UnitPT {
		return l.Value * 96 / 72
	}
	return l.Value
}

// ParseRawLength 解析 "18"、"18px"、"13.5pt" 形式的长度，保留单位。
func ParseRawLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	unit := UnitPX
	switch {
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
	case strings.HasSuffix(v, "pt"):
		v = strings.TrimSuffix(v, "pt")
		unit = UnitPT
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, fmt.Errorf("%w: 长度 %q 无法解析", ErrInvalidConfig, value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseLength 解析长度并换算为像素。
func ParseLength(value string) (float64, error) {
	l, err := ParseRawLength(value)
	if err != nil {
		return 0, err
	}
	return l.Pixels(), nil
}
