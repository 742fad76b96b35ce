package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/textimage"
	"github.com/ByLCY/textimage/binding"
	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/dsl"
	"github.com/ByLCY/textimage/imageenc"
	"github.com/ByLCY/textimage/layout"
)

type renderOptions struct {
	presetFile  string
	preset      string
	dataJSON    string
	backend     string
	output      string
	format      string
	dataURL     bool
	debugLayout string
	flags       *pflag.FlagSet
}

// optionFlags 列出可直接通过命令行覆盖的渲染选项。
var optionFlags = []struct {
	name, usage string
}{
	{"bg-color", "背景色，例如 #fff 或 rgba(0,0,0,0.5)"},
	{"custom-height", "固定画布高度（px/pt），0 表示自动"},
	{"debug-filename", "调试快照文件名"},
	{"font-family", "字体族"},
	{"font-path", "字体文件路径，或 builtin:goregular 等内置字体"},
	{"font-size", "字号（px/pt）"},
	{"font-weight", "字重，例如 normal、bold、600"},
	{"line-height", "行高（px/pt）"},
	{"margin", "四边边距（px/pt）"},
	{"max-width", "画布宽度（px/pt）"},
	{"text-align", "left/center/right/end"},
	{"text-color", "文字颜色"},
	{"vertical-align", "top/center，仅在指定 custom-height 时生效"},
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "渲染文本，未给出文本时从标准输入读取",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), opts, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.presetFile, "presets", "", "预设文件路径")
	fs.StringVarP(&opts.preset, "preset", "p", "", "使用的预设名称")
	fs.StringVar(&opts.dataJSON, "data", "", "绑定到 ${...} 占位符的 JSON 数据")
	fs.StringVar(&opts.backend, "backend", "raster", "绘制后端: "+strings.Join(textimage.Backends, "|"))
	fs.StringVarP(&opts.output, "out", "o", "", "输出文件路径，- 表示标准输出")
	fs.StringVar(&opts.format, "format", "", "输出格式，默认由输出文件扩展名推断")
	fs.BoolVar(&opts.dataURL, "data-url", false, "输出 PNG data URL 而不是图片文件")
	fs.StringVar(&opts.debugLayout, "debug-layout", "", "排版调试 JSON 输出路径")
	registerOptionFlags(fs)
	opts.flags = fs
	return cmd
}

func registerOptionFlags(fs *pflag.FlagSet) {
	for _, f := range optionFlags {
		fs.String(f.name, "", f.usage)
	}
	fs.Bool("debug", false, "把渲染结果另存为 PNG 调试快照")
}

// overridesFromFlags 只收集用户显式设置过的选项。
func overridesFromFlags(fs *pflag.FlagSet) (config.Overrides, error) {
	var o config.Overrides
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil || !isOptionFlag(f.Name) {
			return
		}
		err = o.Set(f.Name, f.Value.String())
	})
	return o, err
}

func isOptionFlag(name string) bool {
	if name == "debug" {
		return true
	}
	for _, f := range optionFlags {
		if f.name == name {
			return true
		}
	}
	return false
}

func runRender(ctx context.Context, opts *renderOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	overrides, text, err := loadPreset(opts.presetFile, opts.preset)
	if err != nil {
		return err
	}
	flagOverrides, err := overridesFromFlags(opts.flags)
	if err != nil {
		return err
	}
	overrides = overrides.Merge(flagOverrides)

	switch {
	case len(args) == 1 && args[0] == "-":
		text, err = readAll(stdin)
	case len(args) > 0:
		text = strings.Join(args, " ")
	case text == "":
		text, err = readAll(stdin)
	}
	if err != nil {
		return err
	}

	if opts.dataJSON != "" {
		data, err := binding.DecodeJSON([]byte(opts.dataJSON))
		if err != nil {
			return err
		}
		text = binding.Interpolate(text, data)
	}

	if _, err := textimage.NewBackend(opts.backend); err != nil {
		return err
	}
	g := textimage.Generator{NewBackend: func() layout.Backend {
		b, _ := textimage.NewBackend(opts.backend)
		return b
	}}

	if opts.dataURL {
		url, err := g.GenerateSync(text, overrides)
		if err != nil {
			return fmt.Errorf("生成图片失败: %w", err)
		}
		_, err = fmt.Fprintln(stdout, url)
		return err
	}

	img, err := g.Generate(ctx, text, overrides)
	if err != nil {
		return fmt.Errorf("生成图片失败: %w", err)
	}
	if opts.debugLayout != "" {
		if err := writeDebug(text, img.Block(), opts.debugLayout); err != nil {
			return err
		}
	}

	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	data, err := img.Encode(format)
	if err != nil {
		return fmt.Errorf("编码图片失败: %w", err)
	}

	size := img.RGBA().Bounds().Size()
	if img.Clipped() {
		color.New(color.FgYellow).Fprintf(stderr, "警告: 文本超出 custom-height，已被裁剪\n")
	}
	if opts.output == "" || opts.output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("写入图片文件失败: %w", err)
	}
	color.New(color.FgGreen).Fprintf(stderr, "已生成图片：%s (%dx%d, %s)\n", opts.output, size.X, size.Y, format)
	return nil
}

func loadPreset(path, name string) (config.Overrides, string, error) {
	if name == "" {
		return config.Overrides{}, "", nil
	}
	if path == "" {
		return config.Overrides{}, "", fmt.Errorf("使用 --preset 时必须通过 --presets 指定预设文件")
	}
	file, err := os.Open(path)
	if err != nil {
		return config.Overrides{}, "", fmt.Errorf("无法打开预设文件 %s: %w", path, err)
	}
	defer file.Close()

	presets, err := dsl.Parse(file)
	if err != nil {
		return config.Overrides{}, "", fmt.Errorf("解析预设文件失败: %w", err)
	}
	o, text, err := presets.Resolve(name)
	if err != nil {
		return config.Overrides{}, "", err
	}
	if text == nil {
		return o, "", nil
	}
	return o, *text, nil
}

// outputFormat 优先使用 --format，其次是输出文件扩展名，最后是默认格式（不可用时退回 PNG）。
func outputFormat(name, output string) (imageenc.Format, error) {
	if name != "" {
		return imageenc.ParseFormat(name)
	}
	if ext := filepath.Ext(output); ext != "" && output != "-" {
		return imageenc.ParseFormat(ext)
	}
	if imageenc.Available(textimage.DefaultFormat) {
		return textimage.DefaultFormat, nil
	}
	return imageenc.PNG, nil
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取标准输入失败: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func writeDebug(text string, block *layout.Block, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(text, block, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
