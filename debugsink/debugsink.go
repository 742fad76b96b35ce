// Package debugsink 保存调试用的渲染快照。
package debugsink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/textimage/logging"
)

// Sink 持久化一张已编码的图片。
type Sink interface {
	Persist(ctx context.Context, data []byte, name string) error
}

// DefaultName 以 UTC 紧凑 ISO 时间戳命名快照，例如 20261018T123456789Z.png。
func DefaultName(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format("20060102T150405.000Z"), ".", "") + ".png"
}

// FileSink 把快照写到 Dir 目录，Dir 为空时写到当前工作目录。
type FileSink struct {
	Dir string
}

func (s FileSink) Persist(ctx context.Context, data []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := name
	if !filepath.IsAbs(name) && s.Dir != "" {
		path = filepath.Join(s.Dir, name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入调试快照 %s 失败: %w", path, err)
	}
	logging.Logger().Info("debug snapshot written", "path", path, "bytes", len(data))
	return nil
}

// Func 把普通函数适配为 Sink。
type Func func(ctx context.Context, data []byte, name string) error

func (f Func) Persist(ctx context.Context, data []byte, name string) error {
	return f(ctx, data, name)
}
