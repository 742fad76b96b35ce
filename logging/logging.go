// Package logging 提供 textimage 各包共享的日志出口。
//
// 库代码默认不输出任何日志；命令行或服务进程通过 SetLogger 打开。
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 替换全局日志器；传入 nil 恢复静默。
//
// 使用的级别：
//   - [slog.LevelDebug]: 两遍排版的尺寸、字体注册
//   - [slog.LevelWarn]: 内容超出 customHeight 将被裁剪
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器，可并发调用。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

type prefixedWriter struct {
	service string
	out     io.Writer
	now     func() time.Time
}

func (w *prefixedWriter) Write(p []byte) (int, error) {
	prefix := fmt.Sprintf("%s %s ", w.now().UTC().Format(time.RFC3339), w.service)
	lines := bytes.Split(p, []byte{'\n'})

	var buf bytes.Buffer
	for i, line := range lines {
		if len(line) == 0 && i == len(lines)-1 {
			break
		}
		buf.WriteString(prefix)
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return len(p), nil
	}
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Setup 让标准库 log 与 slog 同时写到 stdout 和 <logDir>/<service>.log，每行带时间与服务名前缀。
// 调用方负责关闭返回的文件。
func Setup(service, logDir string, level slog.Level) (*os.File, error) {
	if logDir == "" {
		logDir = ".log"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录 %s 失败: %w", logDir, err)
	}
	path := filepath.Join(logDir, service+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件 %s 失败: %w", path, err)
	}
	w := &prefixedWriter{service: service, out: io.MultiWriter(os.Stdout, file), now: time.Now}
	log.SetOutput(w)
	log.SetFlags(0)
	log.SetPrefix("")
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// 时间已由前缀给出
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})))
	return file, nil
}
