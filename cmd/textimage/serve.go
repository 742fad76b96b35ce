package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ByLCY/textimage/debugsink"
	"github.com/ByLCY/textimage/dsl"
	"github.com/ByLCY/textimage/logging"
	"github.com/ByLCY/textimage/server"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		presetFile string
		snapshotDB string
		logDir     string
		maxDim     int
		maxPixels  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 渲染服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				level = slog.LevelDebug
			}
			logFile, err := logging.Setup("textimage", logDir, level)
			if err != nil {
				return err
			}
			defer logFile.Close()

			srv := &server.Server{
				Info:         server.Info{Name: "textimage", Version: AppVersion, Author: "ByLCY"},
				MaxDimension: maxDim,
				MaxPixels:    maxPixels,
			}
			if presetFile != "" {
				file, err := os.Open(presetFile)
				if err != nil {
					return fmt.Errorf("无法打开预设文件 %s: %w", presetFile, err)
				}
				srv.Presets, err = dsl.Parse(file)
				file.Close()
				if err != nil {
					return fmt.Errorf("解析预设文件失败: %w", err)
				}
			}
			if snapshotDB != "" {
				sink, err := debugsink.OpenSQLite(snapshotDB)
				if err != nil {
					return err
				}
				defer sink.Close()
				srv.Snapshots = sink
			}

			httpServer := &http.Server{
				Addr:              fmt.Sprintf("0.0.0.0:%d", port),
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			color.Blue("\nclick link to try it: http://localhost:%d/api/v1/render?text=hello&format=png\n", port)
			log.Printf("listening on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "P", 8080, "监听端口")
	cmd.Flags().StringVar(&presetFile, "presets", "", "预设文件路径")
	cmd.Flags().StringVar(&snapshotDB, "snapshots", "", "调试快照 sqlite 数据库路径")
	cmd.Flags().StringVar(&logDir, "log-dir", ".log", "日志目录")
	cmd.Flags().IntVar(&maxDim, "max-dimension", server.DefaultMaxDimension, "单个尺寸参数的上限（像素）")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", server.DefaultMaxPixels, "单张画布的像素上限")
	return cmd
}
