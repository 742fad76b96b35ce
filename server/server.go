// Package server 通过 HTTP 提供文本渲染服务。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ByLCY/textimage"
	"github.com/ByLCY/textimage/binding"
	"github.com/ByLCY/textimage/config"
	"github.com/ByLCY/textimage/debugsink"
	"github.com/ByLCY/textimage/dsl"
	"github.com/ByLCY/textimage/fonts"
	"github.com/ByLCY/textimage/imageenc"
	"github.com/ByLCY/textimage/layout"
	"github.com/ByLCY/textimage/logging"
)

// MaxBodyBytes 限制 POST 请求体大小。
const MaxBodyBytes = 1 << 20

// 未设置 Server.MaxDimension / MaxPixels 时使用的上限。
const (
	DefaultMaxDimension = 4096
	DefaultMaxPixels    = 4096 * 4096
)

// ErrForbiddenOption 表示请求试图设置只允许服务端配置的选项。
var ErrForbiddenOption = errors.New("请求不允许设置该选项")

// Info 描述服务自身。
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Author  string `json:"author"`
}

// Server 持有处理请求所需的依赖。
type Server struct {
	Info    Info
	Presets *dsl.File
	// Snapshots 非空时调试快照写入数据库，并开放 /api/v1/snapshots。
	Snapshots *debugsink.SQLiteSink
	// NewBackend 按名称创建后端，默认 textimage.NewBackend。
	NewBackend func(name string) (layout.Backend, error)
	Now        func() time.Time
	// MaxDimension 限制 maxWidth、customHeight、margin、fontSize 与 lineHeight 的取值。
	MaxDimension int
	// MaxPixels 限制单张画布及中间表面的像素面积。
	MaxPixels int
}

// RenderRequest 是 POST /api/v1/render 的请求体。
type RenderRequest struct {
	Text    string           `json:"text"`
	Format  string           `json:"format,omitempty"`
	Preset  string           `json:"preset,omitempty"`
	Backend string           `json:"backend,omitempty"`
	DataURL bool             `json:"dataUrl,omitempty"`
	Data    any              `json:"data,omitempty"`
	Options config.Overrides `json:"options"`
}

// FormatInfo 是 /api/v1/formats 的一项。
type FormatInfo struct {
	Name      imageenc.Format `json:"name"`
	MIMEType  string          `json:"mimeType"`
	Available bool            `json:"available"`
}

// reserved 是 GET /api/v1/render 中不属于渲染选项的查询参数。
var reserved = map[string]bool{"text": true, "format": true, "preset": true, "backend": true, "dataurl": true}

// Router 创建并注册全部路由。
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API routes to the given mux router
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Use(accessLog)
	r.HandleFunc("/api/v1/render", s.renderQueryHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/render", s.renderJSONHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/server", s.serverInfoHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/formats", s.formatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/presets", s.presetsHandler).Methods(http.MethodGet)
	if s.Snapshots != nil {
		r.HandleFunc("/api/v1/snapshots", s.listSnapshotsHandler).Methods(http.MethodGet)
		r.HandleFunc("/api/v1/snapshots/{id:[0-9]+}.png", s.snapshotHandler).Methods(http.MethodGet)
	}
}

func (s *Server) renderQueryHandler(writer http.ResponseWriter, request *http.Request) {
	q := request.URL.Query()
	req := RenderRequest{
		Text:    q.Get("text"),
		Format:  q.Get("format"),
		Preset:  q.Get("preset"),
		Backend: q.Get("backend"),
	}
	req.DataURL, _ = strconv.ParseBool(q.Get("dataUrl"))
	for key, values := range q {
		if reserved[strings.ToLower(key)] || len(values) == 0 {
			continue
		}
		if err := req.Options.Set(key, values[len(values)-1]); err != nil {
			WriteError(writer, http.StatusBadRequest, err.Error())
			return
		}
	}
	s.render(writer, request, req)
}

func (s *Server) renderJSONHandler(writer http.ResponseWriter, request *http.Request) {
	var req RenderRequest
	body := http.MaxBytesReader(writer, request.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(writer, http.StatusBadRequest, fmt.Sprintf("解析请求体失败: %v", err))
		return
	}
	s.render(writer, request, req)
}

func (s *Server) render(writer http.ResponseWriter, request *http.Request, req RenderRequest) {
	if err := s.checkRequestOptions(req.Options); err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	opts, text, err := s.resolvePreset(req.Preset)
	if err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	opts = opts.Merge(req.Options)
	if err := s.checkLimits(opts); err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	if req.Text != "" {
		text = req.Text
	}
	text = binding.Interpolate(text, req.Data)

	format, err := s.format(req.Format)
	if err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	newBackend := s.NewBackend
	if newBackend == nil {
		newBackend = textimage.NewBackend
	}
	if _, err := newBackend(req.Backend); err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}

	g := textimage.Generator{
		NewBackend: func() layout.Backend {
			b, _ := newBackend(req.Backend)
			return b
		},
		Now:       s.Now,
		MaxPixels: s.maxPixels(),
	}
	if s.Snapshots != nil {
		g.Sink = s.Snapshots
	}

	if req.DataURL {
		url, err := g.GenerateSync(text, opts)
		if err != nil {
			WriteError(writer, statusFor(err), err.Error())
			return
		}
		WriteOk(writer, map[string]string{"dataUrl": url})
		return
	}

	img, err := g.Generate(request.Context(), text, opts)
	if err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	data, err := img.Encode(format)
	if err != nil {
		WriteError(writer, statusFor(err), err.Error())
		return
	}
	if img.Clipped() {
		writer.Header().Set("X-Text-Clipped", "true")
	}
	WriteImage(writer, format.MIMEType(), data)
}

// checkRequestOptions 拒绝会让客户端读写服务器文件系统的选项：debugFilename、非内置的 fontPath，
// 以及未配置快照数据库时的 debug。
func (s *Server) checkRequestOptions(o config.Overrides) error {
	switch {
	case o.DebugFilename != nil:
		return fmt.Errorf("%w: debugFilename", ErrForbiddenOption)
	case o.FontPath != nil && !strings.HasPrefix(*o.FontPath, fonts.BuiltinPrefix):
		return fmt.Errorf("%w: fontPath 只能使用 %s 内置字体", ErrForbiddenOption, fonts.BuiltinPrefix)
	case o.Debug != nil && *o.Debug && s.Snapshots == nil:
		return fmt.Errorf("%w: debug 需要服务端启用 --snapshots", ErrForbiddenOption)
	}
	return nil
}

// checkLimits 在分配任何表面之前检查尺寸上限。
func (s *Server) checkLimits(o config.Overrides) error {
	cfg, err := config.Build(o)
	if err != nil {
		return err
	}
	limit := s.MaxDimension
	if limit <= 0 {
		limit = DefaultMaxDimension
	}
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"maxWidth", float64(cfg.MaxWidth)},
		{"customHeight", float64(cfg.CustomHeight)},
		{"margin", float64(cfg.Margin)},
		{"fontSize", cfg.FontSize},
		{"lineHeight", cfg.LineHeight},
	} {
		if v.value > float64(limit) {
			return fmt.Errorf("%w: %s=%g 超过上限 %d", config.ErrTooLarge, v.name, v.value, limit)
		}
	}
	if config.ExceedsPixels(float64(cfg.MaxWidth), float64(cfg.CustomHeight), s.maxPixels()) {
		return fmt.Errorf("%w: %dx%d 超过 %d 像素", config.ErrTooLarge, cfg.MaxWidth, cfg.CustomHeight, s.maxPixels())
	}
	return nil
}

func (s *Server) maxPixels() int {
	if s.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return s.MaxPixels
}

func (s *Server) resolvePreset(name string) (config.Overrides, string, error) {
	if name == "" {
		return config.Overrides{}, "", nil
	}
	if s.Presets == nil {
		return config.Overrides{}, "", fmt.Errorf("%w: %q", dsl.ErrPresetNotFound, name)
	}
	o, text, err := s.Presets.Resolve(name)
	if err != nil {
		return config.Overrides{}, "", err
	}
	if text == nil {
		return o, "", nil
	}
	return o, *text, nil
}

// format 未指定时优先使用默认格式，当前构建不支持时退回 PNG。
func (s *Server) format(name string) (imageenc.Format, error) {
	if name == "" {
		if imageenc.Available(textimage.DefaultFormat) {
			return textimage.DefaultFormat, nil
		}
		return imageenc.PNG, nil
	}
	return imageenc.ParseFormat(name)
}

func (s *Server) serverInfoHandler(writer http.ResponseWriter, request *http.Request) {
	WriteOk(writer, s.Info)
}

func (s *Server) formatsHandler(writer http.ResponseWriter, request *http.Request) {
	var out []FormatInfo
	for _, f := range imageenc.Formats() {
		out = append(out, FormatInfo{Name: f, MIMEType: f.MIMEType(), Available: imageenc.Available(f)})
	}
	WriteOk(writer, out)
}

func (s *Server) presetsHandler(writer http.ResponseWriter, request *http.Request) {
	names := []string{}
	if s.Presets != nil {
		names = s.Presets.Names()
	}
	WriteOk(writer, names)
}

func (s *Server) listSnapshotsHandler(writer http.ResponseWriter, request *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(request.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	list, err := s.Snapshots.List(request.Context(), limit)
	if err != nil {
		WriteError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	WriteOk(writer, list)
}

func (s *Server) snapshotHandler(writer http.ResponseWriter, request *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(request)["id"], 10, 64)
	snap, err := s.Snapshots.Get(request.Context(), id)
	if err != nil {
		WriteError(writer, http.StatusNotFound, err.Error())
		return
	}
	WriteImage(writer, imageenc.PNG.MIMEType(), snap.Data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrTooLarge),
		errors.Is(err, ErrForbiddenOption),
		errors.Is(err, imageenc.ErrUnsupportedFormat),
		errors.Is(err, dsl.ErrPresetNotFound):
		return http.StatusBadRequest
	case errors.Is(err, imageenc.ErrFormatUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Logger().Info("request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}
