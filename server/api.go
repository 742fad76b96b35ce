package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ByLCY/textimage/logging"
)

// ApiResult 是统一的 JSON 响应格式。
type ApiResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Ok(data any) ApiResult {
	return ApiResult{Code: 0, Message: "success", Data: data}
}

func Error(code int, message string) ApiResult {
	return ApiResult{Code: code, Message: message}
}

// WriteOk 以 JSON 写出成功结果。
func WriteOk(writer http.ResponseWriter, data any) {
	writer.Header().Set("Content-Type", "application/json")
	result, err := json.Marshal(Ok(data))
	if err != nil {
		logging.Logger().Error("marshal success response", "err", err)
		errorJson, _ := json.Marshal(Error(http.StatusInternalServerError, "Internal server error during response marshalling"))
		writer.WriteHeader(http.StatusInternalServerError)
		_, _ = writer.Write(errorJson)
		return
	}
	_, _ = writer.Write(result)
}

// WriteError 以 JSON 写出错误结果，code 同时作为 HTTP 状态码。
func WriteError(writer http.ResponseWriter, code int, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	result, err := json.Marshal(Error(code, message))
	if err != nil {
		logging.Logger().Error("marshal error response", "err", err)
		fallback, _ := json.Marshal(Error(http.StatusInternalServerError, "Internal server error"))
		_, _ = writer.Write(fallback)
		return
	}
	_, _ = writer.Write(result)
}

// WriteImage 写出已编码的图片。
func WriteImage(writer http.ResponseWriter, contentType string, data []byte) {
	writer.Header().Set("Content-Type", contentType)
	writer.Header().Set("Content-Length", strconv.Itoa(len(data)))
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(data)
}
