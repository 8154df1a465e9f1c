package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// maxCapturedBody bounds how much of an error response is kept for logging
const maxCapturedBody = 4 << 10

// errCapture keeps the body of error responses so the log line can carry it
type errCapture struct {
	chimiddleware.WrapResponseWriter
	buf bytes.Buffer
}

// Write buffers error bodies. It must sit inside any compressing writer.
func (e *errCapture) Write(b []byte) (int, error) {
	if e.Status() >= http.StatusBadRequest && e.buf.Len() < maxCapturedBody {
		e.buf.Write(b[:min(len(b), maxCapturedBody-e.buf.Len())])
	}
	return e.WrapResponseWriter.Write(b)
}

// errorMessage pulls the "error" field out of a JSON error body
func errorMessage(body []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil {
		return obj.Error
	}
	return ""
}

// Logger returns a request logging middleware.
// Request bodies are never logged; they may carry wallet passwords.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ec := &errCapture{WrapResponseWriter: chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)}
			start := time.Now()

			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				r = r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, reqID))
			}

			defer func() {
				status := ec.Status()
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"status", status,
					"bytes", ec.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				}
				if msg := errorMessage(ec.buf.Bytes()); msg != "" {
					attrs = append(attrs, "error", msg)
				}

				l := log.WithContext(r.Context())
				switch {
				case status >= http.StatusInternalServerError:
					l.Error("HTTP request", attrs...)
				case status >= http.StatusBadRequest:
					l.Warn("HTTP request", attrs...)
				default:
					l.Info("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(ec, r)
		})
	}
}
