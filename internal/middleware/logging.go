package middleware

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"store-it/internal/logger"
)

// LoggingMiddleware logs each request and its response with timing.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		// actor is set further down the chain; read it back afterwards
		holder := &actorHolder{}
		ctx := withActorHolder(r.Context(), holder)
		requestID := logger.RequestID(ctx)

		l := logger.GetLogger()
		l.InfoCtx(logger.EventAPIRequest, fmt.Sprintf("API request: %s %s", r.Method, r.URL.Path), map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"user_agent":  r.UserAgent(),
			"remote_addr": getClientIP(r),
		}, "", requestID, "")

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		l.LogAPIResponse(r.Method, r.URL.Path, wrapper.statusCode, time.Since(start), requestID, holder.actor)
	})
}

// responseWrapper captures the status code. It keeps websocket upgrades
// and streaming working by passing Hijack and Flush through.
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
