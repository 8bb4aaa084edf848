package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/logger"
)

// ErrorHandlerMiddleware recovers from panics and writes the JSON error
// envelope.
func ErrorHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctx := r.Context()
			logger.GetLogger().ErrorCtx(logger.EventError, "panic recovered", map[string]any{
				"panic":  fmt.Sprint(rec),
				"path":   r.URL.Path,
				"method": r.Method,
				"stack":  string(debug.Stack()),
			}, domainerrors.ErrInternal.Code, logger.RequestID(ctx), logger.Actor(ctx))

			if de, ok := rec.(domainerrors.DomainError); ok {
				writeJSONError(w, http.StatusBadRequest, de)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, domainerrors.ErrInternal)
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, derr domainerrors.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"success": false,
		"error":   derr.Message,
		"code":    derr.Code,
	}
	if len(derr.Details) > 0 {
		body["details"] = derr.Details
	}
	_ = json.NewEncoder(w).Encode(body)
}
