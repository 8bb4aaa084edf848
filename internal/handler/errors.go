package handler

import (
	"net/http"

	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/logger"
)

const (
	invalidRequestBody = "Invalid request body"
	invalidFileID      = "Invalid file id"
)

var statusByCode = map[string]int{
	domainerrors.ErrValidation.Code:       http.StatusBadRequest,
	domainerrors.ErrNoSession.Code:        http.StatusUnauthorized,
	domainerrors.ErrUserNotFound.Code:     http.StatusNotFound,
	domainerrors.ErrInvalidOTP.Code:       http.StatusUnauthorized,
	domainerrors.ErrFileNotFound.Code:     http.StatusNotFound,
	domainerrors.ErrFileTooLarge.Code:     http.StatusRequestEntityTooLarge,
	domainerrors.ErrInsufficientAuth.Code: http.StatusForbidden,
	domainerrors.ErrBackend.Code:          http.StatusBadGateway,
	domainerrors.ErrInternal.Code:         http.StatusInternalServerError,
}

// statusFor maps a domain code to its HTTP status.
func statusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func writeErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	writeErrorWithCodeDetails(w, status, code, message, nil)
}

func writeErrorWithCodeDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSONResponse(w, status, Response{Success: false, Error: message, Code: code, Details: details})
}

func writeValidationError(w http.ResponseWriter, message string, details map[string]any) {
	writeErrorWithCodeDetails(w, http.StatusBadRequest, domainerrors.ErrValidation.Code, message, details)
}

// writeDomainError renders err. Anything outside the catalog is logged and
// reported as an internal error, so backend text never reaches clients.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domainerrors.As(err)
	if !ok {
		ctx := r.Context()
		logger.GetLogger().ErrorCtx(logger.EventError, "unhandled error", map[string]any{
			"error": err.Error(), "path": r.URL.Path,
		}, domainerrors.ErrInternal.Code, logger.RequestID(ctx), logger.Actor(ctx))
		de = domainerrors.ErrInternal
	}
	writeErrorWithCodeDetails(w, statusFor(de.Code), de.Code, de.Message, de.Details)
}
