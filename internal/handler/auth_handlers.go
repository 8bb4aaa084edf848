package handler

import (
	"errors"
	"net/http"
	"strings"

	"store-it/internal/auth"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/presentation/http/validation"
)

type signUpRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	AccountID string `json:"accountId"`
	Password  string `json:"password"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	details := map[string]any{}
	if !validation.ValidateEmail(req.Email) {
		details["email"] = "invalid email address"
	}
	if !validation.ValidateFullName(req.FullName) {
		details["fullName"] = map[string]any{"min": validation.MinFullNameLength, "max": validation.MaxFullNameLength}
	}
	if len(details) > 0 {
		writeValidationError(w, "Invalid sign up form", details)
		return
	}

	accountID, err := h.auth.CreateAccount(r.Context(), req.Email, req.FullName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Verification code sent", map[string]string{"accountId": accountID})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	if !validation.ValidateEmail(req.Email) {
		writeValidationError(w, "Invalid email address", map[string]any{"email": req.Email})
		return
	}

	accountID, err := h.auth.SignIn(r.Context(), req.Email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		// clients branch on the null account id to offer sign up
		writeJSONResponse(w, http.StatusNotFound, map[string]any{
			"success":   false,
			"accountId": nil,
			"error":     domainerrors.ErrUserNotFound.Message,
			"code":      domainerrors.ErrUserNotFound.Code,
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Verification code sent", map[string]string{"accountId": accountID})
}

func (h *Handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	if !validation.ValidateEmail(req.Email) {
		writeValidationError(w, "Invalid email address", map[string]any{"email": req.Email})
		return
	}
	accountID, err := h.auth.SendEmailOTP(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Verification code sent", map[string]string{"accountId": accountID})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	if strings.TrimSpace(req.AccountID) == "" || !validation.ValidateOTP(req.Password) {
		writeValidationError(w, "An account id and a 6 digit code are required", nil)
		return
	}

	sess, err := h.auth.VerifySecret(r.Context(), req.AccountID, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.sessions.Put(w, sess); err != nil {
		writeDomainError(w, r, domainerrors.Wrap(domainerrors.ErrInternal, err))
		return
	}
	writeSuccess(w, http.StatusOK, "Signed in", map[string]string{"sessionId": sess.ID})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	secret, _ := auth.Secret(r)
	redirect := h.auth.SignOut(r.Context(), secret)
	h.sessions.Clear(w)
	writeSuccess(w, http.StatusOK, "Signed out", map[string]string{"redirect": redirect})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", auth.CurrentUser(r.Context()))
}
