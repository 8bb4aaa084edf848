package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"store-it/internal/application/usecases"
	"store-it/internal/auth"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/logger"
	"store-it/internal/presentation/http/validation"
)

const (
	// multipart parts above this size spill to temporary files
	multipartMemory      = 32 << 20
	defaultActivityLimit = 50
)

type renameRequest struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Path      string `json:"path"`
}

type shareRequest struct {
	Emails []string `json:"emails"`
	Path   string   `json:"path"`
}

type uploadItem struct {
	Name  string         `json:"name"`
	File  *entities.File `json:"file,omitempty"`
	Error string         `json:"error,omitempty"`
	Code  string         `json:"code,omitempty"`
}

func fileID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	return id, id != "" && !strings.ContainsAny(id, `/\`)
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	q, details := validation.ParseListQuery(r.URL.Query())
	if len(details) > 0 {
		writeValidationError(w, "Invalid list parameters", details)
		return
	}
	list, err := h.fileController.List(r.Context(), auth.CurrentUser(r.Context()), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", list)
}

func (h *Handler) uploadFiles(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErrorWithCode(w, http.StatusRequestEntityTooLarge, domainerrors.ErrFileTooLarge.Code, "Upload is too large")
			return
		}
		writeValidationError(w, "Expected a multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	path := r.FormValue("path")
	if !validation.ValidatePath(path) {
		writeValidationError(w, "Invalid path", map[string]any{"path": path})
		return
	}
	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		writeValidationError(w, "No file provided", nil)
		return
	}

	inputs := make([]usecases.UploadInput, 0, len(parts))
	for _, fh := range parts {
		inputs = append(inputs, usecases.UploadInput{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	results := h.files.UploadMany(r.Context(), auth.CurrentUser(r.Context()), inputs, path)
	items := make([]uploadItem, len(results))
	var (
		uploaded int
		firstErr *domainerrors.DomainError
	)
	for i, res := range results {
		items[i] = uploadItem{Name: res.Name, File: res.File}
		if res.Err == nil {
			uploaded++
			continue
		}
		de, ok := domainerrors.As(res.Err)
		if !ok {
			logger.GetLogger().ErrorCtx(logger.EventError, "upload failed", map[string]any{
				"name": res.Name, "error": res.Err.Error(),
			}, domainerrors.ErrInternal.Code, logger.RequestID(r.Context()), logger.Actor(r.Context()))
			de = domainerrors.ErrInternal
		}
		items[i].Error, items[i].Code = de.Message, de.Code
		if firstErr == nil {
			firstErr = &de
		}
	}

	switch {
	case firstErr == nil:
		writeSuccess(w, http.StatusCreated, "Files uploaded", items)
	case uploaded > 0:
		writeJSONResponse(w, http.StatusCreated, Response{
			Success: true,
			Message: strconv.Itoa(len(items)-uploaded) + " of " + strconv.Itoa(len(items)) + " files failed to upload",
			Data:    items,
		})
	default:
		writeJSONResponse(w, statusFor(firstErr.Code), Response{
			Success: false,
			Error:   firstErr.Message,
			Code:    firstErr.Code,
			Data:    items,
		})
	}
}

func (h *Handler) spaceUsage(w http.ResponseWriter, r *http.Request) {
	overview, err := h.fileController.Space(r.Context(), auth.CurrentUser(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", overview)
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	f, err := h.files.Get(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", f)
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	url, err := h.files.DownloadURL(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Handler) renameFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	if !validation.ValidateFileName(req.Name) || strings.ContainsAny(req.Extension, `/\`) {
		writeValidationError(w, "Invalid file name", map[string]any{"name": req.Name, "extension": req.Extension})
		return
	}
	if !validation.ValidatePath(req.Path) {
		writeValidationError(w, "Invalid path", map[string]any{"path": req.Path})
		return
	}

	f, err := h.files.Rename(r.Context(), auth.CurrentUser(r.Context()), id, req.Name, req.Extension, req.Path)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "File renamed", f)
}

func (h *Handler) shareFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, invalidRequestBody, nil)
		return
	}
	if details := validation.ValidateEmails(req.Emails); len(details) > 0 {
		writeValidationError(w, "Invalid email addresses", details)
		return
	}
	if !validation.ValidatePath(req.Path) {
		writeValidationError(w, "Invalid path", map[string]any{"path": req.Path})
		return
	}

	f, err := h.files.Share(r.Context(), auth.CurrentUser(r.Context()), id, req.Emails, req.Path)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "File shared", f)
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	q := r.URL.Query()
	path := q.Get("path")
	if !validation.ValidatePath(path) {
		writeValidationError(w, "Invalid path", map[string]any{"path": path})
		return
	}
	if err := h.files.Delete(r.Context(), auth.CurrentUser(r.Context()), id, strings.TrimSpace(q.Get("bucketFileId")), path); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "File deleted", map[string]string{"status": "success", "id": id})
}

func (h *Handler) fileActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		writeValidationError(w, invalidFileID, nil)
		return
	}
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeValidationError(w, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	entries, err := h.files.Activity(r.Context(), auth.CurrentUser(r.Context()), id, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", entries)
}
