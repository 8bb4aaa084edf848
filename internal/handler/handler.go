package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"store-it/internal/application/usecases"
	"store-it/internal/auth"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/logger"
	"store-it/internal/middleware"
	"store-it/internal/presentation/http/controllers"
	"store-it/internal/revalidate"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    interface{}    `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Deps are the collaborators the routes need.
type Deps struct {
	Auth     *usecases.AuthUseCase
	Files    *usecases.FileUseCase
	Sessions *auth.Sessions
	Hub      *revalidate.Hub
	Version  string
	// MaxUploadBytes bounds a whole multipart upload request.
	MaxUploadBytes int64
	StaticDir      string
}

// Handler serves the HTTP API.
type Handler struct {
	auth           *usecases.AuthUseCase
	files          *usecases.FileUseCase
	fileController *controllers.FileController
	sessions       *auth.Sessions
	hub            *revalidate.Hub
	version        string
	maxUploadBytes int64
	staticDir      string
}

func New(d Deps) *Handler {
	return &Handler{
		auth:           d.Auth,
		files:          d.Files,
		fileController: controllers.NewFileController(d.Files),
		sessions:       d.Sessions,
		hub:            d.Hub,
		version:        d.Version,
		maxUploadBytes: d.MaxUploadBytes,
		staticDir:      d.StaticDir,
	}
}

// RegisterRoutes mounts the API under /api/v1 and, when configured, static
// assets under /static/.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// registered ahead of the subrouter so the upgrade gets the raw writer
	router.HandleFunc("/api/v1/ws", h.subscribe).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.sessions.LoadClientState)
	api.Use(middleware.Authenticate(h.auth))

	api.HandleFunc("/health", h.healthCheck).Methods(http.MethodGet)

	api.HandleFunc("/auth/sign-up", h.signUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/sign-in", h.signIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp", h.sendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", h.verify).Methods(http.MethodPost)
	api.HandleFunc("/auth/sign-out", h.signOut).Methods(http.MethodPost)
	api.Handle("/auth/me", middleware.RequireUser(http.HandlerFunc(h.me))).Methods(http.MethodGet)

	files := api.PathPrefix("/files").Subrouter()
	files.Use(middleware.RequireUser)
	files.HandleFunc("", h.listFiles).Methods(http.MethodGet)
	files.HandleFunc("", h.uploadFiles).Methods(http.MethodPost)
	files.HandleFunc("/space", h.spaceUsage).Methods(http.MethodGet)
	files.HandleFunc("/{id}", h.getFile).Methods(http.MethodGet)
	files.HandleFunc("/{id}", h.renameFile).Methods(http.MethodPatch)
	files.HandleFunc("/{id}", h.deleteFile).Methods(http.MethodDelete)
	files.HandleFunc("/{id}/users", h.shareFile).Methods(http.MethodPut)
	files.HandleFunc("/{id}/activity", h.fileActivity).Methods(http.MethodGet)
	files.HandleFunc("/{id}/download", h.downloadFile).Methods(http.MethodGet)

	if h.staticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir))))
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Message: "Service is running",
		Data: map[string]interface{}{
			"status":      "healthy",
			"version":     h.version,
			"subscribers": h.hub.Len(),
		},
	})
}

// subscribe opens the revalidation socket for the signed-in user.
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var u *entities.User
	if secret, ok := h.sessions.SecretFromCookie(r); ok {
		u, _ = h.auth.CurrentUser(r.Context(), secret)
	}
	if u == nil {
		writeErrorWithCode(w, http.StatusUnauthorized, domainerrors.ErrNoSession.Code, domainerrors.ErrNoSession.Message)
		return
	}
	h.hub.HandleConnection(w, r.WithContext(logger.WithActor(r.Context(), u.ID)), usecases.NormalizeEmail(u.Email))
}

func writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.GetLogger().LogError("Error encoding JSON response", err, nil)
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSONResponse(w, status, Response{Success: true, Message: message, Data: data})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
