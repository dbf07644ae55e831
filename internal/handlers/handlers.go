package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/imagedata"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/renderer"
	"github.com/MrPunder/qrstyle/internal/session"
	"github.com/MrPunder/qrstyle/internal/storage"
	"github.com/go-chi/chi/v5"
)

const (
	// Имя cookie с токеном сессии
	SessionCookie = "qr_session"
	// Имя поля формы с файлом изображения
	ImageFileField = "image-file"

	maxUploadMemory = 8 << 20
)

type Handler struct {
	logger   logger.Logger
	store    storage.Storage
	sessions *session.Manager
	defaults models.StyleConfig
	timeout  time.Duration

	CookieSecure bool
}

// SessionResponse ответ на создание сессии
type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Config    models.StyleConfig `json:"config"`
}

// OptionsResponse допустимые значения полей формы
type OptionsResponse struct {
	DotTypes          []models.DotType          `json:"dot_types"`
	CornerSquareTypes []models.CornerSquareType `json:"corner_square_types"`
	CornerDotTypes    []models.CornerDotType    `json:"corner_dot_types"`
	FileExtensions    []models.FileExtension    `json:"file_extensions"`
	Groups            []models.FieldGroup       `json:"groups"`
}

type fieldRequest struct {
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(logger logger.Logger, store storage.Storage, sessions *session.Manager, defaults models.StyleConfig) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		sessions: sessions,
		defaults: defaults,
		timeout:  10 * time.Second,
	}
}

func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	return r.Route("/", func(r chi.Router) {
		r.Get("/", handler.FormHandler)
		r.Get("/ping", handler.PingHandler)
		r.Get("/options", handler.OptionsHandler)
		r.Post("/sessions", handler.CreateSessionHandler)

		r.Group(func(r chi.Router) {
			r.Use(handler.SessionMiddleware)

			r.Get("/sessions/config", handler.ConfigHandler)
			r.Post("/sessions/fields/{name}", handler.UpdateFieldHandler)
			r.Post("/sessions/image", handler.UploadImageHandler)
			r.Delete("/sessions/image", handler.ClearImageHandler)
			r.Get("/sessions/preview", handler.PreviewHandler)
			r.Post("/sessions/format", handler.FormatHandler)
			r.Get("/sessions/export", handler.ExportHandler)
			r.Delete("/sessions", handler.DeleteSessionHandler)
		})

		r.NotFound(handler.DefoultHandler)
	})
}

func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Entered PingHandler")

	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("pong"))
	if err != nil {
		h.logger.Errorf("Error writing response %v", err)
	}
}

// DefoultHandler for incorrect requests
func (h *Handler) DefoultHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Infof("Unknown request %s %s", r.Method, r.URL.Path)

	http.Error(w, "wrong requests", http.StatusBadRequest)
}

func (h *Handler) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, OptionsResponse{
		DotTypes:          models.DotTypes,
		CornerSquareTypes: models.CornerSquareTypes,
		CornerDotTypes:    models.CornerDotTypes,
		FileExtensions:    models.FileExtensions,
		Groups:            models.FormLayout(),
	})
}

// CreateSessionHandler создает конфигуратор и выдает токен сессии
func (h *Handler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create()
	if err != nil {
		h.logger.Errorf("Failed to create session: %v", err)
		h.writeError(w, err)
		return
	}

	token, expiresAt, err := h.sessions.Issue(sess.ID)
	if err != nil {
		h.logger.Errorf("Failed to issue session token: %v", err)
		_ = h.store.Delete(sess.ID)
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})

	h.writeJSON(w, http.StatusCreated, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Config:    sess.Configurator.Snapshot(),
	})
}

func (h *Handler) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	h.writeJSON(w, http.StatusOK, sess.Configurator.Snapshot())
}

// UpdateFieldHandler меняет одно поле конфигурации
func (h *Handler) UpdateFieldHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	name := chi.URLParam(r, "name")

	value, err := readValue(r)
	if err != nil {
		h.logger.Errorf("Failed to read value for %s: %v", name, err)
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	if err := sess.Configurator.UpdateField(name, value); err != nil {
		h.logger.Infof("Field %s rejected: %v", name, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sess.Configurator.Snapshot())
}

func (h *Handler) FormatHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	value, err := readValue(r)
	if err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	if err := sess.Configurator.UpdateField(models.FieldDownloadExtension, value); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sess.Configurator.Snapshot())
}

// UploadImageHandler читает файл логотипа и ждет окончания преобразования
func (h *Handler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Errorf("Failed to parse multipart form: %v", err)
		http.Error(w, "multipart form expected", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(ImageFileField)
	if err != nil {
		http.Error(w, fmt.Sprintf("%s is required", ImageFileField), http.StatusBadRequest)
		return
	}
	defer file.Close()

	h.logger.Infof("Received image %s (%d bytes)", header.Filename, header.Size)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := <-sess.Configurator.SetImageFile(ctx, file); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sess.Configurator.Snapshot())
}

func (h *Handler) ClearImageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if err := sess.Configurator.ClearImage(); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sess.Configurator.Snapshot())
}

// PreviewHandler отдает последнее отрисованное изображение в PNG
func (h *Handler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	img, version := sess.Canvas.Image()
	if img == nil {
		http.Error(w, "nothing rendered yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Encode(&buf, img, models.ExtensionPNG); err != nil {
		h.logger.Errorf("Failed to encode preview: %v", err)
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType(models.ExtensionPNG))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Preview-Version", fmt.Sprint(version))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Errorf("Error writing response %v", err)
	}
}

// ExportHandler выгружает изображение в выбранном формате как вложение
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	// формат можно передать параметром запроса, он сохраняется в конфигурации
	if ext := r.URL.Query().Get("format"); ext != "" {
		if err := sess.Configurator.UpdateField(models.FieldDownloadExtension, ext); err != nil {
			h.writeError(w, err)
			return
		}
	}

	// формат берется из того же снимка, что и сама выгрузка
	var buf bytes.Buffer
	ext, err := sess.Configurator.ExportImage(&buf)
	if err != nil {
		h.logger.Errorf("Export failed for session %s: %v", sess.ID, err)
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType(ext))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "qr." + string(ext),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Errorf("Error writing response %v", err)
	}
}

func (h *Handler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if err := h.store.Delete(sess.ID); err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorf("Error writing response %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor сопоставляет ошибки пакетов с кодами ответа
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidValue),
		errors.Is(err, renderer.ErrUnsupportedFormat),
		errors.Is(err, imagedata.ErrEmptyFile),
		errors.Is(err, imagedata.ErrUnsupportedType),
		errors.Is(err, imagedata.ErrUndecodable):
		return http.StatusBadRequest
	case errors.Is(err, imagedata.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrUnknownField):
		return http.StatusNotFound
	case errors.Is(err, configurator.ErrStaleImage):
		return http.StatusConflict
	case errors.Is(err, storage.ErrSessionNotFound),
		errors.Is(err, configurator.ErrClosed),
		errors.Is(err, configurator.ErrNotInitialized),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrStorageClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// readValue достает значение поля из JSON или из формы
func readValue(r *http.Request) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req fieldRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadMemory))
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return "", err
		}
		return req.Value, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("value"), nil
}
