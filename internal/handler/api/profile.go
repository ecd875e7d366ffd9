package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/handler"
	"github.com/dukerupert/shelf/internal/middleware"
	"github.com/dukerupert/shelf/internal/service"
)

// maxMultipartMemory is how much of an upload is held in memory before
// spilling to disk.
const maxMultipartMemory = 8 << 20

// ProfileHandler handles the signed-in user's profile.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles service.ProfileService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With("handler", "profile"),
	}
}

// Show handles GET /api/profile
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), domain.SessionFromContext(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params service.UpdateProfileParams
	if err := handler.DecodeJSON(r, &params); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), domain.SessionFromContext(r.Context()), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, p)
}

// UploadImage handles POST /api/profile/image with multipart field "image".
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handler.ErrorResponse(w, r, domain.NewValidationError("profile.upload_image", "image", service.MsgImageTooLarge))
			return
		}
		handler.BadRequestResponse(w, r, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var upload service.ImageUpload
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Leave upload empty; the service reports the missing image.
	case err != nil:
		handler.BadRequestResponse(w, r, "Invalid upload")
		return
	default:
		defer file.Close()
		upload = service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	}

	p, err := h.profiles.UploadImage(r.Context(), domain.SessionFromContext(r.Context()), upload)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	middleware.GetLogger(r.Context(), h.logger).Info("profile image uploaded",
		"size", upload.Size,
		"content_type", upload.ContentType,
	)
	handler.WriteJSON(w, http.StatusOK, p)
}

// Countries handles GET /api/profile/countries
func (h *ProfileHandler) Countries(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusOK, map[string][]domain.Country{
		"countries": h.profiles.Countries(),
	})
}
