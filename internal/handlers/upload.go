package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/objectstore"
	"GOTOURS_BACK-END/internal/utils"
)

// multipartOverhead leaves room for boundaries and headers on top of the file itself.
const multipartOverhead = 64 << 10

// UploadHandler stores tour images
type UploadHandler struct {
	store    objectstore.Store
	maxBytes int64
	now      func() time.Time
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store objectstore.Store, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes, now: time.Now}
}

// Upload handles POST /api/upload
// @Summary Upload a tour image
// @Description Guides and admins only; multipart field "file", images only
// @Tags tours
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor := utils.ActorFromContext(r.Context())
	if !actor.IsAuthenticated() {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Sign in to upload images")
		return
	}
	if !authz.CanUploadImages(actor) {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only guides and admins can upload images")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large", "The image exceeds the upload limit")
			return
		}
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "Expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large", "The image exceeds the upload limit")
		return
	}

	// Sniff the real content type instead of trusting the client
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "Could not read the file")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "Only image files are allowed")
		return
	}

	key := objectstore.ObjectKey(header.Filename, h.now())
	u, err := h.store.Put(r.Context(), key, contentType, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("key", key).Msg("image upload failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Upload failed", "Could not store the image")
		return
	}

	logging.FromContext(r.Context()).Info().
		Str("key", key).
		Str("user_id", actor.ID.String()).
		Msg("image uploaded")
	utils.WriteJSONResponse(w, http.StatusOK, dto.UploadResponse{URL: u})
}
