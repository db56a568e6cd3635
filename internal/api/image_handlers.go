package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/service"
)

// Multipart parsing memory ceiling; larger parts spill to temp files.
const multipartMemoryLimit = 8 << 20

// handleUploadRecipeImage attaches an image to a recipe. Plain chi handler:
// huma's typed inputs don't fit multipart uploads well.
func (s *Server) handleUploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	recipeID := chi.URLParam(r, "id")

	// Reject oversized requests before buffering the whole body.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageSize+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		s.writeError(w, domainerrors.Validation("invalid multipart request"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "no file was submitted"}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, domainerrors.Validation("failed to read uploaded file"))
		return
	}

	recipe, err := s.services.Recipe.UploadImage(ctx, user.ID, recipeID, data, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newRecipeDetail(recipe))
}

// handleGetRecipeImage streams a recipe's image bytes.
func (s *Server) handleGetRecipeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	recipeID := chi.URLParam(r, "id")

	data, name, err := s.services.Recipe.GetImage(ctx, user.ID, recipeID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to write image response", "recipe_id", recipeID, "error", err)
	}
}
