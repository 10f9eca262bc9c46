package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/skyvault/skyvault/internal/ctxkeys"
	"github.com/skyvault/skyvault/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// fileTarget resolves the request's file reference once, at the
// boundary: an ownerId other than the actor means the file is reached
// through a share grant and lives in that owner's namespace.
func fileTarget(r *http.Request, actorID string) service.FileTarget {
	filePath := r.URL.Query().Get("filePath")
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID != "" && ownerID != actorID {
		return service.SharedVia(filePath, ownerID)
	}
	return service.Owned(filePath)
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	mr, err := r.MultipartReader()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "expected multipart request")
		return
	}

	result, err := h.fileService.Upload(r.Context(), user.ID, r.URL.Query().Get("filePath"), mr)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	record, rc, err := h.fileService.Open(r.Context(), user.ID, fileTarget(r, user.ID))
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(record.Path)))

	_, err = io.Copy(w, rc)
	if err != nil {
		// Headers are gone; all we can do is log the broken stream.
		slog.Warn("download aborted", "error", err, "path", record.Path)
	}
}

func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	mr, err := r.MultipartReader()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "expected multipart request")
		return
	}

	result, err := h.fileService.Update(r.Context(), user.ID, fileTarget(r, user.ID), mr)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *FileHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.fileService.Remove(r.Context(), user.ID, fileTarget(r, user.ID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "File deleted successfully")
}

func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	record, err := h.fileService.CreateFolder(r.Context(), user.ID, r.URL.Query().Get("filePath"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

func (h *FileHandler) Tree(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	root, err := h.fileService.OwnTree(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, root)
}

func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.SearchByName(r.Context(), user.ID, r.URL.Query().Get("name"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// An empty result is valid; it maps to a not-found status with an
	// empty list rather than an error body.
	status := http.StatusOK
	message := fmt.Sprintf("Found %d files", len(files))
	if len(files) == 0 {
		status = http.StatusNotFound
		message = "No files found"
	}

	respondJSON(w, status, map[string]any{
		"message": message,
		"files":   files,
	})
}
