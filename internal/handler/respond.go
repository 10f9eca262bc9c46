package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/skyvault/skyvault/internal/pathcheck"
	"github.com/skyvault/skyvault/internal/repository"
	"github.com/skyvault/skyvault/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps the domain error taxonomy onto HTTP statuses. The
// consuming layer branches on error identity, never on message text.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pathcheck.ErrInvalidPath),
		errors.Is(err, service.ErrUploadFailed),
		errors.Is(err, service.ErrIsFolder),
		errors.Is(err, service.ErrFolderNotEmpty),
		errors.Is(err, service.ErrInvalidPermission),
		errors.Is(err, service.ErrSelfShare),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrPasswordRequired):
		respondMessage(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrPermissionDenied):
		respondMessage(w, http.StatusForbidden, err.Error())

	case errors.Is(err, repository.ErrFileNotFound),
		errors.Is(err, repository.ErrShareNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())

	case errors.Is(err, repository.ErrFileExists),
		errors.Is(err, repository.ErrShareExists),
		errors.Is(err, service.ErrEmailAlreadyExists):
		respondMessage(w, http.StatusConflict, err.Error())

	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		respondMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
