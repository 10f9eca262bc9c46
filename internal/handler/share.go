package handler

import (
	"net/http"

	"github.com/skyvault/skyvault/internal/ctxkeys"
	"github.com/skyvault/skyvault/internal/model"
	"github.com/skyvault/skyvault/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

type shareRequest struct {
	FilePath   string           `json:"filePath"`
	UserID     string           `json:"userId"`
	Permission model.Permission `json:"permission"`
}

func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	grant, err := h.shareService.Share(r.Context(), user.ID, req.FilePath, req.UserID, req.Permission)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, grant)
}

// Received lists the files shared with the acting user.
func (h *ShareHandler) Received(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.shareService.ReceivedBy(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// Grantees lists the users the acting user's file is shared with.
func (h *ShareHandler) Grantees(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	users, err := h.shareService.GranteesOf(r.Context(), user.ID, r.URL.Query().Get("filePath"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

func (h *ShareHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.shareService.UpdatePermission(r.Context(), user.ID, req.FilePath, req.UserID, req.Permission)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Permission updated")
}

func (h *ShareHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.shareService.Unshare(r.Context(), user.ID,
		r.URL.Query().Get("filePath"), r.URL.Query().Get("userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "File unshared")
}

// Permission returns the grant the acting user holds on another
// owner's file.
func (h *ShareHandler) Permission(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	grant, err := h.shareService.PermissionFor(r.Context(), user.ID,
		r.URL.Query().Get("ownerId"), r.URL.Query().Get("filePath"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, grant)
}
