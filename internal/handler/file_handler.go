package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"notable-server/internal/storage"
	"notable-server/pkg/response"

	"github.com/gorilla/mux"
)

// FileHandler exposes the storage gateway over HTTP: signed-URL issuance,
// token-checked object serving, and best-effort deletion.
type FileHandler struct {
	gateway *storage.Gateway
}

func NewFileHandler(gateway *storage.Gateway) *FileHandler {
	return &FileHandler{gateway: gateway}
}

type signRequest struct {
	Path string `json:"path"`
}

// Sign issues a time-limited URL for a private storage path. Empty paths
// and refs that are already URLs come back unchanged, matching the
// gateway contract.
func (h *FileHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	response.Success(w, map[string]string{
		"url": h.gateway.SignedURL(req.Path),
	})
}

// Serve streams a stored object when the signed-URL token checks out.
// This is the only read path into the private bucket.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	objectPath := mux.Vars(r)["path"]
	token := r.URL.Query().Get("token")

	if objectPath == "" || token == "" {
		response.Unauthorized(w, "Missing signed url token")
		return
	}

	if err := h.gateway.Verify(token, objectPath); err != nil {
		response.Unauthorized(w, "Invalid or expired signed url")
		return
	}

	object, err := h.gateway.Fetch(objectPath)
	if err != nil {
		response.NotFound(w, "File not found")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", storage.ContentTypeByExt(objectPath))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, object)
}

type deleteRequest struct {
	Paths []string `json:"paths"`
}

// Delete removes stored objects best-effort. Failures are logged server
// side and never surfaced; the response is always success so the caller's
// flow is not blocked.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	h.gateway.DeleteAll(req.Paths)

	response.Success(w, map[string]string{"message": "Deletion scheduled"})
}
