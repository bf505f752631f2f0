package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"notable-server/internal/domain"
	"notable-server/internal/middleware"
	"notable-server/internal/service"
	"notable-server/pkg/response"

	"github.com/gorilla/mux"
)

// maxSaveSize bounds a single save request (cover plus attachments) to
// 50 MiB.
const maxSaveSize = 50 << 20

// LimitReachedCode is the machine-readable code for the free-tier
// ceiling; clients branch on it into the upgrade prompt.
const LimitReachedCode = "limit_reached"

type NoteHandler struct {
	noteService *service.NoteService
	saveService *service.SaveService
}

func NewNoteHandler(noteService *service.NoteService, saveService *service.SaveService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		saveService: saveService,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.noteService.Create(userID, &req)
	if err != nil {
		h.writeNoteError(w, err, "Failed to create note")
		return
	}

	response.JSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	notes, err := h.noteService.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	count, err := h.noteService.Count(userID)
	if err != nil {
		response.InternalError(w, "Failed to count notes")
		return
	}

	response.Success(w, map[string]int{"count": count})
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	query := r.URL.Query().Get("q")

	notes, err := h.noteService.Search(userID, query)
	if err != nil {
		response.InternalError(w, "Failed to search notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.noteService.GetByID(userID, noteID)
	if err != nil {
		h.writeNoteError(w, err, "Failed to load note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.noteService.Update(userID, noteID, &req)
	if err != nil {
		h.writeNoteError(w, err, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.noteService.Delete(userID, noteID); err != nil {
		h.writeNoteError(w, err, "Failed to delete note")
		return
	}

	response.Success(w, map[string]string{"message": "Note deleted successfully"})
}

// Save is the editor's save endpoint: one multipart request carrying the
// draft fields, the cover decision, the kept attachment list, and the new
// files. The save workflow runs server-side in a fixed order.
//
// Form fields: note_id (empty for a new draft), title, content,
// cover_action (keep|replace|clear), kept_attachments (JSON array); file
// parts: cover, attachments (repeatable).
func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if err := r.ParseMultipartForm(maxSaveSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	draft := &domain.NoteDraft{
		NoteID:  r.FormValue("note_id"),
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Cover:   domain.CoverChange{Action: domain.CoverKeep},
	}

	if kept := r.FormValue("kept_attachments"); kept != "" {
		if err := json.Unmarshal([]byte(kept), &draft.KeptAttachments); err != nil {
			response.BadRequest(w, "Invalid kept_attachments payload")
			return
		}
	}

	switch domain.CoverAction(r.FormValue("cover_action")) {
	case domain.CoverClear:
		draft.Cover.Action = domain.CoverClear
	case domain.CoverReplace:
		file, header, err := r.FormFile("cover")
		if err != nil {
			response.BadRequest(w, "Cover file is required when replacing the cover")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			response.BadRequest(w, "Failed to read cover file")
			return
		}
		draft.Cover = domain.CoverChange{
			Action:      domain.CoverReplace,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["attachments"] {
			file, err := header.Open()
			if err != nil {
				response.BadRequest(w, "Failed to read attachment")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				response.BadRequest(w, "Failed to read attachment")
				return
			}
			draft.NewFiles = append(draft.NewFiles, domain.FileUpload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	note, err := h.saveService.Save(userID, draft)
	if err != nil {
		h.writeNoteError(w, err, "Failed to save note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) writeNoteError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Unauthorized(w, "Not authenticated")
	case errors.Is(err, service.ErrNoteLimitReached):
		response.ErrorCode(w, http.StatusForbidden, LimitReachedCode, "Free note limit reached")
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(w, "Note not found")
	default:
		response.InternalError(w, fallback)
	}
}
