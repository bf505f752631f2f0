package service

import (
	"bytes"
	"fmt"
	"path"
	"time"

	"notable-server/internal/domain"
	"notable-server/internal/storage"
)

// SaveService runs the note save workflow: a fixed ordered sequence that
// ensures the note row exists, uploads the cover and new attachments, and
// persists the final record. Any failure aborts the sequence at the
// failing step; earlier steps are not compensated. A row created in step
// one may be left with stale content, and files uploaded before a failure
// stay in storage. Both are accepted.
type SaveService struct {
	notes   *NoteService
	gateway *storage.Gateway

	// now is stubbed in tests to pin attachment filenames.
	now func() time.Time
}

func NewSaveService(notes *NoteService, gateway *storage.Gateway) *SaveService {
	return &SaveService{
		notes:   notes,
		gateway: gateway,
		now:     time.Now,
	}
}

func (s *SaveService) Save(userID string, draft *domain.NoteDraft) (*domain.NoteResponse, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	noteID := draft.NoteID
	if noteID == "" {
		created, err := s.notes.Create(userID, &domain.CreateNoteRequest{
			Title:   draft.Title,
			Content: draft.Content,
			Tags:    []string{},
		})
		if err != nil {
			// ErrNoteLimitReached propagates before any upload happens.
			return nil, err
		}
		noteID = created.ID
	}

	update := &domain.UpdateNoteRequest{
		Title:   &draft.Title,
		Content: &draft.Content,
	}

	switch draft.Cover.Action {
	case domain.CoverReplace:
		// Fixed path per note: re-saving a changed cover overwrites the
		// previous object instead of leaking a new one.
		coverPath, err := s.gateway.Upload(
			userID,
			fmt.Sprintf("notes/%s", noteID),
			"cover",
			"",
			bytes.NewReader(draft.Cover.Data),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover: %w", err)
		}
		update.ThumbnailPath = &coverPath
	case domain.CoverClear:
		update.ClearThumbnail = true
	}

	uploaded := make([]domain.Attachment, 0, len(draft.NewFiles))
	for _, file := range draft.NewFiles {
		// Only the last path element of the client-supplied name is
		// kept, so uploads cannot carry directory components.
		name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), path.Base(file.Name))
		objectPath, err := s.gateway.Upload(
			userID,
			fmt.Sprintf("notes/%s/attachments", noteID),
			name,
			file.Name,
			bytes.NewReader(file.Data),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment %s: %w", file.Name, err)
		}
		uploaded = append(uploaded, domain.Attachment{
			ID:   objectPath,
			Name: file.Name,
			Size: int64(len(file.Data)),
			Type: file.ContentType,
			Path: objectPath,
		})
	}

	// Kept attachments first, freshly uploaded after, both in order.
	merged := make([]domain.Attachment, 0, len(draft.KeptAttachments)+len(uploaded))
	merged = append(merged, draft.KeptAttachments...)
	merged = append(merged, uploaded...)
	update.Attachments = &merged

	return s.notes.Update(userID, noteID, update)
}

// RemoveAttachment is the two-phase removal's second phase: the client
// has already dropped the attachment from its kept-list, and this call
// deletes the stored object best-effort. It never fails the caller.
func (s *SaveService) RemoveAttachment(path string) {
	s.gateway.Delete(path)
}
