package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"notable-server/internal/domain"
	"notable-server/internal/repository"

	"github.com/google/uuid"
)

// Notifier pushes note change events to connected sessions. A nil
// Notifier disables realtime fanout.
type Notifier interface {
	NoteCreated(userID string, note *domain.NoteResponse)
	NoteUpdated(userID string, note *domain.NoteResponse)
	NoteDeleted(userID, noteID string)
}

type NoteService struct {
	repo          repository.NoteRepository
	userRepo      repository.UserRepository
	notifier      Notifier
	freeNoteLimit int
}

func NewNoteService(repo repository.NoteRepository, userRepo repository.UserRepository, notifier Notifier, freeNoteLimit int) *NoteService {
	return &NoteService{
		repo:          repo,
		userRepo:      userRepo,
		notifier:      notifier,
		freeNoteLimit: freeNoteLimit,
	}
}

// Count reports the user's live note count. It gates creation, so it
// always hits the repository; nothing is cached.
func (s *NoteService) Count(userID string) (int, error) {
	return s.repo.CountByUser(userID)
}

func (s *NoteService) List(userID string) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, domain.NewNoteResponse(n))
	}

	return responses, nil
}

func (s *NoteService) GetByID(userID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.getOwned(userID, noteID)
	if err != nil {
		return nil, err
	}
	return domain.NewNoteResponse(note), nil
}

// Search matches the query against note titles and contents. A trimmed
// empty query yields an empty result set without touching the repository.
func (s *NoteService) Search(userID, query string) ([]*domain.NoteResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.NoteResponse{}, nil
	}

	notes, err := s.repo.Search(userID, query)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, domain.NewNoteResponse(n))
	}

	return responses, nil
}

// Create assigns id and timestamps and persists a new note. Non-upgraded
// users at or above the free-tier ceiling fail with ErrNoteLimitReached
// before any write. The count check and the create are not one
// transaction; two near-simultaneous saves can both pass the check.
func (s *NoteService) Create(userID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	if err := s.checkQuota(userID); err != nil {
		return nil, err
	}

	now := time.Now()
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	note := &domain.Note{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Content:     req.Content,
		Attachments: []domain.Attachment{},
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(note); err != nil {
		return nil, err
	}

	response := domain.NewNoteResponse(note)

	if s.notifier != nil {
		s.notifier.NoteCreated(userID, response)
	}

	return response, nil
}

// Update merges the supplied fields into the stored note and refreshes
// updated_at. The note id and owner never change.
func (s *NoteService) Update(userID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	note, err := s.getOwned(userID, noteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.ClearThumbnail {
		note.ThumbnailPath = ""
	} else if req.ThumbnailPath != nil {
		note.ThumbnailPath = *req.ThumbnailPath
	}
	if req.Attachments != nil {
		note.Attachments = *req.Attachments
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}

	note.UpdatedAt = time.Now()

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	response := domain.NewNoteResponse(note)

	if s.notifier != nil {
		s.notifier.NoteUpdated(userID, response)
	}

	return response, nil
}

// Delete removes the note row. Storage objects the note referenced (cover
// image, attachments) are not deleted.
func (s *NoteService) Delete(userID, noteID string) error {
	if _, err := s.getOwned(userID, noteID); err != nil {
		return err
	}

	if err := s.repo.Delete(noteID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NoteDeleted(userID, noteID)
	}

	return nil
}

func (s *NoteService) getOwned(userID, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if note.UserID != userID {
		return nil, ErrNoteNotFound
	}

	return note, nil
}

func (s *NoteService) checkQuota(userID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.Upgraded {
		return nil
	}

	count, err := s.repo.CountByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to count notes: %w", err)
	}

	if count >= s.freeNoteLimit {
		return ErrNoteLimitReached
	}

	return nil
}
