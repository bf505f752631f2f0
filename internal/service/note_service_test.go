package service

import (
	"errors"
	"testing"

	"notable-server/internal/domain"
	"notable-server/internal/repository"
)

type mockNoteRepo struct {
	notes map[string]*domain.Note
	order []string

	createErr error
	updateErr error
	created   int
	updated   int
	deleted   int
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*domain.Note)}
}

func (m *mockNoteRepo) Create(note *domain.Note) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *note
	m.notes[note.ID] = &copied
	m.order = append(m.order, note.ID)
	m.created++
	return nil
}

func (m *mockNoteRepo) FindByID(id string) (*domain.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (m *mockNoteRepo) ListByUser(userID string) ([]*domain.Note, error) {
	var result []*domain.Note
	for _, id := range m.order {
		if note := m.notes[id]; note != nil && note.UserID == userID {
			copied := *note
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockNoteRepo) CountByUser(userID string) (int, error) {
	count := 0
	for _, note := range m.notes {
		if note.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockNoteRepo) Search(userID, query string) ([]*domain.Note, error) {
	return m.ListByUser(userID)
}

func (m *mockNoteRepo) Update(note *domain.Note) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.notes[note.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *note
	m.notes[note.ID] = &copied
	m.updated++
	return nil
}

func (m *mockNoteRepo) Delete(id string) error {
	if _, ok := m.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.notes, id)
	m.deleted++
	return nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockUserRepo) UsernameExists(username string) (bool, error) {
	_, err := m.FindByUsername(username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func freeUser(id string) *domain.User {
	return &domain.User{ID: id, Username: "u-" + id, Email: id + "@example.com"}
}

func upgradedUser(id string) *domain.User {
	u := freeUser(id)
	u.Upgraded = true
	return u
}

func newTestNoteService(noteRepo *mockNoteRepo, userRepo *mockUserRepo) *NoteService {
	return NewNoteService(noteRepo, userRepo, nil, 3)
}

func TestCreateIncrementsCount(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	before, _ := svc.Count("u1")

	note, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "First", Content: "hello"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if note.ID == "" {
		t.Error("expected created note to have an id")
	}

	after, _ := svc.Count("u1")
	if after != before+1 {
		t.Errorf("expected count %d after create, got %d", before+1, after)
	}
}

func TestCreateAtLimitFails(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	for i := 0; i < 3; i++ {
		if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	_, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Fourth"})
	if !errors.Is(err, ErrNoteLimitReached) {
		t.Fatalf("expected ErrNoteLimitReached, got %v", err)
	}

	if noteRepo.created != 3 {
		t.Errorf("blocked create must not write, got %d creates", noteRepo.created)
	}

	count, _ := svc.Count("u1")
	if count != 3 {
		t.Errorf("count changed after blocked create: %d", count)
	}
}

func TestCreateUpgradedUserBypassesLimit(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(upgradedUser("u1")))

	for i := 0; i < 5; i++ {
		if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"}); err != nil {
			t.Fatalf("create %d failed for upgraded user: %v", i, err)
		}
	}
}

func TestCreateLimitIsPerUser(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1"), freeUser("u2")))

	for i := 0; i < 3; i++ {
		if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	// u2 is unaffected by u1 being at the ceiling.
	if _, err := svc.Create("u2", &domain.CreateNoteRequest{Title: "Note"}); err != nil {
		t.Errorf("second user's create should succeed, got %v", err)
	}
}

func TestCreateUnknownUser(t *testing.T) {
	svc := newTestNoteService(newMockNoteRepo(), newMockUserRepo())

	_, err := svc.Create("ghost", &domain.CreateNoteRequest{Title: "Note"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetByIDScopesToOwner(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1"), freeUser("u2")))

	created, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Private"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.GetByID("u1", created.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}

	// Someone else's note and a missing note are indistinguishable.
	if _, err := svc.GetByID("u2", created.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound for foreign note, got %v", err)
	}
	if _, err := svc.GetByID("u1", "missing"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound for missing note, got %v", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	created, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Old", Content: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	title := "New"
	thumb := "u1/notes/" + created.ID + "/cover"
	updated, err := svc.Update("u1", created.ID, &domain.UpdateNoteRequest{
		Title:         &title,
		ThumbnailPath: &thumb,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "New" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Content != "body" {
		t.Errorf("untouched content changed: %q", updated.Content)
	}
	if updated.ThumbnailPath != thumb {
		t.Errorf("thumbnail not updated: %q", updated.ThumbnailPath)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
}

func TestUpdateClearThumbnail(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	created, _ := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"})
	thumb := "u1/notes/" + created.ID + "/cover"
	if _, err := svc.Update("u1", created.ID, &domain.UpdateNoteRequest{ThumbnailPath: &thumb}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cleared, err := svc.Update("u1", created.ID, &domain.UpdateNoteRequest{ClearThumbnail: true})
	if err != nil {
		t.Fatalf("clear update failed: %v", err)
	}
	if cleared.ThumbnailPath != "" {
		t.Errorf("thumbnail not cleared: %q", cleared.ThumbnailPath)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1"), freeUser("u2")))

	created, _ := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"})

	if err := svc.Delete("u2", created.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("foreign delete should fail with ErrNoteNotFound, got %v", err)
	}
	if noteRepo.deleted != 0 {
		t.Fatal("foreign delete reached the repository")
	}

	if err := svc.Delete("u1", created.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	count, _ := svc.Count("u1")
	if count != 0 {
		t.Errorf("expected 0 notes after delete, got %d", count)
	}

	// Deleting again reports not found.
	if err := svc.Delete("u1", created.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on double delete, got %v", err)
	}
}

func TestDeleteFreesQuota(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	var last *domain.NoteResponse
	for i := 0; i < 3; i++ {
		note, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		last = note
	}

	if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Blocked"}); !errors.Is(err, ErrNoteLimitReached) {
		t.Fatalf("expected ceiling, got %v", err)
	}

	if err := svc.Delete("u1", last.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Again"}); err != nil {
		t.Errorf("create after delete should succeed, got %v", err)
	}
}

func TestSearchEmptyQuerySkipsRepository(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for _, query := range []string{"", "   ", "\t\n"} {
		results, err := svc.Search("u1", query)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) should be empty, got %d results", query, len(results))
		}
	}
}

func TestSearchTrimsQuery(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Trip Plan"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	results, err := svc.Search("u1", "  trip  ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

type recordingNotifier struct {
	created []string
	updated []string
	deleted []string
}

func (r *recordingNotifier) NoteCreated(userID string, note *domain.NoteResponse) {
	r.created = append(r.created, note.ID)
}

func (r *recordingNotifier) NoteUpdated(userID string, note *domain.NoteResponse) {
	r.updated = append(r.updated, note.ID)
}

func (r *recordingNotifier) NoteDeleted(userID, noteID string) {
	r.deleted = append(r.deleted, noteID)
}

func TestNotifierReceivesEvents(t *testing.T) {
	noteRepo := newMockNoteRepo()
	notifier := &recordingNotifier{}
	svc := NewNoteService(noteRepo, newMockUserRepo(freeUser("u1")), notifier, 3)

	created, err := svc.Create("u1", &domain.CreateNoteRequest{Title: "Note"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	title := "Renamed"
	if _, err := svc.Update("u1", created.ID, &domain.UpdateNoteRequest{Title: &title}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.Delete("u1", created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(notifier.created) != 1 || notifier.created[0] != created.ID {
		t.Errorf("unexpected created events: %v", notifier.created)
	}
	if len(notifier.updated) != 1 || len(notifier.deleted) != 1 {
		t.Errorf("unexpected event counts: updated=%d deleted=%d", len(notifier.updated), len(notifier.deleted))
	}
}

func TestListReturnsResponses(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := newTestNoteService(noteRepo, newMockUserRepo(freeUser("u1")))

	for _, title := range []string{"a", "b"} {
		if _, err := svc.Create("u1", &domain.CreateNoteRequest{Title: title}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	notes, err := svc.List("u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	for _, n := range notes {
		if n.Attachments == nil || n.Tags == nil {
			t.Error("note response slices must not be nil")
		}
	}

	empty, err := svc.List("u2")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no notes for other user, got %d", len(empty))
	}
}
