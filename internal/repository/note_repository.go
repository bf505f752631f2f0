package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"

	"notable-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// CouchDB _find returns at most 25 rows unless the query carries an
// explicit limit, so every Mango query here sets one.
const findLimit = 10000

type NoteRepository interface {
	Create(note *domain.Note) error
	FindByID(id string) (*domain.Note, error)
	ListByUser(userID string) ([]*domain.Note, error)
	CountByUser(userID string) (int, error)
	Search(userID, query string) ([]*domain.Note, error)
	Update(note *domain.Note) error
	Delete(id string) error
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func noteDocID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

func (r *noteRepository) Create(note *domain.Note) error {
	db := r.client.DB(r.dbName)

	_, err := db.Put(context.Background(), noteDocID(note.ID), note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(id string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	row := db.Get(context.Background(), noteDocID(id))

	var note domain.Note
	if err := row.ScanDoc(&note); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return &note, nil
}

func (r *noteRepository) ListByUser(userID string) ([]*domain.Note, error) {
	notes, err := r.find(map[string]interface{}{
		"user_id": userID,
		"title":   map[string]interface{}{"$exists": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	// Most-recently-updated first, stable for equal timestamps.
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})

	return notes, nil
}

func (r *noteRepository) CountByUser(userID string) (int, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
			"title":   map[string]interface{}{"$exists": true},
		},
		"fields": []string{"_id"},
		"limit":  findLimit,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}

	return count, nil
}

func (r *noteRepository) Search(userID, query string) ([]*domain.Note, error) {
	pattern := "(?i)" + regexp.QuoteMeta(query)

	notes, err := r.find(map[string]interface{}{
		"user_id": userID,
		"$or": []map[string]interface{}{
			{"title": map[string]interface{}{"$regex": pattern}},
			{"content": map[string]interface{}{"$regex": pattern}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})

	return notes, nil
}

func (r *noteRepository) find(selector map[string]interface{}) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	rows := db.Find(context.Background(), map[string]interface{}{
		"selector": selector,
		"limit":    findLimit,
	})
	if err := rows.Err(); err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.ScanDoc(&note); err != nil {
			continue
		}
		notes = append(notes, &note)
	}

	return notes, nil
}

func (r *noteRepository) Update(note *domain.Note) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(note.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch existing note for update: %w", err)
	}

	applyNoteUpdate(existingDoc, note)

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// applyNoteUpdate merges the editable note fields into the fetched doc,
// preserving _rev and anything else CouchDB stored. The note's own
// updated_at is persisted so the stored doc matches what callers see.
func applyNoteUpdate(doc map[string]interface{}, note *domain.Note) {
	doc["title"] = note.Title
	doc["content"] = note.Content
	doc["attachments"] = note.Attachments
	doc["tags"] = note.Tags
	doc["updated_at"] = note.UpdatedAt

	if note.ThumbnailPath != "" {
		doc["thumbnail_path"] = note.ThumbnailPath
	} else {
		delete(doc, "thumbnail_path")
	}
}

func (r *noteRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch note for delete: %w", err)
	}

	rev, _ := existingDoc["_rev"].(string)

	// Removes the note row only. Storage objects referenced by the note
	// (cover, attachments) are left in place.
	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
