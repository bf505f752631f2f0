package repository

import (
	"testing"
	"time"

	"notable-server/internal/domain"
)

func TestApplyNoteUpdatePersistsCallerTimestamp(t *testing.T) {
	updatedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	doc := map[string]interface{}{
		"_id":        "note:n-1",
		"_rev":       "3-abc",
		"user_id":    "u1",
		"title":      "Old",
		"updated_at": "2026-01-01T00:00:00Z",
	}
	note := &domain.Note{
		ID:            "n-1",
		Title:         "New",
		Content:       "<p>body</p>",
		ThumbnailPath: "u1/notes/n-1/cover",
		UpdatedAt:     updatedAt,
	}

	applyNoteUpdate(doc, note)

	if got := doc["updated_at"]; got != updatedAt {
		t.Errorf("expected stored updated_at %v, got %v", updatedAt, got)
	}
	if doc["title"] != "New" {
		t.Errorf("unexpected title %v", doc["title"])
	}
	if doc["thumbnail_path"] != "u1/notes/n-1/cover" {
		t.Errorf("unexpected thumbnail_path %v", doc["thumbnail_path"])
	}
	if doc["_rev"] != "3-abc" {
		t.Error("merge must preserve _rev")
	}
	if doc["user_id"] != "u1" {
		t.Error("merge must preserve user_id")
	}
}

func TestApplyNoteUpdateClearsThumbnail(t *testing.T) {
	doc := map[string]interface{}{
		"_id":            "note:n-1",
		"_rev":           "2-def",
		"thumbnail_path": "u1/notes/n-1/cover",
	}

	applyNoteUpdate(doc, &domain.Note{ID: "n-1", Title: "Plain"})

	if _, ok := doc["thumbnail_path"]; ok {
		t.Error("empty thumbnail must remove the stored field")
	}
}

func TestApplyUserUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	updatedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	doc := map[string]interface{}{
		"_id":      "user:u1",
		"_rev":     "5-ghi",
		"password": "hashed-secret",
	}
	user := &domain.User{
		ID:          "u1",
		Username:    "dana",
		Email:       "dana@example.com",
		DisplayName: "Dana",
		Upgraded:    true,
		UpdatedAt:   updatedAt,
	}

	applyUserUpdate(doc, user)

	if doc["password"] != "hashed-secret" {
		t.Error("empty password must leave the stored hash untouched")
	}
	if got := doc["updated_at"]; got != updatedAt {
		t.Errorf("expected stored updated_at %v, got %v", updatedAt, got)
	}
	if doc["upgraded"] != true {
		t.Error("upgraded flag not persisted")
	}
}
