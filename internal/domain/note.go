package domain

import "time"

// EmptyContent is the serialized empty-paragraph sentinel the rich-text
// editor produces for a note with no body.
const EmptyContent = "<p><br></p>"

type Note struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	ThumbnailPath string       `json:"thumbnail_path,omitempty"`
	Attachments   []Attachment `json:"attachments"`
	Tags          []string     `json:"tags"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Attachment is a user-uploaded file linked to a note. The storage path
// doubles as the identifier: two attachments on the same note never share
// a path.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// IsEmpty reports whether the note carries no user content.
func (n *Note) IsEmpty() bool {
	return n.Title == "" && (n.Content == "" || n.Content == EmptyContent)
}

type CreateNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdateNoteRequest merges field-by-field into the persisted note. Nil
// fields are left untouched; ClearThumbnail distinguishes "remove the
// cover" from "leave it alone".
type UpdateNoteRequest struct {
	Title          *string       `json:"title"`
	Content        *string       `json:"content"`
	ThumbnailPath  *string       `json:"thumbnail_path"`
	ClearThumbnail bool          `json:"clear_thumbnail"`
	Attachments    *[]Attachment `json:"attachments"`
	Tags           *[]string     `json:"tags"`
}

type NoteResponse struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	ThumbnailPath string       `json:"thumbnail_path,omitempty"`
	Attachments   []Attachment `json:"attachments"`
	Tags          []string     `json:"tags"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewNoteResponse(n *Note) *NoteResponse {
	attachments := n.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &NoteResponse{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		ThumbnailPath: n.ThumbnailPath,
		Attachments:   attachments,
		Tags:          tags,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}
