package domain

// CoverAction describes what the save workflow should do with the note's
// cover image.
type CoverAction string

const (
	// CoverKeep leaves the stored cover reference untouched.
	CoverKeep CoverAction = "keep"
	// CoverReplace uploads the draft's cover bytes to the note's fixed
	// cover path, overwriting any previous version in place.
	CoverReplace CoverAction = "replace"
	// CoverClear removes the cover reference from the note. The stored
	// object is not deleted.
	CoverClear CoverAction = "clear"
)

// FileUpload is a file freshly selected in the editor, not yet uploaded.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// CoverChange carries the cover decision for one save. Data is only set
// when Action is CoverReplace.
type CoverChange struct {
	Action      CoverAction
	ContentType string
	Data        []byte
}

// NoteDraft is the in-memory, not-yet-persisted state of a note being
// composed or edited. The save workflow turns a draft into a persisted
// note in one fixed sequence of steps.
type NoteDraft struct {
	// NoteID is empty for a brand-new draft; the note acquires an id at
	// first save, not at editor-open time.
	NoteID  string
	Title   string
	Content string

	Cover CoverChange

	// KeptAttachments are the previously uploaded attachments the user
	// did not remove during this editing session. They come first in the
	// merged list, in their original order.
	KeptAttachments []Attachment

	// NewFiles are uploaded one at a time during save, in order, and
	// appended after the kept attachments.
	NewFiles []FileUpload
}
