package domain

import "testing"

func TestNoteIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		note  Note
		empty bool
	}{
		{"no title no content", Note{}, true},
		{"editor empty paragraph", Note{Content: EmptyContent}, true},
		{"title only", Note{Title: "Trip Plan"}, false},
		{"content only", Note{Content: "<p>hello</p>"}, false},
		{"title with empty paragraph", Note{Title: "Trip Plan", Content: EmptyContent}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestNewNoteResponseNilSlices(t *testing.T) {
	resp := NewNoteResponse(&Note{ID: "n-1"})
	if resp.Attachments == nil {
		t.Error("attachments must serialize as [], not null")
	}
	if resp.Tags == nil {
		t.Error("tags must serialize as [], not null")
	}
}
