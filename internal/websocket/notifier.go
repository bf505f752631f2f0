package websocket

import (
	"log"

	"notable-server/internal/domain"
)

// Notifier translates note service events into websocket pushes. Failures
// are logged only; realtime fanout never blocks a write path.
type Notifier struct {
	manager *Manager
}

func NewNotifier(manager *Manager) *Notifier {
	return &Notifier{manager: manager}
}

func (n *Notifier) NoteCreated(userID string, note *domain.NoteResponse) {
	n.broadcast(userID, TypeNoteCreated, &NoteEventPayload{
		NoteID:    note.ID,
		Title:     note.Title,
		UpdatedAt: note.UpdatedAt,
	})
}

func (n *Notifier) NoteUpdated(userID string, note *domain.NoteResponse) {
	n.broadcast(userID, TypeNoteUpdated, &NoteEventPayload{
		NoteID:    note.ID,
		Title:     note.Title,
		UpdatedAt: note.UpdatedAt,
	})
}

func (n *Notifier) NoteDeleted(userID, noteID string) {
	n.broadcast(userID, TypeNoteDeleted, &NoteEventPayload{NoteID: noteID})
}

func (n *Notifier) broadcast(userID string, msgType MessageType, payload *NoteEventPayload) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Printf("error building %s message: %v", msgType, err)
		return
	}

	if err := n.manager.BroadcastToUser(userID, msg); err != nil {
		log.Printf("error broadcasting %s: %v", msgType, err)
	}
}
