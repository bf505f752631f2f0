package client

import "fmt"

// Application routes. Controllers return these so navigation decisions
// stay testable outside any UI layer.
const (
	RouteHome    = "/"
	RouteLogin   = "/login"
	RouteSignup  = "/signup"
	RouteNotes   = "/notes"
	RouteCreate  = "/create"
	RouteAccount = "/account"
)

func RouteNoteDetail(noteID string) string {
	return fmt.Sprintf("/note/%s", noteID)
}

func RouteNoteEdit(noteID string) string {
	return fmt.Sprintf("/note/%s/edit", noteID)
}
