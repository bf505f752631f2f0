package client

import (
	"strings"
	"sync"
	"time"

	"notable-server/internal/domain"
)

// DefaultSearchDelay is how long the search controller waits after the
// last keystroke before issuing a query.
const DefaultSearchDelay = 300 * time.Millisecond

// SearchBackend runs a note search. *Client satisfies it.
type SearchBackend interface {
	SearchNotes(query string) ([]*domain.NoteResponse, error)
}

// SearchController debounces a search box. Every SetQuery rearms a
// single timer; only the query that survives a full quiet period reaches
// the backend, and results from a superseded query are discarded even if
// they arrive late.
type SearchController struct {
	backend SearchBackend
	delay   time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	query     string
	results   []*domain.NoteResponse
	searching bool
	visible   bool

	// onUpdate, when set, fires after every state change so a UI can
	// re-render. Called without the lock held.
	onUpdate func()
}

func NewSearchController(backend SearchBackend, delay time.Duration) *SearchController {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchController{
		backend: backend,
		delay:   delay,
	}
}

func (c *SearchController) OnUpdate(fn func()) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// SetQuery records a keystroke. The pending timer, if any, is cancelled
// and a fresh quiet period starts.
func (c *SearchController) SetQuery(query string) {
	c.mu.Lock()
	c.query = query
	c.gen++
	gen := c.gen

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.fire(gen, query)
	})
	c.mu.Unlock()

	c.notify()
}

func (c *SearchController) fire(gen uint64, query string) {
	trimmed := strings.TrimSpace(query)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	if trimmed == "" {
		c.results = nil
		c.searching = false
		c.visible = false
		c.mu.Unlock()
		c.notify()
		return
	}

	c.searching = true
	c.visible = true
	c.mu.Unlock()
	c.notify()

	results, err := c.backend.SearchNotes(trimmed)

	c.mu.Lock()
	// A newer keystroke arrived while the request was in flight.
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.searching = false
	if err != nil {
		c.results = nil
	} else {
		c.results = results
	}
	c.mu.Unlock()
	c.notify()
}

// Hide collapses the results panel without touching the query, results,
// or a pending timer. Used when focus moves away from the search surface.
func (c *SearchController) Hide() {
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()

	c.notify()
}

// Clear resets the search box: pending timer cancelled, results dropped,
// panel hidden.
func (c *SearchController) Clear() {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.query = ""
	c.results = nil
	c.searching = false
	c.visible = false
	c.mu.Unlock()

	c.notify()
}

// Select handles a click on a search result and returns the route to
// navigate to. Unauthenticated sessions go to the login page instead of
// the note.
func (c *SearchController) Select(noteID string, authenticated bool) string {
	c.Clear()
	if !authenticated {
		return RouteLogin
	}
	return RouteNoteDetail(noteID)
}

func (c *SearchController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *SearchController) Results() []*domain.NoteResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

func (c *SearchController) Searching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searching
}

// Visible reports whether the results panel should be shown.
func (c *SearchController) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *SearchController) notify() {
	c.mu.Lock()
	fn := c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
