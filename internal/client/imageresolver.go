package client

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"notable-server/internal/storage"
)

// URLSource turns a private storage path into a temporary URL. *Client
// satisfies it.
type URLSource interface {
	SignedURL(path string) (string, error)
}

type resolvedURL struct {
	url       string
	expiresAt time.Time
}

// ImageResolver resolves storage paths into displayable URLs and caches
// the results so scrolling through a note list does not re-sign the same
// covers over and over. Entries expire before the server-side URL does,
// so a cache hit is always still servable.
type ImageResolver struct {
	source URLSource
	cache  *lru.Cache[string, resolvedURL]
	ttl    time.Duration
	now    func() time.Time
}

func NewImageResolver(source URLSource, cacheSize int, ttl time.Duration) (*ImageResolver, error) {
	cache, err := lru.New[string, resolvedURL](cacheSize)
	if err != nil {
		return nil, err
	}

	return &ImageResolver{
		source: source,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Resolve maps a stored reference to a URL an <img> tag could load.
// External references pass through untouched, an empty reference stays
// empty, and everything else goes through the signing endpoint.
func (r *ImageResolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if storage.IsExternalRef(path) {
		return path, nil
	}

	if cached, ok := r.cache.Get(path); ok {
		if r.now().Before(cached.expiresAt) {
			return cached.url, nil
		}
		r.cache.Remove(path)
	}

	url, err := r.source.SignedURL(path)
	if err != nil {
		return "", err
	}
	if url != "" {
		r.cache.Add(path, resolvedURL{url: url, expiresAt: r.now().Add(r.ttl)})
	}
	return url, nil
}

// SlotState is where an image slot is in its loading lifecycle.
type SlotState int

const (
	// SlotLoading means a resolution is in flight; render a placeholder.
	SlotLoading SlotState = iota
	// SlotResolved means URL holds a loadable address.
	SlotResolved
	// SlotUnresolved means there is nothing to show beyond the fallback:
	// no reference, or resolution failed.
	SlotUnresolved
)

// ImageSlot tracks one on-screen image through reference changes. Loads
// are asynchronous; a slot started for an older reference can never
// overwrite the state of a newer one.
type ImageSlot struct {
	resolver *ImageResolver
	fallback string

	mu    sync.Mutex
	gen   uint64
	state SlotState
	url   string
	done  sync.WaitGroup
}

func NewImageSlot(resolver *ImageResolver, fallback string) *ImageSlot {
	return &ImageSlot{
		resolver: resolver,
		fallback: fallback,
		state:    SlotUnresolved,
		url:      fallback,
	}
}

// Load starts resolving path for this slot. Calling it again before the
// previous resolution finishes invalidates that resolution.
func (s *ImageSlot) Load(path string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	if path == "" {
		s.state = SlotUnresolved
		s.url = s.fallback
		s.mu.Unlock()
		return
	}

	s.state = SlotLoading
	s.url = ""
	s.mu.Unlock()

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		url, err := s.resolver.Resolve(path)
		s.apply(gen, url, err)
	}()
}

func (s *ImageSlot) apply(gen uint64, url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer Load superseded this resolution.
	if gen != s.gen {
		return
	}

	if err != nil || url == "" {
		s.state = SlotUnresolved
		s.url = s.fallback
		return
	}

	s.state = SlotResolved
	s.url = url
}

func (s *ImageSlot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// URL returns what the slot should currently display. Empty while
// loading.
func (s *ImageSlot) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Wait blocks until every resolution started so far has settled.
func (s *ImageSlot) Wait() {
	s.done.Wait()
}
