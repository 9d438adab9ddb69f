package calendar

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/internal/kvcache"
)

type session struct {
	page     *Page
	lastSeen time.Time
}

// Sessions keeps one Page per browser session. Idle pages are evicted after
// ttl; their preferences survive in storage.
type Sessions struct {
	store   EventStore
	storage kvcache.Storage
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	pages map[string]*session
}

func NewSessions(store EventStore, storage kvcache.Storage, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		store:   store,
		storage: storage,
		ttl:     ttl,
		now:     time.Now,
		pages:   make(map[string]*session),
	}
}

// Page returns the page of session id, creating it on first use.
func (s *Sessions) Page(ctx context.Context, id string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.pages[id]; ok {
		sess.lastSeen = s.now()
		return sess.page
	}

	prefs := kvcache.New(ctx, s.storage, preferencesKey(id), DefaultPreferences())
	page := NewPage(s.store, prefs)
	s.pages[id] = &session{page: page, lastSeen: s.now()}
	return page
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.pages {
		if sess.lastSeen.Before(cutoff) {
			delete(s.pages, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) pagesSnapshot() []*Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]*Page, 0, len(s.pages))
	for _, sess := range s.pages {
		pages = append(pages, sess.page)
	}
	return pages
}

// Run hands write outcomes to the pages that issued them and sweeps idle
// sessions until ctx is done or notifications closes.
func (s *Sessions) Run(ctx context.Context, notifications <-chan eventstore.Notification) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if n.Outcome == nil {
				continue
			}
			for _, page := range s.pagesSnapshot() {
				page.Observe(n)
			}
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.Printf("🧹 Evicted %d idle calendar session(s)", removed)
			}
		}
	}
}
