package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
)

const defaultRecentLimit = 50

// Service turns applied writes from an event store subscription into
// changes, fans them out to every channel and keeps the most recent ones.
type Service struct {
	channels []Channel
	now      func() time.Time

	mu     sync.Mutex
	recent []Change
	limit  int
	titles map[string]string
	// titles from the snapshot before, so a delete can still be named once
	// its event has left the latest one
	prevTitles map[string]string
}

func NewService(channels ...Channel) *Service {
	return &Service{
		channels:   channels,
		now:        time.Now,
		limit:      defaultRecentLimit,
		titles:     map[string]string{},
		prevTitles: map[string]string{},
	}
}

// Channels lists the names of the configured channels.
func (s *Service) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Watch consumes notifications until ctx is done or the channel closes.
func (s *Service) Watch(ctx context.Context, notifications <-chan eventstore.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			switch n.Kind {
			case eventstore.KindSnapshot:
				s.remember(n.Events)
			case eventstore.KindWriteApplied:
				if n.Outcome != nil {
					s.Publish(ctx, s.changeFor(*n.Outcome))
				}
			}
		}
	}
}

func (s *Service) remember(events []event.Event) {
	titles := make(map[string]string, len(events))
	for _, e := range events {
		titles[e.ID] = e.Title
	}

	s.mu.Lock()
	s.prevTitles = s.titles
	s.titles = titles
	s.mu.Unlock()
}

// changeFor names the event by the title captured when the write was
// issued, falling back to the latest snapshots for outcomes without one.
func (s *Service) changeFor(outcome eventstore.Outcome) Change {
	title := outcome.Title
	if title == "" {
		s.mu.Lock()
		var ok bool
		if title, ok = s.titles[outcome.EventID]; !ok {
			title = s.prevTitles[outcome.EventID]
		}
		s.mu.Unlock()
	}

	return Change{
		RequestID: outcome.RequestID,
		Action:    outcome.Op.Action(),
		EventID:   outcome.EventID,
		Title:     title,
		Origin:    outcome.Origin,
		Attempts:  outcome.Attempts,
		AppliedAt: s.now().UTC(),
	}
}

// Publish records the change and sends it to every channel. A failing
// channel is logged and does not stop the others.
func (s *Service) Publish(ctx context.Context, change Change) {
	s.mu.Lock()
	s.recent = append(s.recent, change)
	if len(s.recent) > s.limit {
		s.recent = s.recent[len(s.recent)-s.limit:]
	}
	s.mu.Unlock()

	for _, ch := range s.channels {
		if err := ch.Send(ctx, change); err != nil {
			log.Printf("❌ Failed to send %s via %s: %v", change.RequestID, ch.Name(), err)
		}
	}
}

// Recent returns up to limit changes, newest first.
func (s *Service) Recent(limit int) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]Change, 0, limit)
	for i := len(s.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recent[i])
	}
	return out
}
