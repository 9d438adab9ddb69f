package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharath018/event-calendar-backend/internal/collection"
	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/middleware"
)

var (
	ErrAlreadyStarted = errors.New("event store already started")
	ErrStopped        = errors.New("event store stopped")

	errStreamClosed = errors.New("snapshot stream closed")
)

const notificationBuffer = 64

// Store mirrors the remote event collection through a single live
// subscription and is the only way to mutate it. The snapshot is replaced
// as a whole on every delivery; writes are never applied locally.
type Store struct {
	coll             collection.Collection
	retry            RetryPolicy
	writeTimeout     time.Duration
	resubscribeDelay time.Duration

	mu      sync.RWMutex
	events  []event.Event
	loading bool

	subsMu sync.Mutex
	subs   map[chan Notification]struct{}
	closed bool

	lifeMu  sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	writes sync.WaitGroup
}

type Option func(*Store)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Store) { s.retry = p }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

func WithResubscribeDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.resubscribeDelay = d
		}
	}
}

func New(coll collection.Collection, opts ...Option) *Store {
	s := &Store{
		coll:             coll,
		retry:            DefaultRetryPolicy(),
		writeTimeout:     15 * time.Second,
		resubscribeDelay: 5 * time.Second,
		events:           []event.Event{},
		loading:          true,
		subs:             make(map[chan Notification]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===========================
// 🔄 Lifecycle

// Start attaches the live subscription. It may succeed only once.
func (s *Store) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub, err := s.coll.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to events: %w", err)
	}

	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, sub)

	log.Println("✅ Event store subscribed to remote collection")
	return nil
}

// Stop tears the subscription down and closes every notification channel.
// Writes already issued keep running; use Wait to block on them.
func (s *Store) Stop() {
	s.lifeMu.Lock()
	if s.stopped {
		s.lifeMu.Unlock()
		return
	}
	s.stopped = true
	started, cancel, done := s.started, s.cancel, s.done
	s.lifeMu.Unlock()

	if started {
		cancel()
		<-done
	}

	s.subsMu.Lock()
	s.closed = true
	for ch := range s.subs {
		close(ch)
		delete(s.subs, ch)
	}
	s.subsMu.Unlock()

	log.Println("ℹ️ Event store unsubscribed")
}

// Wait blocks until every issued write has finished.
func (s *Store) Wait() {
	s.writes.Wait()
}

func (s *Store) run(ctx context.Context, sub collection.Subscription) {
	defer close(s.done)

	for {
		err := s.consume(ctx, sub)
		sub.Stop()
		if ctx.Err() != nil {
			return
		}

		log.Printf("⚠️ Event subscription lost: %v", err)
		s.broadcast(Notification{Kind: KindStreamError, Err: err})

		sub = s.resubscribe(ctx)
		if sub == nil {
			return
		}
	}
}

func (s *Store) consume(ctx context.Context, sub collection.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return errStreamClosed
			}
			s.apply(snap)
		case err, ok := <-sub.Errors():
			if !ok {
				return errStreamClosed
			}
			return err
		}
	}
}

func (s *Store) resubscribe(ctx context.Context) collection.Subscription {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.resubscribeDelay):
		}

		sub, err := s.coll.Subscribe(ctx)
		if err == nil {
			log.Println("✅ Event subscription re-established")
			return sub
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("❌ Re-subscribing to events failed: %v", err)
		s.broadcast(Notification{Kind: KindStreamError, Err: err})
	}
}

// apply swaps in a delivered snapshot. Duplicate ids keep their first
// occurrence.
func (s *Store) apply(snap collection.Snapshot) {
	events := make([]event.Event, 0, len(snap.Events))
	seen := make(map[string]struct{}, len(snap.Events))
	for _, e := range snap.Events {
		if _, dup := seen[e.ID]; dup {
			log.Printf("⚠️ Snapshot contains duplicate event id %s, keeping the first", e.ID)
			continue
		}
		seen[e.ID] = struct{}{}
		events = append(events, e)
	}

	s.mu.Lock()
	s.events = events
	s.loading = false
	s.mu.Unlock()

	s.broadcast(Notification{Kind: KindSnapshot, Events: events})
}

// ===========================
// 📄 Reads

// Events returns a copy of the latest snapshot.
func (s *Store) Events() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Loading is true until the first snapshot arrives.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Get looks an event up in the latest snapshot.
func (s *Store) Get(id string) (event.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return event.Event{}, false
}

// ===========================
// 📡 Notifications

// Subscribe returns a channel of notifications. If a snapshot has already
// arrived it is delivered first. Call cancel to detach.
func (s *Store) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, notificationBuffer)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.mu.RLock()
	if !s.loading {
		ch <- Notification{Kind: KindSnapshot, Events: s.events}
	}
	s.mu.RUnlock()

	s.subs[ch] = struct{}{}
	return ch, func() { s.unsubscribe(ch) }
}

func (s *Store) unsubscribe(ch chan Notification) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *Store) broadcast(n Notification) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return
	}
	for ch := range s.subs {
		select {
		case ch <- n:
		default:
			log.Printf("⚠️ Dropping %s notification for a slow subscriber", n.Kind)
		}
	}
}

// ===========================
// 🎯 Writes

// AddEvent issues a create. Only validation errors are returned; the event
// appears once a snapshot containing it arrives.
func (s *Store) AddEvent(ctx context.Context, fields event.Fields) (Ack, error) {
	if err := fields.Validate(); err != nil {
		return Ack{}, err
	}
	// one id for every attempt, so a retry after a lost reply cannot
	// store the event twice
	id := s.coll.NewID()
	return s.issue(ctx, OpCreate, id, fields.Title, func(wctx context.Context) error {
		return s.coll.Create(wctx, id, fields)
	})
}

// UpdateEvent issues a partial update of the event with the given id.
func (s *Store) UpdateEvent(ctx context.Context, id string, patch event.Patch) (Ack, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ack{}, event.ErrIDRequired
	}
	if err := patch.Validate(); err != nil {
		return Ack{}, err
	}
	title := s.titleOf(id)
	if patch.Title != nil {
		title = *patch.Title
	}
	return s.issue(ctx, OpUpdate, id, title, func(wctx context.Context) error {
		return s.coll.Update(wctx, id, patch)
	})
}

// DeleteEvent issues a delete. Deleting an unknown id has no visible effect.
func (s *Store) DeleteEvent(ctx context.Context, id string) (Ack, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ack{}, event.ErrIDRequired
	}
	return s.issue(ctx, OpDelete, id, s.titleOf(id), func(wctx context.Context) error {
		return s.coll.Delete(wctx, id)
	})
}

func (s *Store) titleOf(id string) string {
	e, _ := s.Get(id)
	return e.Title
}

func (s *Store) issue(ctx context.Context, op Op, id, title string, write func(context.Context) error) (Ack, error) {
	s.lifeMu.Lock()
	stopped := s.stopped
	if !stopped {
		s.writes.Add(1)
	}
	s.lifeMu.Unlock()
	if stopped {
		return Ack{}, ErrStopped
	}

	ack := Ack{
		RequestID: uuid.NewString(),
		Op:        op,
		EventID:   id,
		IssuedAt:  time.Now(),
	}

	go func() {
		defer s.writes.Done()

		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
		defer cancel()

		attempts, err := s.retry.Do(wctx, write)
		outcome := Outcome{
			RequestID: ack.RequestID,
			Op:        op,
			EventID:   id,
			Title:     title,
			Origin:    middleware.ClientIPFrom(ctx),
			Attempts:  attempts,
			Err:       err,
		}

		if err != nil {
			log.Printf("❌ Error %s event %s after %d attempt(s): %v", op.gerund(), outcome.EventID, attempts, err)
			s.broadcast(Notification{Kind: KindWriteFailed, Outcome: &outcome})
			return
		}
		s.broadcast(Notification{Kind: KindWriteApplied, Outcome: &outcome})
	}()

	return ack, nil
}
