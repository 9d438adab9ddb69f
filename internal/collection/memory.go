package collection

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

// Memory is an in-process collection. It keeps insertion order and pushes a
// fresh snapshot to every subscription after each write.
type Memory struct {
	mu    sync.Mutex
	order []string
	docs  map[string]event.Event
	subs  map[*memorySubscription]struct{}
	fail  []error
	newID func() string
}

func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[string]event.Event),
		subs:  make(map[*memorySubscription]struct{}),
		newID: uuid.NewString,
	}
}

// FailNext makes the next len(errs) writes fail with the given errors, in order.
func (m *Memory) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = append(m.fail, errs...)
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *Memory) Subscribe(ctx context.Context) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySubscription{
		owner:     m,
		snapshots: make(chan Snapshot, 1),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.subs[sub] = struct{}{}
	deliver(sub.snapshots, m.snapshotLocked())
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Stop()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func (m *Memory) NewID() string {
	return m.newID()
}

func (m *Memory) Create(ctx context.Context, id string, fields event.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.nextFailureLocked(ctx); err != nil {
		return err
	}

	if _, ok := m.docs[id]; ok {
		return nil
	}
	m.order = append(m.order, id)
	m.docs[id] = fields.WithID(id)
	m.publishLocked()
	return nil
}

// Add creates fields under a fresh id and returns it.
func (m *Memory) Add(ctx context.Context, fields event.Fields) (string, error) {
	id := m.NewID()
	if err := m.Create(ctx, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Update(ctx context.Context, id string, patch event.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.nextFailureLocked(ctx); err != nil {
		return err
	}

	current, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	m.docs[id] = patch.Apply(current)
	m.publishLocked()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.nextFailureLocked(ctx); err != nil {
		return err
	}

	if _, ok := m.docs[id]; !ok {
		return nil
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.publishLocked()
	return nil
}

func (m *Memory) nextFailureLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.fail) == 0 {
		return nil
	}
	err := m.fail[0]
	m.fail = m.fail[1:]
	return err
}

func (m *Memory) snapshotLocked() Snapshot {
	events := make([]event.Event, 0, len(m.order))
	for _, id := range m.order {
		events = append(events, m.docs[id])
	}
	return Snapshot{Events: events, ReadTime: time.Now()}
}

func (m *Memory) publishLocked() {
	snap := m.snapshotLocked()
	for sub := range m.subs {
		deliver(sub.snapshots, snap)
	}
}

type memorySubscription struct {
	owner     *Memory
	snapshots chan Snapshot
	errs      chan error
	done      chan struct{}
	once      sync.Once
}

func (s *memorySubscription) Snapshots() <-chan Snapshot { return s.snapshots }
func (s *memorySubscription) Errors() <-chan error       { return s.errs }

// Stop detaches the subscription and closes its channels.
func (s *memorySubscription) Stop() {
	s.once.Do(func() {
		s.owner.mu.Lock()
		delete(s.owner.subs, s)
		close(s.snapshots)
		close(s.errs)
		s.owner.mu.Unlock()
		close(s.done)
	})
}

// Fail pushes a stream error to every live subscription. Used to exercise
// re-subscription paths.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subs {
		select {
		case sub.errs <- err:
		default:
		}
	}
}
