package collection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

// Firestore is a Collection backed by a Cloud Firestore collection.
type Firestore struct {
	client *firestore.Client
	name   string
}

func NewFirestore(client *firestore.Client, name string) *Firestore {
	return &Firestore{client: client, name: name}
}

func (f *Firestore) ref() *firestore.CollectionRef {
	return f.client.Collection(f.name)
}

func (f *Firestore) Subscribe(ctx context.Context) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		snapshots: make(chan Snapshot, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
	}

	it := f.ref().Snapshots(subCtx)
	go sub.run(subCtx, it)

	log.Printf("✅ Firestore listener attached to collection %q", f.name)
	return sub, nil
}

// NewID reserves a Firestore auto id without writing anything.
func (f *Firestore) NewID() string {
	return f.ref().NewDoc().ID
}

func (f *Firestore) Create(ctx context.Context, id string, fields event.Fields) error {
	if _, err := f.ref().Doc(id).Create(ctx, fields); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			// an earlier attempt committed before its reply was lost
			return nil
		}
		return fmt.Errorf("firestore create %s: %w", id, err)
	}
	return nil
}

func (f *Firestore) Update(ctx context.Context, id string, patch event.Patch) error {
	values := patch.Values()
	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: values[path]})
	}

	if _, err := f.ref().Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("firestore update %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("firestore update %s: %w", id, err)
	}
	return nil
}

// Delete removes the document. Firestore treats deleting a missing
// document as success, which matches the collection contract.
func (f *Firestore) Delete(ctx context.Context, id string) error {
	if _, err := f.ref().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s: %w", id, err)
	}
	return nil
}

type firestoreSubscription struct {
	snapshots chan Snapshot
	errs      chan error
	cancel    context.CancelFunc
	once      sync.Once
}

func (s *firestoreSubscription) Snapshots() <-chan Snapshot { return s.snapshots }
func (s *firestoreSubscription) Errors() <-chan error       { return s.errs }

func (s *firestoreSubscription) Stop() {
	s.once.Do(s.cancel)
}

func (s *firestoreSubscription) run(ctx context.Context, it *firestore.QuerySnapshotIterator) {
	defer func() {
		it.Stop()
		close(s.snapshots)
		close(s.errs)
	}()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return
			}
			s.fail(err)
			return
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			s.fail(err)
			return
		}

		events := make([]event.Event, 0, len(docs))
		for _, doc := range docs {
			var e event.Event
			if err := doc.DataTo(&e); err != nil {
				log.Printf("⚠️ Skipping unreadable event document %s: %v", doc.Ref.ID, err)
				continue
			}
			e.ID = doc.Ref.ID
			events = append(events, e)
		}

		deliver(s.snapshots, Snapshot{Events: events, ReadTime: qs.ReadTime})
	}
}

func (s *firestoreSubscription) fail(err error) {
	select {
	case s.errs <- fmt.Errorf("firestore listener: %w", err):
	default:
	}
}
