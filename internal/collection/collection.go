package collection

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

var ErrNotFound = errors.New("document not found")

// Snapshot is the complete ordered list of documents at ReadTime.
type Snapshot struct {
	Events   []event.Event
	ReadTime time.Time
}

// Subscription is a live stream of snapshots. Deliveries are ordered;
// intermediate snapshots may be coalesced because each one is complete.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Errors() <-chan error
	Stop()
}

// Collection is the remote document collection holding the events.
// Ids are always assigned by the collection through NewID. Create stores a
// document under such an id; repeating it for an id that already exists
// succeeds without writing again, so a create can be retried safely.
type Collection interface {
	Subscribe(ctx context.Context) (Subscription, error)
	NewID() string
	Create(ctx context.Context, id string, fields event.Fields) error
	Update(ctx context.Context, id string, patch event.Patch) error
	Delete(ctx context.Context, id string) error
}

// deliver replaces whatever is still buffered in ch with snap. The caller
// must be the only sender on ch.
func deliver(ch chan Snapshot, snap Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
