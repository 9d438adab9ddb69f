package eventstore

import (
	"time"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

// Op names a mutation issued against the remote collection.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Action is the audit/notification name of the operation.
func (o Op) Action() string {
	switch o {
	case OpCreate:
		return "EVENT_CREATED"
	case OpUpdate:
		return "EVENT_UPDATED"
	case OpDelete:
		return "EVENT_DELETED"
	default:
		return "EVENT_" + string(o)
	}
}

func (o Op) gerund() string {
	switch o {
	case OpCreate:
		return "adding"
	case OpUpdate:
		return "updating"
	case OpDelete:
		return "deleting"
	default:
		return string(o)
	}
}

// Ack acknowledges that a write was issued. It says nothing about whether
// the write reached the remote collection.
type Ack struct {
	RequestID string    `json:"request_id"`
	Op        Op        `json:"op"`
	EventID   string    `json:"event_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Outcome is the final result of an issued write. Origin is the client IP
// the audit middleware put on the issuing context. Title is the event's
// title when the write was issued, so consumers can name it before any
// snapshot shows the change.
type Outcome struct {
	RequestID string
	Op        Op
	EventID   string
	Title     string
	Origin    string
	Attempts  int
	Err       error
}

// Failed reports whether the write was dropped.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

type Kind string

const (
	KindSnapshot     Kind = "snapshot"
	KindWriteApplied Kind = "write_applied"
	KindWriteFailed  Kind = "write_failed"
	KindStreamError  Kind = "stream_error"
)

// Notification is one message on a store subscription. Events is set for
// KindSnapshot and must be treated as read-only; Outcome is set for write
// kinds; Err for KindStreamError.
type Notification struct {
	Kind    Kind
	Events  []event.Event
	Outcome *Outcome
	Err     error
}
