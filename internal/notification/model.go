package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sharath018/event-calendar-backend/internal/eventstore"
)

// Change describes one write the remote collection accepted.
type Change struct {
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	Attempts  int       `json:"attempts"`
	AppliedAt time.Time `json:"applied_at"`
}

// Channel delivers a change to one downstream audience.
type Channel interface {
	Name() string
	Send(ctx context.Context, change Change) error
}

// Subject is the short human title for a change.
func (c Change) Subject() string {
	switch c.Action {
	case eventstore.OpCreate.Action():
		return "Event added"
	case eventstore.OpUpdate.Action():
		return "Event updated"
	case eventstore.OpDelete.Action():
		return "Event deleted"
	default:
		return "Calendar changed"
	}
}

// Body names the event when its title is known.
func (c Change) Body() string {
	if c.Title == "" {
		return fmt.Sprintf("%s (%s)", c.Subject(), c.EventID)
	}
	return fmt.Sprintf("%s: %s", c.Subject(), c.Title)
}
