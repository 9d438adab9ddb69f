package event

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrStartRequired  = errors.New("start is required")
	ErrInvalidTime    = errors.New("invalid date/time, use YYYY-MM-DD or RFC 3339")
	ErrEndBeforeStart = errors.New("end is before start")
	ErrEmptyPatch     = errors.New("patch changes no field")
	ErrIDRequired     = errors.New("event id is required")
)

// ============================
// 🔷 Event is a single calendar entry as delivered by the remote collection.
// Start and End keep the exact string the calendar grid produced.
type Event struct {
	ID          string `firestore:"-" json:"id"`
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	Location    string `firestore:"location" json:"location"`
	Start       string `firestore:"start" json:"start"`
	End         string `firestore:"end" json:"end"`
	AllDay      bool   `firestore:"allDay" json:"allDay"`
}

// ============================
// 🟡 Fields is an Event without its id, the payload of a create request.
type Fields struct {
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	Location    string `firestore:"location" json:"location"`
	Start       string `firestore:"start" json:"start"`
	End         string `firestore:"end" json:"end"`
	AllDay      bool   `firestore:"allDay" json:"allDay"`
}

// ============================
// 🟠 Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
	AllDay      *bool   `json:"allDay,omitempty"`
}

// Fields returns the event without its id.
func (e Event) Fields() Fields {
	return Fields{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Start:       e.Start,
		End:         e.End,
		AllDay:      e.AllDay,
	}
}

// WithID attaches a server-assigned id.
func (f Fields) WithID(id string) Event {
	return Event{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		Start:       f.Start,
		End:         f.End,
		AllDay:      f.AllDay,
	}
}

// Validate checks the fields required to create an event.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(f.Start) == "" {
		return ErrStartRequired
	}
	start, err := ParseTime(f.Start)
	if err != nil {
		return err
	}
	if f.End == "" {
		return nil
	}
	end, err := ParseTime(f.End)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Start == nil && p.End == nil && p.AllDay == nil
}

// Validate checks that every supplied field is acceptable on its own.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Start != nil {
		if strings.TrimSpace(*p.Start) == "" {
			return ErrStartRequired
		}
		if _, err := ParseTime(*p.Start); err != nil {
			return err
		}
	}
	if p.End != nil && *p.End != "" {
		if _, err := ParseTime(*p.End); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns a copy of e with the supplied fields replaced.
func (p Patch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
	return e
}

// Values returns the supplied fields keyed by their document field name.
func (p Patch) Values() map[string]interface{} {
	values := make(map[string]interface{})
	if p.Title != nil {
		values["title"] = *p.Title
	}
	if p.Description != nil {
		values["description"] = *p.Description
	}
	if p.Location != nil {
		values["location"] = *p.Location
	}
	if p.Start != nil {
		values["start"] = *p.Start
	}
	if p.End != nil {
		values["end"] = *p.End
	}
	if p.AllDay != nil {
		values["allDay"] = *p.AllDay
	}
	return values
}

// StartTime parses Start.
func (e Event) StartTime() (time.Time, error) {
	return ParseTime(e.Start)
}

// EndTime parses End. An event without an end is an instant.
func (e Event) EndTime() (time.Time, error) {
	if e.End == "" {
		return ParseTime(e.Start)
	}
	return ParseTime(e.End)
}

// StringPtr is a helper for building patches.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr is a helper for building patches.
func BoolPtr(b bool) *bool {
	return &b
}
