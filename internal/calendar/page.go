package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/internal/kvcache"
)

var (
	ErrDialogClosed  = errors.New("no dialog is open")
	ErrEventNotFound = errors.New("event not found")
	ErrNoSelection   = errors.New("select a date range before creating an event")
	ErrUnknownField  = errors.New("unknown form field")
)

// EventStore is the part of the event store a page drives.
type EventStore interface {
	Events() []event.Event
	Loading() bool
	Get(id string) (event.Event, bool)
	AddEvent(ctx context.Context, fields event.Fields) (eventstore.Ack, error)
	UpdateEvent(ctx context.Context, id string, patch event.Patch) (eventstore.Ack, error)
	DeleteEvent(ctx context.Context, id string) (eventstore.Ack, error)
}

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Selection is a date range picked on the grid, held until the create
// dialog is saved.
type Selection struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	AllDay bool   `json:"allDay"`
}

// Form holds the in-progress dialog values. Start and end are never edited
// through it.
type Form struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Confirmer answers the blocking confirmation prompt shown before a delete.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// DeletePrompt is the confirmation text for deleting an event.
func DeletePrompt(title string) string {
	return fmt.Sprintf("Are you sure you want to delete '%s'?", title)
}

// ===========================
// 🗓️ Page

// Page is the transient presentation state of one calendar session: the
// add/edit dialog, the pending selection and the sidebar toggles. Events
// themselves are always read from the store.
type Page struct {
	store EventStore
	prefs *kvcache.Value[Preferences]

	mu         sync.Mutex
	open       bool
	mode       Mode
	editingID  string
	form       Form
	selection  *Selection
	expandedID string
	menuID     string

	pending map[string]eventstore.Op
	notice  string
}

func NewPage(store EventStore, prefs *kvcache.Value[Preferences]) *Page {
	return &Page{
		store:   store,
		prefs:   prefs,
		pending: make(map[string]eventstore.Op),
	}
}

// SelectRange opens a blank create dialog and holds sel until save. An open
// dialog is replaced.
func (p *Page) SelectRange(sel Selection) error {
	if strings.TrimSpace(sel.Start) == "" {
		return event.ErrStartRequired
	}
	if _, err := event.ParseTime(sel.Start); err != nil {
		return err
	}
	if sel.End != "" {
		if _, err := event.ParseTime(sel.End); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.mode = ModeCreate
	p.editingID = ""
	p.form = Form{}
	p.selection = &sel
	return nil
}

// OpenEvent opens the edit dialog prefilled from the current snapshot and
// closes the overflow menu.
func (p *Page) OpenEvent(id string) error {
	ev, ok := p.store.Get(id)
	if !ok {
		return ErrEventNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.mode = ModeEdit
	p.editingID = ev.ID
	p.form = Form{Title: ev.Title, Description: ev.Description, Location: ev.Location}
	p.selection = nil
	p.menuID = ""
	return nil
}

func (p *Page) SetForm(f Form) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrDialogClosed
	}
	p.form = f
	return nil
}

// SetField changes one form value: title, description or location.
func (p *Page) SetField(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrDialogClosed
	}
	switch name {
	case "title":
		p.form.Title = value
	case "description":
		p.form.Description = value
	case "location":
		p.form.Location = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// Save submits the dialog. A blank title keeps the dialog open and issues
// nothing. On success the dialog closes and its state resets.
func (p *Page) Save(ctx context.Context) (eventstore.Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return eventstore.Ack{}, ErrDialogClosed
	}
	if strings.TrimSpace(p.form.Title) == "" {
		return eventstore.Ack{}, event.ErrTitleRequired
	}

	var (
		ack eventstore.Ack
		err error
	)
	switch p.mode {
	case ModeEdit:
		ack, err = p.store.UpdateEvent(ctx, p.editingID, event.Patch{
			Title:       event.StringPtr(p.form.Title),
			Description: event.StringPtr(p.form.Description),
			Location:    event.StringPtr(p.form.Location),
		})
	default:
		if p.selection == nil {
			return eventstore.Ack{}, ErrNoSelection
		}
		ack, err = p.store.AddEvent(ctx, event.Fields{
			Title:       p.form.Title,
			Description: p.form.Description,
			Location:    p.form.Location,
			Start:       p.selection.Start,
			End:         p.selection.End,
			AllDay:      p.selection.AllDay,
		})
	}
	if err != nil {
		return eventstore.Ack{}, err
	}

	p.pending[ack.RequestID] = ack.Op
	p.resetLocked()
	return ack, nil
}

// Close discards the dialog, its form values and the pending selection.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Page) resetLocked() {
	p.open = false
	p.mode = ""
	p.editingID = ""
	p.form = Form{}
	p.selection = nil
}

// DropEvent moves or resizes an event. Only start and end change.
func (p *Page) DropEvent(ctx context.Context, id, start, end string) (eventstore.Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ack, err := p.store.UpdateEvent(ctx, id, event.Patch{
		Start: event.StringPtr(start),
		End:   event.StringPtr(end),
	})
	if err != nil {
		return eventstore.Ack{}, err
	}
	p.pending[ack.RequestID] = ack.Op
	return ack, nil
}

// Delete asks c to confirm and deletes the event only on a yes. The overflow
// menu closes either way. The prompt blocks without holding the page lock.
func (p *Page) Delete(ctx context.Context, id string, c Confirmer) (eventstore.Ack, bool, error) {
	ev, ok := p.store.Get(id)
	if !ok {
		p.closeMenu()
		return eventstore.Ack{}, false, ErrEventNotFound
	}

	confirmed := c.Confirm(DeletePrompt(ev.Title))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.menuID = ""
	if !confirmed {
		return eventstore.Ack{}, false, nil
	}

	ack, err := p.store.DeleteEvent(ctx, ev.ID)
	if err != nil {
		return eventstore.Ack{}, false, err
	}
	p.pending[ack.RequestID] = ack.Op
	return ack, true, nil
}

func (p *Page) closeMenu() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.menuID = ""
}

// ToggleExpanded shows or hides the sidebar detail panel of an event.
func (p *Page) ToggleExpanded(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.expandedID == id {
		p.expandedID = ""
		return
	}
	p.expandedID = id
}

// ToggleMenu opens the overflow menu of an event, closing any other one.
func (p *Page) ToggleMenu(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.menuID == id {
		p.menuID = ""
		return
	}
	p.menuID = id
}

// ===========================
// 📡 Write outcomes

// Observe records the outcome of writes this page issued. A failure becomes
// the page notice until dismissed.
func (p *Page) Observe(n eventstore.Notification) {
	if n.Outcome == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[n.Outcome.RequestID]; !ok {
		return
	}
	delete(p.pending, n.Outcome.RequestID)
	if n.Kind == eventstore.KindWriteFailed {
		p.notice = noticeFor(*n.Outcome)
	}
}

func noticeFor(o eventstore.Outcome) string {
	switch o.Op {
	case eventstore.OpCreate:
		return "Could not add the event. Please try again."
	case eventstore.OpDelete:
		return "Could not delete the event. Please try again."
	default:
		return "Could not update the event. Please try again."
	}
}

// Pending is the number of issued writes without an outcome yet.
func (p *Page) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Page) DismissNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice = ""
}

// ===========================
// ⚙️ Preferences

func (p *Page) Preferences() Preferences {
	return p.prefs.Get()
}

func (p *Page) SetPreferences(ctx context.Context, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return p.prefs.Set(ctx, prefs)
}
