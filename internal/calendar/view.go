package calendar

import (
	"fmt"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

const (
	locationPlaceholder    = "Not set"
	descriptionPlaceholder = "No description"
)

// View is everything the browser needs to render the page.
type View struct {
	Loading     bool        `json:"loading"`
	Heading     string      `json:"heading"`
	Count       int         `json:"count"`
	Items       []ListItem  `json:"items"`
	Grid        []GridEvent `json:"grid"`
	Dialog      *DialogView `json:"dialog,omitempty"`
	Preferences Preferences `json:"preferences"`
	Notice      string      `json:"notice,omitempty"`
}

// ListItem is one sidebar entry.
type ListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartLabel  string `json:"startLabel"`
	Expanded    bool   `json:"expanded"`
	MenuOpen    bool   `json:"menuOpen"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// GridEvent is the shape the grid widget consumes.
type GridEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
	AllDay bool   `json:"allDay"`
}

type DialogView struct {
	Mode        Mode       `json:"mode"`
	Heading     string     `json:"heading"`
	SubmitLabel string     `json:"submitLabel"`
	EventID     string     `json:"eventId,omitempty"`
	Form        Form       `json:"form"`
	Selection   *Selection `json:"selection,omitempty"`
}

// View renders the current snapshot together with the page state.
func (p *Page) View() View {
	events := p.store.Events()
	loading := p.store.Loading()
	prefs := p.prefs.Get()

	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		Loading:     loading,
		Heading:     fmt.Sprintf("Events List (%d)", len(events)),
		Count:       len(events),
		Items:       make([]ListItem, 0, len(events)),
		Grid:        make([]GridEvent, 0, len(events)),
		Preferences: prefs,
		Notice:      p.notice,
	}

	for _, ev := range events {
		v.Items = append(v.Items, ListItem{
			ID:          ev.ID,
			Title:       ev.Title,
			StartLabel:  startLabel(ev.Start),
			Expanded:    p.expandedID == ev.ID,
			MenuOpen:    p.menuID == ev.ID,
			Location:    orPlaceholder(ev.Location, locationPlaceholder),
			Description: orPlaceholder(ev.Description, descriptionPlaceholder),
		})
		v.Grid = append(v.Grid, GridEvent{
			ID:     ev.ID,
			Title:  ev.Title,
			Start:  ev.Start,
			End:    ev.End,
			AllDay: ev.AllDay,
		})
	}

	if p.open {
		d := &DialogView{
			Mode:        p.mode,
			Heading:     "Add New Event",
			SubmitLabel: "Create",
			Form:        p.form,
		}
		if p.mode == ModeEdit {
			d.Heading = "Update Event"
			d.SubmitLabel = "Update"
			d.EventID = p.editingID
		}
		if p.selection != nil {
			sel := *p.selection
			d.Selection = &sel
		}
		v.Dialog = d
	}

	return v
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// startLabel is the short date shown under a sidebar title.
func startLabel(start string) string {
	t, err := event.ParseTime(start)
	if err != nil {
		return start
	}
	return t.Format("1/2/2006")
}
