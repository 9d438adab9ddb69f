package calendar

import "errors"

// PreferencesKey is the cache key the grid preferences live under. Each
// session appends its own id.
const PreferencesKey = "calendar.preferences"

const (
	ViewMonth = "dayGridMonth"
	ViewWeek  = "timeGridWeek"
	ViewDay   = "timeGridDay"
)

var ErrInvalidView = errors.New("initial view must be dayGridMonth, timeGridWeek or timeGridDay")

// Preferences configure the grid widget.
type Preferences struct {
	InitialView string `json:"initialView"`
	Weekends    bool   `json:"weekends"`
}

func DefaultPreferences() Preferences {
	return Preferences{InitialView: ViewMonth, Weekends: true}
}

func (p Preferences) Validate() error {
	switch p.InitialView {
	case ViewMonth, ViewWeek, ViewDay:
		return nil
	default:
		return ErrInvalidView
	}
}

func preferencesKey(sessionID string) string {
	return PreferencesKey + ":" + sessionID
}
