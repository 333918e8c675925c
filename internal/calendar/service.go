package calendar

import (
	"context"

	calendar "google.golang.org/api/calendar/v3"
)

// Service is the set of calendar capabilities exposed as tools. Results are
// the API's own representations; the calendar service owns their semantics.
type Service interface {
	ListCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error)
	GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error)
	ListEvents(ctx context.Context, query EventQuery) ([]*calendar.Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	CreateEvent(ctx context.Context, spec EventSpec) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, patch EventPatch) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID, sendUpdates string) error
	ListColors(ctx context.Context) (*calendar.Colors, error)
}

var _ Service = (*Client)(nil)
