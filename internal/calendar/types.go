package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// PrimaryCalendar is the reserved identifier of the authenticated user's default calendar.
const PrimaryCalendar = "primary"

// SendUpdates values accepted by DeleteEvent.
const (
	SendUpdatesAll          = "all"
	SendUpdatesExternalOnly = "externalOnly"
	SendUpdatesNone         = "none"
)

// EventQuery selects the events returned by ListEvents. TimeMin and TimeMax are
// RFC3339 timestamps passed through unparsed; empty means unbounded.
type EventQuery struct {
	CalendarID string
	TimeMin    string
	TimeMax    string
	MaxResults int64
}

// EventSpec describes an event to create. Start and End are passed through to
// the calendar service as dateTime values interpreted in TimeZone.
type EventSpec struct {
	CalendarID  string
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	TimeZone    string
	Attendees   []string
}

// EventPatch describes a partial update. Nil fields are left untouched on the
// existing event. A non-nil empty Attendees clears the attendee list.
type EventPatch struct {
	CalendarID  string
	EventID     string
	Summary     *string
	Description *string
	Location    *string
	Start       *string
	End         *string
	TimeZone    string
	Attendees   []string
}

// toEvent converts an EventSpec to the API representation. Optional fields are
// only set when supplied.
func (s EventSpec) toEvent() *calendar.Event {
	event := &calendar.Event{
		Summary: s.Summary,
		Start: &calendar.EventDateTime{
			DateTime: s.Start,
			TimeZone: s.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: s.End,
			TimeZone: s.TimeZone,
		},
	}
	if s.Description != "" {
		event.Description = s.Description
	}
	if s.Location != "" {
		event.Location = s.Location
	}
	if s.Attendees != nil {
		event.Attendees = toAttendees(s.Attendees)
	}
	return event
}

// toEvent converts an EventPatch to a sparse API event carrying only the
// fields to change.
func (p EventPatch) toEvent() *calendar.Event {
	event := &calendar.Event{}
	if p.Summary != nil {
		event.Summary = *p.Summary
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.Start != nil {
		event.Start = &calendar.EventDateTime{DateTime: *p.Start, TimeZone: p.TimeZone}
	}
	if p.End != nil {
		event.End = &calendar.EventDateTime{DateTime: *p.End, TimeZone: p.TimeZone}
	}
	if p.Attendees != nil {
		event.Attendees = toAttendees(p.Attendees)
		if len(p.Attendees) == 0 {
			event.ForceSendFields = append(event.ForceSendFields, "Attendees")
		}
	}
	return event
}

func toAttendees(emails []string) []*calendar.EventAttendee {
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}
