package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the scopes requested by the auth command. Full calendar
// access covers every tool, including event writes and deletes.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
}
