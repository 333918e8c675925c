// Package calendar provides a client for the Google Calendar v3 API.
//
// Service is the capability set the tool layer depends on; Client implements it
// by authenticating every call with a token from a google.TokenProvider. The
// client shapes requests only. Recurrence expansion, timezone handling and
// attendee notification are left to the calendar service.
//
// Example usage:
//
//	tokens := google.NewRefreshTokenProvider(conf, refreshToken)
//	client, err := calendar.NewClient(tokens)
//	if err != nil {
//	    return err
//	}
//
//	events, err := client.ListEvents(ctx, calendar.EventQuery{
//	    CalendarID: calendar.PrimaryCalendar,
//	    MaxResults: 10,
//	})
package calendar
