package calendar

import (
	"context"
	"errors"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/gcalendar-mcp/internal/google"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// Client implements Service against the Google Calendar v3 API.
// A fresh access token is obtained from the TokenProvider for every call.
type Client struct {
	tokens google.TokenProvider
	opts   []option.ClientOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.opts = append(c.opts, option.WithEndpoint(endpoint))
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.opts = append(c.opts, option.WithUserAgent(ua))
	}
}

// NewClient creates a calendar client backed by the given token provider.
func NewClient(tokens google.TokenProvider, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	c := &Client{tokens: tokens}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// service builds a calendar service authenticated for this call only.
func (c *Client) service(ctx context.Context) (*calendar.Service, error) {
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	opts := make([]option.ClientOption, 0, len(c.opts)+1)
	opts = append(opts, option.WithHTTPClient(google.NewHTTPClient(ctx, tok)))
	opts = append(opts, c.opts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.Internal, "failed to create Calendar service", err)
	}
	return svc, nil
}

// upstream classifies an API or transport error.
func upstream(action string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return toolerr.Wrap(toolerr.UpstreamFailure, "failed to "+action, fmt.Errorf("%s (HTTP %d)", apiErr.Message, apiErr.Code))
	}
	return toolerr.Wrap(toolerr.UpstreamFailure, "failed to "+action, err)
}

// ListCalendars lists all calendars on the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	calendars := []*calendar.CalendarListEntry{}
	err = svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		calendars = append(calendars, page.Items...)
		return nil
	})
	if err != nil {
		return nil, upstream("list calendars", err)
	}

	return calendars, nil
}

// GetCalendar retrieves the metadata of a calendar.
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := svc.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, upstream("get calendar", err)
	}
	return cal, nil
}

// ListEvents lists events with recurring events expanded into single
// instances, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, query EventQuery) ([]*calendar.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(query.CalendarID).
		SingleEvents(true).
		OrderBy("startTime")
	if query.MaxResults > 0 {
		call = call.MaxResults(query.MaxResults)
	}
	if query.TimeMin != "" {
		call = call.TimeMin(query.TimeMin)
	}
	if query.TimeMax != "" {
		call = call.TimeMax(query.TimeMax)
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		return nil, upstream("list events", err)
	}

	if events.Items == nil {
		return []*calendar.Event{}, nil
	}
	return events.Items, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	event, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, upstream("get event", err)
	}
	return event, nil
}

// CreateEvent creates a new calendar event.
func (c *Client) CreateEvent(ctx context.Context, spec EventSpec) (*calendar.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	created, err := svc.Events.Insert(spec.CalendarID, spec.toEvent()).Context(ctx).Do()
	if err != nil {
		return nil, upstream("create event", err)
	}
	return created, nil
}

// UpdateEvent applies a partial update. Fields absent from the patch keep
// their current values on the server.
func (c *Client) UpdateEvent(ctx context.Context, patch EventPatch) (*calendar.Event, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := svc.Events.Patch(patch.CalendarID, patch.EventID, patch.toEvent()).Context(ctx).Do()
	if err != nil {
		return nil, upstream("update event", err)
	}
	return updated, nil
}

// DeleteEvent deletes a calendar event. sendUpdates controls guest notification.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID, sendUpdates string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	call := svc.Events.Delete(calendarID, eventID)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}
	if err := call.Context(ctx).Do(); err != nil {
		return upstream("delete event", err)
	}
	return nil
}

// ListColors retrieves the calendar and event color palettes.
func (c *Client) ListColors(ctx context.Context) (*calendar.Colors, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	colors, err := svc.Colors.Get().Context(ctx).Do()
	if err != nil {
		return nil, upstream("list colors", err)
	}
	return colors, nil
}
