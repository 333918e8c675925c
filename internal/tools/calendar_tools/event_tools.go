package calendar_tools

import (
	"context"
	"fmt"

	"github.com/teemow/gcalendar-mcp/internal/calendar"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

// DeleteResult is the delete_event result.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func listEvents(svc calendar.Service) func(context.Context, tools.ListEventsArgs) (any, error) {
	return func(ctx context.Context, args tools.ListEventsArgs) (any, error) {
		return svc.ListEvents(ctx, calendar.EventQuery{
			CalendarID: args.CalendarID,
			TimeMin:    args.TimeMin,
			TimeMax:    args.TimeMax,
			MaxResults: args.MaxResults,
		})
	}
}

func getEvent(svc calendar.Service) func(context.Context, tools.GetEventArgs) (any, error) {
	return func(ctx context.Context, args tools.GetEventArgs) (any, error) {
		return svc.GetEvent(ctx, args.CalendarID, args.EventID)
	}
}

func createEvent(svc calendar.Service) func(context.Context, tools.CreateEventArgs) (any, error) {
	return func(ctx context.Context, args tools.CreateEventArgs) (any, error) {
		return svc.CreateEvent(ctx, calendar.EventSpec{
			CalendarID:  args.CalendarID,
			Summary:     args.Summary,
			Description: args.Description,
			Location:    args.Location,
			Start:       args.StartTime,
			End:         args.EndTime,
			TimeZone:    args.TimeZone,
			Attendees:   args.Attendees,
		})
	}
}

func updateEvent(svc calendar.Service) func(context.Context, tools.UpdateEventArgs) (any, error) {
	return func(ctx context.Context, args tools.UpdateEventArgs) (any, error) {
		return svc.UpdateEvent(ctx, calendar.EventPatch{
			CalendarID:  args.CalendarID,
			EventID:     args.EventID,
			Summary:     args.Summary,
			Description: args.Description,
			Location:    args.Location,
			Start:       args.StartTime,
			End:         args.EndTime,
			TimeZone:    args.TimeZone,
			Attendees:   args.Attendees,
		})
	}
}

func deleteEvent(svc calendar.Service) func(context.Context, tools.DeleteEventArgs) (any, error) {
	return func(ctx context.Context, args tools.DeleteEventArgs) (any, error) {
		if err := svc.DeleteEvent(ctx, args.CalendarID, args.EventID, args.SendUpdates); err != nil {
			return nil, err
		}
		return DeleteResult{
			Success: true,
			Message: fmt.Sprintf("Event %s deleted successfully", args.EventID),
		}, nil
	}
}
