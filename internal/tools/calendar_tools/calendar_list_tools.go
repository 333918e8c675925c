package calendar_tools

import (
	"context"

	"github.com/teemow/gcalendar-mcp/internal/calendar"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

func listCalendars(svc calendar.Service) func(context.Context, tools.ListCalendarsArgs) (any, error) {
	return func(ctx context.Context, _ tools.ListCalendarsArgs) (any, error) {
		return svc.ListCalendars(ctx)
	}
}

func getCalendar(svc calendar.Service) func(context.Context, tools.GetCalendarArgs) (any, error) {
	return func(ctx context.Context, args tools.GetCalendarArgs) (any, error) {
		return svc.GetCalendar(ctx, args.CalendarID)
	}
}

func listColors(svc calendar.Service) func(context.Context, tools.ListColorsArgs) (any, error) {
	return func(ctx context.Context, _ tools.ListColorsArgs) (any, error) {
		return svc.ListColors(ctx)
	}
}
