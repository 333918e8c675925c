package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalendar-mcp/internal/calendar"
	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/tools"
	"github.com/teemow/gcalendar-mcp/internal/tools/common"
)

type binding struct {
	operation string
	op        tools.Operation
}

func bindings(svc calendar.Service) map[string]binding {
	return map[string]binding{
		tools.ToolListCalendars: {instrumentation.OperationList, tools.Bind(listCalendars(svc))},
		tools.ToolGetCalendar:   {instrumentation.OperationGet, tools.Bind(getCalendar(svc))},
		tools.ToolListEvents:    {instrumentation.OperationList, tools.Bind(listEvents(svc))},
		tools.ToolGetEvent:      {instrumentation.OperationGet, tools.Bind(getEvent(svc))},
		tools.ToolCreateEvent:   {instrumentation.OperationCreate, tools.Bind(createEvent(svc))},
		tools.ToolUpdateEvent:   {instrumentation.OperationUpdate, tools.Bind(updateEvent(svc))},
		tools.ToolDeleteEvent:   {instrumentation.OperationDelete, tools.Bind(deleteEvent(svc))},
		tools.ToolListColors:    {instrumentation.OperationGet, tools.Bind(listColors(svc))},
	}
}

// NewOperations binds every calendar tool to svc. obs may be nil.
func NewOperations(svc calendar.Service, obs common.Observer) map[string]tools.Operation {
	ops := make(map[string]tools.Operation)
	for name, b := range bindings(svc) {
		ops[name] = common.Instrumented(name, instrumentation.ServiceCalendar, b.operation, obs, b.op)
	}
	return ops
}

// RegisterCalendarTools registers every tool of the dispatcher's registry with
// the MCP server, in registry order.
func RegisterCalendarTools(s *mcpserver.MCPServer, d *tools.Dispatcher) {
	for _, def := range d.Registry().Definitions() {
		s.AddTool(def.MCPTool(), toolHandler(d, def.Name))
	}
}

func toolHandler(d *tools.Dispatcher, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := d.Dispatch(ctx, tools.Request{Name: name, Arguments: request.GetArguments()})
		return env.CallToolResult(), nil
	}
}
