package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gcalendar-mcp/internal/calendar"
)

// Tool names.
const (
	ToolListCalendars = "list_calendars"
	ToolGetCalendar   = "get_calendar"
	ToolListEvents    = "list_events"
	ToolGetEvent      = "get_event"
	ToolCreateEvent   = "create_event"
	ToolUpdateEvent   = "update_event"
	ToolDeleteEvent   = "delete_event"
	ToolListColors    = "list_colors"
)

// Argument names shared across tool schemas.
const (
	ArgCalendarID  = "calendarId"
	ArgEventID     = "eventId"
	ArgTimeMin     = "timeMin"
	ArgTimeMax     = "timeMax"
	ArgMaxResults  = "maxResults"
	ArgSummary     = "summary"
	ArgStartTime   = "start_time"
	ArgEndTime     = "end_time"
	ArgDescription = "description"
	ArgAttendees   = "attendees"
	ArgLocation    = "location"
	ArgTimeZone    = "timezone"
	ArgSendUpdates = "sendUpdates"
)

// DefaultMaxResults is the list_events page size when the caller gives none.
const DefaultMaxResults = 10

// PropertyType is the JSON type of a tool argument.
type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeNumber PropertyType = "number"
	TypeArray  PropertyType = "array"
)

// Property describes one tool argument.
type Property struct {
	Name        string
	Type        PropertyType
	Description string
	// Enum restricts string values when non-empty.
	Enum []string
	// Default is applied when the argument is absent. It is a string or float64
	// matching Type, or nil for no default.
	Default any
	// ItemType is the element type of an array property.
	ItemType PropertyType
}

// Schema is the input contract of a tool. Properties keep declaration order.
type Schema struct {
	Properties []Property
	Required   []string
}

// Property returns the named property.
func (s Schema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// IsRequired reports whether name is a required argument.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Definition is a registered tool: its name, description and input schema.
type Definition struct {
	Name        string
	Description string
	Schema      Schema
	ReadOnly    bool
	Destructive bool
}

// Registry is the immutable, ordered set of tool definitions.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// NewRegistry builds the tool definitions. defaultTimeZone is the default of
// every timezone argument and is mentioned in the event-writing descriptions.
func NewRegistry(defaultTimeZone string) *Registry {
	calendarID := Property{
		Name:        ArgCalendarID,
		Type:        TypeString,
		Description: "Calendar ID (use 'primary' for main calendar)",
	}
	timeZone := Property{
		Name:        ArgTimeZone,
		Type:        TypeString,
		Description: fmt.Sprintf("Timezone for the event (default: %s)", defaultTimeZone),
		Default:     defaultTimeZone,
	}
	eventFields := func(leading ...Property) []Property {
		return append(leading,
			Property{Name: ArgSummary, Type: TypeString, Description: "Event title"},
			Property{Name: ArgStartTime, Type: TypeString, Description: "Start time (ISO format)"},
			Property{Name: ArgEndTime, Type: TypeString, Description: "End time (ISO format)"},
			Property{Name: ArgDescription, Type: TypeString, Description: "Event description"},
			Property{Name: ArgAttendees, Type: TypeArray, ItemType: TypeString, Description: "List of attendee emails"},
			Property{Name: ArgLocation, Type: TypeString, Description: "Event location"},
			timeZone,
		)
	}

	primaryByDefault := calendarID
	primaryByDefault.Default = calendar.PrimaryCalendar

	defs := []Definition{
		{
			Name:        ToolListCalendars,
			Description: "List all available calendars",
			ReadOnly:    true,
		},
		{
			Name:        ToolGetCalendar,
			Description: "Get details of a specific calendar",
			Schema: Schema{
				Properties: []Property{calendarID},
				Required:   []string{ArgCalendarID},
			},
			ReadOnly: true,
		},
		{
			Name:        ToolListEvents,
			Description: "List events from a calendar with filtering options",
			Schema: Schema{
				Properties: []Property{
					calendarID,
					{Name: ArgTimeMin, Type: TypeString, Description: "Start time (ISO format, optional)"},
					{Name: ArgTimeMax, Type: TypeString, Description: "End time (ISO format, optional)"},
					{
						Name:        ArgMaxResults,
						Type:        TypeNumber,
						Description: fmt.Sprintf("Maximum number of events to return (default: %d)", DefaultMaxResults),
						Default:     float64(DefaultMaxResults),
					},
				},
				Required: []string{ArgCalendarID},
			},
			ReadOnly: true,
		},
		{
			Name:        ToolGetEvent,
			Description: "Get detailed information about a specific event",
			Schema: Schema{
				Properties: []Property{
					calendarID,
					{Name: ArgEventID, Type: TypeString, Description: "Event ID"},
				},
				Required: []string{ArgCalendarID, ArgEventID},
			},
			ReadOnly: true,
		},
		{
			Name: ToolCreateEvent,
			Description: fmt.Sprintf("Create a calendar event with specified details. "+
				"Times should be specified in ISO format. Default timezone is %s.", defaultTimeZone),
			Schema: Schema{
				Properties: eventFields(primaryByDefault),
				Required:   []string{ArgSummary, ArgStartTime, ArgEndTime},
			},
		},
		{
			Name:        ToolUpdateEvent,
			Description: fmt.Sprintf("Update an existing calendar event. Only the supplied fields change. Default timezone is %s.", defaultTimeZone),
			Schema: Schema{
				Properties: eventFields(calendarID, Property{Name: ArgEventID, Type: TypeString, Description: "Event ID to update"}),
				Required:   []string{ArgCalendarID, ArgEventID},
			},
		},
		{
			Name:        ToolDeleteEvent,
			Description: "Delete a calendar event",
			Schema: Schema{
				Properties: []Property{
					calendarID,
					{Name: ArgEventID, Type: TypeString, Description: "Event ID to delete"},
					{
						Name:        ArgSendUpdates,
						Type:        TypeString,
						Description: "Send updates to attendees (all, externalOnly, none)",
						Enum:        []string{calendar.SendUpdatesAll, calendar.SendUpdatesExternalOnly, calendar.SendUpdatesNone},
						Default:     calendar.SendUpdatesAll,
					},
				},
				Required: []string{ArgCalendarID, ArgEventID},
			},
			Destructive: true,
		},
		{
			Name:        ToolListColors,
			Description: "List available colors for events and calendars",
			ReadOnly:    true,
		},
	}

	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.Name] = i
	}
	return &Registry{defs: defs, index: index}
}

// Definitions returns a copy of all definitions in declaration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Names returns the tool names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// MCPTools returns the MCP wire form of every definition in declaration order.
func (r *Registry) MCPTools() []mcp.Tool {
	out := make([]mcp.Tool, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.MCPTool()
	}
	return out
}

// MCPTool converts the definition to an mcp.Tool.
func (d Definition) MCPTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly),
		mcp.WithDestructiveHintAnnotation(d.Destructive),
	}

	for _, p := range d.Schema.Properties {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if d.Schema.IsRequired(p.Name) {
			propOpts = append(propOpts, mcp.Required())
		}
		if len(p.Enum) > 0 {
			propOpts = append(propOpts, mcp.Enum(p.Enum...))
		}

		switch p.Type {
		case TypeNumber:
			if def, ok := p.Default.(float64); ok {
				propOpts = append(propOpts, mcp.DefaultNumber(def))
			}
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		case TypeArray:
			propOpts = append(propOpts, mcp.WithStringItems())
			opts = append(opts, mcp.WithArray(p.Name, propOpts...))
		default:
			if def, ok := p.Default.(string); ok {
				propOpts = append(propOpts, mcp.DefaultString(def))
			}
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}
