package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// Arguments is the decoded, validated argument record of one tool call.
// Each tool has its own record type; ToolName identifies the variant.
type Arguments interface {
	ToolName() string
}

// ListCalendarsArgs are the arguments of list_calendars.
type ListCalendarsArgs struct{}

// GetCalendarArgs are the arguments of get_calendar.
type GetCalendarArgs struct {
	CalendarID string
}

// ListEventsArgs are the arguments of list_events. TimeMin and TimeMax are
// empty when not supplied.
type ListEventsArgs struct {
	CalendarID string
	TimeMin    string
	TimeMax    string
	MaxResults int64
}

// GetEventArgs are the arguments of get_event.
type GetEventArgs struct {
	CalendarID string
	EventID    string
}

// CreateEventArgs are the arguments of create_event. Attendees is nil when
// not supplied.
type CreateEventArgs struct {
	CalendarID  string
	Summary     string
	StartTime   string
	EndTime     string
	Description string
	Location    string
	TimeZone    string
	Attendees   []string
}

// UpdateEventArgs are the arguments of update_event. Nil pointers and a nil
// Attendees slice mark fields the caller did not supply.
type UpdateEventArgs struct {
	CalendarID  string
	EventID     string
	Summary     *string
	StartTime   *string
	EndTime     *string
	Description *string
	Location    *string
	TimeZone    string
	Attendees   []string
}

// DeleteEventArgs are the arguments of delete_event.
type DeleteEventArgs struct {
	CalendarID  string
	EventID     string
	SendUpdates string
}

// ListColorsArgs are the arguments of list_colors.
type ListColorsArgs struct{}

func (ListCalendarsArgs) ToolName() string { return ToolListCalendars }
func (GetCalendarArgs) ToolName() string   { return ToolGetCalendar }
func (ListEventsArgs) ToolName() string    { return ToolListEvents }
func (GetEventArgs) ToolName() string      { return ToolGetEvent }
func (CreateEventArgs) ToolName() string   { return ToolCreateEvent }
func (UpdateEventArgs) ToolName() string   { return ToolUpdateEvent }
func (DeleteEventArgs) ToolName() string   { return ToolDeleteEvent }
func (ListColorsArgs) ToolName() string    { return ToolListColors }

// decoder builds a tool's argument record from a validated argument map.
type decoder func(f fields) Arguments

var decoders = map[string]decoder{
	ToolListCalendars: func(fields) Arguments { return ListCalendarsArgs{} },
	ToolGetCalendar: func(f fields) Arguments {
		return GetCalendarArgs{CalendarID: f.str(ArgCalendarID)}
	},
	ToolListEvents: func(f fields) Arguments {
		return ListEventsArgs{
			CalendarID: f.str(ArgCalendarID),
			TimeMin:    f.str(ArgTimeMin),
			TimeMax:    f.str(ArgTimeMax),
			MaxResults: f.integer(ArgMaxResults),
		}
	},
	ToolGetEvent: func(f fields) Arguments {
		return GetEventArgs{CalendarID: f.str(ArgCalendarID), EventID: f.str(ArgEventID)}
	},
	ToolCreateEvent: func(f fields) Arguments {
		return CreateEventArgs{
			CalendarID:  f.str(ArgCalendarID),
			Summary:     f.str(ArgSummary),
			StartTime:   f.str(ArgStartTime),
			EndTime:     f.str(ArgEndTime),
			Description: f.str(ArgDescription),
			Location:    f.str(ArgLocation),
			TimeZone:    f.str(ArgTimeZone),
			Attendees:   f.strs(ArgAttendees),
		}
	},
	ToolUpdateEvent: func(f fields) Arguments {
		return UpdateEventArgs{
			CalendarID:  f.str(ArgCalendarID),
			EventID:     f.str(ArgEventID),
			Summary:     f.optStr(ArgSummary),
			StartTime:   f.optStr(ArgStartTime),
			EndTime:     f.optStr(ArgEndTime),
			Description: f.optStr(ArgDescription),
			Location:    f.optStr(ArgLocation),
			TimeZone:    f.str(ArgTimeZone),
			Attendees:   f.strs(ArgAttendees),
		}
	},
	ToolDeleteEvent: func(f fields) Arguments {
		return DeleteEventArgs{
			CalendarID:  f.str(ArgCalendarID),
			EventID:     f.str(ArgEventID),
			SendUpdates: f.str(ArgSendUpdates),
		}
	},
	ToolListColors: func(fields) Arguments { return ListColorsArgs{} },
}

// Decode applies the schema defaults to args, checks every declared field and
// returns the tool's typed argument record. args is not modified.
func Decode(def Definition, args map[string]any) (Arguments, error) {
	dec, ok := decoders[def.Name]
	if !ok {
		return nil, toolerr.Newf(toolerr.Internal, "no argument decoder for tool %s", def.Name)
	}

	withDefaults := ApplyDefaults(def.Schema, args)
	if err := Validate(def.Schema, withDefaults); err != nil {
		return nil, err
	}
	return dec(fields(withDefaults)), nil
}

// ApplyDefaults returns a copy of args with each unset property's default
// filled in. A property is unset when it is absent, null, or the zero value of
// its type ("" for strings, 0 for numbers).
func ApplyDefaults(schema Schema, args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+len(schema.Properties))
	for k, v := range args {
		out[k] = v
	}
	for _, p := range schema.Properties {
		if p.Default == nil {
			continue
		}
		if v, present := out[p.Name]; !present || isUnset(p.Type, v) {
			out[p.Name] = p.Default
		}
	}
	return out
}

func isUnset(t PropertyType, v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case TypeString:
		s, ok := v.(string)
		return ok && s == ""
	case TypeNumber:
		n, ok := toFloat(v)
		return ok && n == 0
	}
	return false
}

// Validate checks required presence, JSON type and enum membership of every
// declared property. Undeclared arguments are ignored.
func Validate(schema Schema, args map[string]any) error {
	for _, name := range schema.Required {
		v, present := args[name]
		if !present || v == nil {
			return toolerr.Newf(toolerr.MissingArguments, "Missing required argument: %s", name)
		}
		if s, ok := v.(string); ok && s == "" {
			return toolerr.Newf(toolerr.MissingArguments, "Missing required argument: %s", name)
		}
	}

	for _, p := range schema.Properties {
		v, present := args[p.Name]
		if !present || v == nil {
			continue
		}
		if err := checkers[p.Type](p, v); err != nil {
			return err
		}
	}
	return nil
}

var checkers = map[PropertyType]func(p Property, v any) error{
	TypeString: checkString,
	TypeNumber: checkNumber,
	TypeArray:  checkArray,
}

func checkString(p Property, v any) error {
	s, ok := v.(string)
	if !ok {
		return invalid(p.Name, "must be a string, got %s", jsonType(v))
	}
	if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
		return invalid(p.Name, "must be one of %v, got %q", p.Enum, s)
	}
	return nil
}

func checkNumber(p Property, v any) error {
	n, ok := toFloat(v)
	if !ok {
		return invalid(p.Name, "must be a number, got %s", jsonType(v))
	}
	if n != math.Trunc(n) || n < 1 || n > math.MaxInt32 {
		return invalid(p.Name, "must be a positive integer, got %v", v)
	}
	return nil
}

func checkArray(p Property, v any) error {
	switch items := v.(type) {
	case []string:
		return nil
	case []any:
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return invalid(p.Name, "item %d must be a string, got %s", i, jsonType(item))
			}
		}
		return nil
	default:
		return invalid(p.Name, "must be an array of strings, got %s", jsonType(v))
	}
}

func invalid(name, format string, args ...any) error {
	return toolerr.Newf(toolerr.InvalidArguments, "Invalid argument %s: %s", name, fmt.Sprintf(format, args...))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// fields reads values out of a validated argument map.
type fields map[string]any

func (f fields) str(name string) string {
	s, _ := f[name].(string)
	return s
}

// optStr returns nil for absent or empty strings.
func (f fields) optStr(name string) *string {
	s, ok := f[name].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func (f fields) integer(name string) int64 {
	n, _ := toFloat(f[name])
	return int64(n)
}

// strs returns nil when the array is absent and a non-nil slice otherwise.
func (f fields) strs(name string) []string {
	switch items := f[name].(type) {
	case []string:
		return append([]string{}, items...)
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, _ := item.(string)
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
