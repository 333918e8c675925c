// Package tools defines the calendar tool surface: the ordered tool registry,
// typed argument records decoded from raw JSON arguments, the dispatcher that
// runs a call under a deadline, and the envelope every call returns.
//
// A dispatch never fails. Unknown tools, bad arguments, upstream errors and
// panics all come back as an Envelope with IsError set:
//
//	env := dispatcher.Dispatch(ctx, tools.Request{Name: "list_events", Arguments: args})
//	fmt.Println(env.Text())
package tools
