// Package toolerr defines the closed set of failure kinds a tool call can end in.
//
// Every error that reaches the dispatcher boundary is normalized into an *Error
// carrying one Kind, so the response envelope never has to inspect arbitrary
// error values:
//
//	if err := validate(args); err != nil {
//	    return toolerr.New(toolerr.InvalidArguments, "maxResults must be a positive integer")
//	}
//
//	ev, err := svc.GetEvent(ctx, calendarID, eventID)
//	if err != nil {
//	    return nil, toolerr.Wrap(toolerr.UpstreamFailure, "failed to get event", err)
//	}
package toolerr
