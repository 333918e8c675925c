package toolerr

import (
	"errors"
	"fmt"
)

// Kind classifies a tool-call failure.
type Kind int

const (
	// Internal covers recovered panics and unclassified errors.
	Internal Kind = iota
	// MissingArguments means required arguments were absent.
	MissingArguments
	// InvalidArguments means an argument had the wrong type or an out-of-range value.
	InvalidArguments
	// UnknownTool means the requested tool name is not registered.
	UnknownTool
	// UpstreamFailure means the calendar service rejected or failed the call.
	UpstreamFailure
	// AuthFailure means the credential exchange was rejected.
	AuthFailure
	// ConfigurationFailure means required credentials or settings are absent.
	ConfigurationFailure
)

var kindNames = map[Kind]string{
	Internal:             "internal",
	MissingArguments:     "missing_arguments",
	InvalidArguments:     "invalid_arguments",
	UnknownTool:          "unknown_tool",
	UpstreamFailure:      "upstream_failure",
	AuthFailure:          "auth_failure",
	ConfigurationFailure: "configuration_failure",
}

// String returns the snake_case name of the kind, suitable for metric labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every defined kind.
func Kinds() []Kind {
	return []Kind{
		Internal,
		MissingArguments,
		InvalidArguments,
		UnknownTool,
		UpstreamFailure,
		AuthFailure,
		ConfigurationFailure,
	}
}

// Error is a classified tool-call failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. The resulting message is "<message>: <err>".
// If err is nil, Wrap returns nil.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons on kind alone.
var (
	ErrInternal             = &Error{Kind: Internal}
	ErrMissingArguments     = &Error{Kind: MissingArguments}
	ErrInvalidArguments     = &Error{Kind: InvalidArguments}
	ErrUnknownTool          = &Error{Kind: UnknownTool}
	ErrUpstreamFailure      = &Error{Kind: UpstreamFailure}
	ErrAuthFailure          = &Error{Kind: AuthFailure}
	ErrConfigurationFailure = &Error{Kind: ConfigurationFailure}
)

// From normalizes err into an *Error. Errors that already carry a kind
// anywhere in their chain keep it; the outer message is preserved so wrapping
// context is not lost. Anything else becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		if te == err {
			return te
		}
		return &Error{Kind: te.Kind, Message: err.Error()}
	}
	return &Error{Kind: Internal, Message: err.Error()}
}

// KindOf returns the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return Internal
}

// Recovered converts a value obtained from recover() into an Internal error.
func Recovered(v any) *Error {
	switch x := v.(type) {
	case *Error:
		return x
	case error:
		return &Error{Kind: Internal, Err: x}
	default:
		return &Error{Kind: Internal, Message: fmt.Sprint(x)}
	}
}
