package activity

import "fmt"

// MalformedEventError reports a supported event that lacks a required field
// or carries it with the wrong JSON type.
type MalformedEventError struct {
	Type  string
	Field string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %s event: missing or invalid field %q", e.Type, e.Field)
}

// UnknownEventTypeError is returned when an event is dispatched to the parser
// without a registered handler. The collector filters these out beforehand.
type UnknownEventTypeError struct {
	Type string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Type)
}
