package github

import "fmt"

// TransportError is a network or HTTP failure talking to GitHub.
type TransportError struct {
	Op     string
	Status int // zero when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("github %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("github %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a page body was not a well-formed event list.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode github events: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
