package ports

import "fmt"

// ServerError is a failure reported by the computation service: either a
// non-success status or an explicit error field in the response body.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("optimizer: status %d: %s", e.Status, e.Message)
}

// TransportError wraps network and decoding failures on the way to or from
// the computation service.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("optimizer: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
