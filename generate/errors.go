package generate

import "fmt"

// TransportError is returned when the endpoint answers with a non-2xx status.
// The response body is not read.
type TransportError struct {
	StatusCode int
	Status     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, e.Status)
}

// ProtocolError is returned when a successful response carries no body.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// StreamError reports a failure after the body was opened. Op is "read" or
// "decode". Snapshots delivered before the failure stay valid.
type StreamError struct {
	Op    string
	Bytes int64
	Err   error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s failed after %d bytes: %v", e.Op, e.Bytes, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
