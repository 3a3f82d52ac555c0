package device

import "fmt"

// TransportError means the device could not be reached or its answer
// could not be understood.
type TransportError struct {
	Op        string
	Timeout   bool
	Malformed bool
	Err       error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: device timed out: %v", e.Op, e.Err)
	case e.Malformed:
		return fmt.Sprintf("%s: malformed device response: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer from the device.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: device returned status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: device returned status %d: %s", e.Op, e.Code, e.Body)
}
