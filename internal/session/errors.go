package session

import (
	"errors"
	"fmt"

	"smartlock-remote/internal/device"
)

var (
	ErrNotConnected  = errors.New("not connected to the lock")
	ErrBusy          = errors.New("another command is in progress")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAddressLocked = errors.New("address can only be changed while disconnected")

	// ErrConnectAborted is returned by a Connect overtaken by Disconnect.
	ErrConnectAborted = errors.New("connection attempt cancelled by disconnect")
)

// ConnectionError covers an unreachable device, a timeout, a non-2xx probe
// and any response that could not be decoded.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Timeout() bool {
	var te *device.TransportError
	return errors.As(e.Err, &te) && te.Timeout
}

// ValidationError is raised before any network call. Reason is "empty" or "mismatch".
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// CommandError means the device was reached and refused the command.
// Rejected is set when the device explicitly said no (wrong password,
// failed sensor read) rather than answering with an error status.
type CommandError struct {
	Op         string
	StatusCode int
	Rejected   bool
}

func (e *CommandError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("%s rejected by device", e.Op)
	}
	return fmt.Sprintf("%s failed: device returned status %d", e.Op, e.StatusCode)
}

// classify maps a transport failure onto the session taxonomy: a non-2xx
// answer to a command is a CommandError, everything else a ConnectionError.
func classify(op string, err error, probe bool) error {
	var se *device.StatusError
	if !probe && errors.As(err, &se) {
		return &CommandError{Op: op, StatusCode: se.Code}
	}
	return &ConnectionError{Op: op, Err: err}
}
