package voice

import (
	"errors"
	"sync"
)

type CaptureState string

const (
	CaptureIdle      CaptureState = "idle"
	CaptureListening CaptureState = "listening"
	CaptureCompleted CaptureState = "completed"
	CaptureErrored   CaptureState = "errored"
)

var (
	ErrAlreadyListening = errors.New("voice capture already in progress")
	ErrNotListening     = errors.New("no voice capture in progress")
)

// Capture tracks one speech-recognition round trip. The recognizer itself
// lives in the front end; only its start, result and error events arrive here.
type Capture struct {
	mu         sync.Mutex
	state      CaptureState
	transcript string
	reason     string
}

func NewCapture() *Capture {
	return &Capture{state: CaptureIdle}
}

func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CaptureListening {
		return ErrAlreadyListening
	}
	c.state = CaptureListening
	c.transcript = ""
	c.reason = ""
	return nil
}

func (c *Capture) Complete(transcript string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureListening {
		return ErrNotListening
	}
	c.state = CaptureCompleted
	c.transcript = transcript
	return nil
}

func (c *Capture) Fail(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureListening {
		return ErrNotListening
	}
	c.state = CaptureErrored
	c.reason = reason
	return nil
}

func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = CaptureIdle
	c.transcript = ""
	c.reason = ""
}

type CaptureStatus struct {
	State      CaptureState `json:"state"`
	Transcript string       `json:"transcript,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

func (c *Capture) Status() CaptureStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CaptureStatus{State: c.state, Transcript: c.transcript, Reason: c.reason}
}
