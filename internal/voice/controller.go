package voice

import (
	"context"

	"go.uber.org/zap"
	"smartlock-remote/internal/model"
)

// Commander is the part of session.Session the voice controller drives.
type Commander interface {
	Unlock(ctx context.Context, method model.AccessMethod) error
	Lock(ctx context.Context, method model.AccessMethod) error
	LockState() (model.LockState, bool)
	SetStatusMessage(msg string)
}

type Result struct {
	Intent  Intent `json:"-"`
	Action  string `json:"intent"`
	Message string `json:"message"`
}

type Controller struct {
	Session Commander
	Logger  *zap.Logger
}

// Handle interprets transcript, runs the matching command and leaves the
// outcome in the session's status message. The returned error is the
// command's error, if any.
func (c *Controller) Handle(ctx context.Context, transcript string) (Result, error) {
	intent := Interpret(transcript)
	res := Result{Intent: intent, Action: intent.String()}

	var err error
	switch intent {
	case IntentUnlock:
		err = c.Session.Unlock(ctx, model.MethodVoice)
		res.Message = "Voice command: unlock"
	case IntentLock:
		err = c.Session.Lock(ctx, model.MethodVoice)
		res.Message = "Voice command: lock"
	case IntentQueryStatus:
		res.Message = StatusMessage(c.Session.LockState())
	default:
		res.Message = `Command not recognized. Try "open", "close" or "status"`
	}
	if err != nil {
		res.Message += " failed: " + err.Error()
	}

	if c.Logger != nil {
		c.Logger.Info("voice command",
			zap.String("intent", res.Action), zap.Bool("ok", err == nil))
	}
	c.Session.SetStatusMessage(res.Message)
	return res, err
}

func StatusMessage(state model.LockState, connected bool) string {
	if !connected {
		return "Current state: unknown (not connected)"
	}
	if state == model.Locked {
		return "Current state: LOCKED"
	}
	return "Current state: UNLOCKED"
}
