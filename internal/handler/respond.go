package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
	"smartlock-remote/internal/voice"
)

func respond(c *gin.Context, sess *session.Session, extra gin.H) {
	body := gin.H{
		"message": sess.StatusMessage(),
		"state":   sess.Snapshot(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func respondError(c *gin.Context, sess *session.Session, err error) {
	status, code := classifyError(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error":   err.Error(),
		"code":    code,
		"message": sess.StatusMessage(),
		"state":   sess.Snapshot(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}

func classifyError(err error) (int, string) {
	var (
		verr   *session.ValidationError
		cmdErr *session.CommandError
		cerr   *session.ConnectionError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_" + verr.Reason
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, session.ErrNotConnected):
		return http.StatusConflict, "not_connected"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, session.ErrAddressLocked):
		return http.StatusConflict, "address_locked"
	case errors.Is(err, session.ErrConnectAborted):
		return http.StatusConflict, "connect_aborted"
	case errors.Is(err, voice.ErrAlreadyListening):
		return http.StatusConflict, "voice_listening"
	case errors.Is(err, voice.ErrNotListening):
		return http.StatusConflict, "voice_idle"
	case errors.As(err, &cmdErr):
		if cmdErr.Rejected && cmdErr.Op == "verify-password" {
			return http.StatusUnauthorized, "password_rejected"
		}
		if cmdErr.Rejected {
			return http.StatusUnprocessableEntity, "rejected"
		}
		return http.StatusBadGateway, "command_failed"
	case errors.As(err, &cerr):
		if cerr.Timeout() {
			return http.StatusGatewayTimeout, "timeout"
		}
		return http.StatusBadGateway, "connection_error"
	}
	return http.StatusInternalServerError, "internal"
}

// bindOptionalJSON accepts an empty body as the zero value, including a
// chunked body with no bytes.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
