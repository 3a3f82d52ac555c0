package handler

import (
	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
)

type PasswordHandler struct {
	Session *session.Session
}

type verifyPasswordBody struct {
	Password string `json:"password"`
}

type setPasswordBody struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *PasswordHandler) Verify(c *gin.Context) {
	var body verifyPasswordBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.VerifyPassword(c.Request.Context(), body.Password); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}

func (h *PasswordHandler) Set(c *gin.Context) {
	var body setPasswordBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.SetPassword(c.Request.Context(), body.NewPassword, body.ConfirmPassword); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}
