package handler

import (
	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/model"
	"smartlock-remote/internal/session"
)

type LockHandler struct {
	Session *session.Session
}

type methodBody struct {
	Method model.AccessMethod `json:"method"`
}

func (h *LockHandler) Unlock(c *gin.Context) {
	var body methodBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.Unlock(c.Request.Context(), body.Method); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}

func (h *LockHandler) Lock(c *gin.Context) {
	var body methodBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.Lock(c.Request.Context(), body.Method); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}
