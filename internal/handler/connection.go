package handler

import (
	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
)

type ConnectionHandler struct {
	Session *session.Session
}

type addressBody struct {
	Address string `json:"address"`
}

func (h *ConnectionHandler) SetAddress(c *gin.Context) {
	var body addressBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.SetAddress(body.Address); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}

func (h *ConnectionHandler) Connect(c *gin.Context) {
	var body addressBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Session.Connect(c.Request.Context(), body.Address); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}

func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	h.Session.Disconnect()
	respond(c, h.Session, nil)
}

func (h *ConnectionHandler) Refresh(c *gin.Context) {
	if err := h.Session.RefreshStatus(c.Request.Context()); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}
