package handler

import (
	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
	"smartlock-remote/internal/voice"
)

type VoiceHandler struct {
	Session    *session.Session
	Capture    *voice.Capture
	Controller *voice.Controller
}

type transcriptBody struct {
	Transcript string `json:"transcript"`
}

type voiceErrorBody struct {
	Error string `json:"error"`
}

func (h *VoiceHandler) Status(c *gin.Context) {
	respond(c, h.Session, gin.H{"voice": h.Capture.Status()})
}

func (h *VoiceHandler) Start(c *gin.Context) {
	if !h.Session.Connected() {
		h.Session.SetStatusMessage("Not connected to the lock")
		respondError(c, h.Session, session.ErrNotConnected)
		return
	}
	if err := h.Capture.Start(); err != nil {
		respondError(c, h.Session, err)
		return
	}
	h.Session.SetStatusMessage(`Listening... say "open", "close" or "status"`)
	respond(c, h.Session, gin.H{"voice": h.Capture.Status()})
}

func (h *VoiceHandler) Transcript(c *gin.Context) {
	var body transcriptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Capture.Complete(body.Transcript); err != nil {
		respondError(c, h.Session, err)
		return
	}
	res, err := h.Controller.Handle(c.Request.Context(), body.Transcript)
	if err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, gin.H{"voice": h.Capture.Status(), "result": res})
}

func (h *VoiceHandler) Error(c *gin.Context) {
	var body voiceErrorBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if err := h.Capture.Fail(body.Error); err != nil {
		respondError(c, h.Session, err)
		return
	}
	h.Session.SetStatusMessage("Voice recognition error")
	respond(c, h.Session, gin.H{"voice": h.Capture.Status()})
}
