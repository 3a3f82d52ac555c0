package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
)

type FingerprintHandler struct {
	Session *session.Session
}

func (h *FingerprintHandler) Enroll(c *gin.Context) {
	rec, err := h.Session.EnrollFingerprint(c.Request.Context())
	if err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, gin.H{"fingerprint": rec})
}

func (h *FingerprintHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid fingerprint id")
		return
	}
	if err := h.Session.DeleteFingerprint(c.Request.Context(), id); err != nil {
		respondError(c, h.Session, err)
		return
	}
	respond(c, h.Session, nil)
}
