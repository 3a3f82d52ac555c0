package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/session"
)

type StateHandler struct {
	Session *session.Session
}

func (h *StateHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.Snapshot())
}

func (h *StateHandler) AccessLogs(c *gin.Context) {
	entries := h.Session.Snapshot().AccessLog
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "Invalid limit")
			return
		}
		if limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}
	}
	c.JSON(http.StatusOK, gin.H{"accessLog": entries})
}

func (h *StateHandler) Fingerprints(c *gin.Context) {
	snap := h.Session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"fingerprints": snap.Fingerprints,
		"idPolicy":     snap.FingerprintPolicy,
	})
}
