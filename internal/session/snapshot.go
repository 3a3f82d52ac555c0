package session

import "smartlock-remote/internal/model"

// Snapshot is everything a front end needs to render the lock. Device is
// nil while disconnected because the last reported values can't be trusted.
type Snapshot struct {
	SessionID         string                    `json:"sessionId"`
	Address           string                    `json:"address"`
	Connected         bool                      `json:"connected"`
	Busy              bool                      `json:"busy"`
	Device            *model.DeviceStatus       `json:"device"`
	AccessLog         []model.AccessLogEntry    `json:"accessLog"`
	Fingerprints      []model.FingerprintRecord `json:"fingerprints"`
	FingerprintPolicy string                    `json:"fingerprintIdPolicy"`
	LastStatusMessage string                    `json:"lastStatusMessage"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		SessionID:         s.id,
		Address:           s.address,
		Connected:         s.connected,
		LastStatusMessage: s.message,
	}
	if s.connected {
		st := s.status
		snap.Device = &st
	}
	s.mu.RUnlock()

	snap.Busy = s.busy.Load()
	snap.AccessLog = s.accessLog.List(0)
	snap.Fingerprints = s.fingerprints.List()
	snap.FingerprintPolicy = string(s.fingerprints.Policy())
	return snap
}
