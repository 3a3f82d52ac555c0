package model

import "time"

type LockState string

const (
	Locked   LockState = "LOCKED"
	Unlocked LockState = "UNLOCKED"
)

type AccessMethod string

const (
	MethodApp         AccessMethod = "app"
	MethodPassword    AccessMethod = "password"
	MethodFingerprint AccessMethod = "fingerprint"
	MethodVoice       AccessMethod = "voice"
)

func (m AccessMethod) Valid() bool {
	switch m {
	case MethodApp, MethodPassword, MethodFingerprint, MethodVoice:
		return true
	}
	return false
}

// Actor labels written to the access log.
const (
	ActorMobileApp         = "Mobile App"
	ActorPassword          = "Password"
	ActorIncorrectPassword = "Incorrect Password"
)

// DeviceStatus is the last state reported by (or optimistically applied to) the lock.
type DeviceStatus struct {
	LockState    LockState `json:"lockState"`
	BatteryLevel int       `json:"batteryLevel"`
	SystemStatus string    `json:"systemStatus"`
}

type AccessLogEntry struct {
	ID        int64        `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Actor     string       `json:"actor"`
	Method    AccessMethod `json:"method"`
	Succeeded bool         `json:"succeeded"`
}

type FingerprintRecord struct {
	ID           int       `json:"id"`
	Label        string    `json:"label"`
	EnrolledDate time.Time `json:"enrolledDate"`
}
