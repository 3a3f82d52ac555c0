// Package voice turns speech transcripts into lock commands.
package voice

import "strings"

type Intent int

const (
	IntentUnrecognized Intent = iota
	IntentUnlock
	IntentLock
	IntentQueryStatus
)

func (i Intent) String() string {
	switch i {
	case IntentUnlock:
		return "unlock"
	case IntentLock:
		return "lock"
	case IntentQueryStatus:
		return "query-status"
	}
	return "unrecognized"
}

// Spanish keywords are kept for parity with the controller's original app.
var (
	openKeywords   = []string{"open", "unlock", "abrir", "abre"}
	closeKeywords  = []string{"close", "lock", "cerrar", "cierra"}
	statusKeywords = []string{"status", "estado"}
)

// Interpret matches by substring, first match wins: open, then close, then
// status. "unlock" therefore never reads as a lock request.
func Interpret(transcript string) Intent {
	t := strings.ToLower(transcript)
	switch {
	case containsAny(t, openKeywords):
		return IntentUnlock
	case containsAny(t, closeKeywords):
		return IntentLock
	case containsAny(t, statusKeywords):
		return IntentQueryStatus
	}
	return IntentUnrecognized
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
