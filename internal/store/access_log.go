package store

import (
	"sync"
	"time"

	"smartlock-remote/internal/model"
)

// AccessLog is the append-only record of access attempts for one session
// lifetime. Entries are immutable and listed most recent first.
type AccessLog struct {
	mu      sync.RWMutex
	entries []model.AccessLogEntry // oldest first
	seq     *seqGenerator
	now     func() time.Time
}

func NewAccessLog() *AccessLog {
	return NewAccessLogWithNow(time.Now)
}

func NewAccessLogWithNow(now func() time.Time) *AccessLog {
	return &AccessLog{seq: newSeqGenerator(), now: now}
}

func (l *AccessLog) Record(actor string, method model.AccessMethod, succeeded bool) model.AccessLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := model.AccessLogEntry{
		ID:        l.seq.next(),
		Timestamp: l.now(),
		Actor:     actor,
		Method:    method,
		Succeeded: succeeded,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// List returns a copy of the log, most recent first. limit <= 0 means all.
func (l *AccessLog) List(limit int) []model.AccessLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	result := make([]model.AccessLogEntry, 0, limit)
	for i := n - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, l.entries[i])
	}
	return result
}

func (l *AccessLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
