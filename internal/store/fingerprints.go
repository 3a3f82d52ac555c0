package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"smartlock-remote/internal/model"
)

// IDPolicy decides which id a newly enrolled fingerprint receives.
type IDPolicy string

const (
	// IDPolicyCount assigns count+1. Ids are reused once deletions shrink
	// the count, so two records can end up sharing an id.
	IDPolicyCount IDPolicy = "count"
	// IDPolicyMonotonic assigns one more than the highest id ever issued.
	IDPolicyMonotonic IDPolicy = "monotonic"
)

func ParseIDPolicy(raw string) (IDPolicy, error) {
	switch IDPolicy(raw) {
	case "", IDPolicyCount:
		return IDPolicyCount, nil
	case IDPolicyMonotonic:
		return IDPolicyMonotonic, nil
	}
	return "", fmt.Errorf("unknown fingerprint id policy %q", raw)
}

type FingerprintOptions struct {
	Policy    IDPolicy
	StateFile string
	Logger    *zap.Logger
	Now       func() time.Time
}

// Fingerprints is the client-side list of enrolled fingerprints.
type Fingerprints struct {
	mu      sync.RWMutex
	records []model.FingerprintRecord
	highest int

	policy    IDPolicy
	stateFile string
	persistMu sync.Mutex
	log       *zap.Logger
	now       func() time.Time
}

func NewFingerprints(opts FingerprintOptions) *Fingerprints {
	f := &Fingerprints{
		policy:    opts.Policy,
		stateFile: opts.StateFile,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if f.policy == "" {
		f.policy = IDPolicyCount
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	if f.now == nil {
		f.now = time.Now
	}

	if f.stateFile != "" {
		if err := f.loadFromFile(f.stateFile); err != nil {
			f.log.Warn("fingerprints persistence: load failed",
				zap.String("file", f.stateFile), zap.Error(err))
		}
	}
	return f
}

func (f *Fingerprints) Policy() IDPolicy { return f.policy }

// Enroll creates the next record according to the id policy.
func (f *Fingerprints) Enroll() model.FingerprintRecord {
	f.mu.Lock()
	id := len(f.records) + 1
	if f.policy == IDPolicyMonotonic {
		id = f.highest + 1
	}
	if id > f.highest {
		f.highest = id
	}
	rec := model.FingerprintRecord{
		ID:           id,
		Label:        fmt.Sprintf("Fingerprint #%d", id),
		EnrolledDate: f.now(),
	}
	f.records = append(f.records, rec)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	f.persistSnapshot(snapshot)
	return rec
}

// Remove drops every record carrying id and reports whether any matched.
func (f *Fingerprints) Remove(id int) bool {
	f.mu.Lock()
	kept := f.records[:0]
	removed := false
	for _, rec := range f.records {
		if rec.ID == id {
			removed = true
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	var snapshot []model.FingerprintRecord
	if removed {
		snapshot = f.snapshotLocked()
	}
	f.mu.Unlock()

	if removed {
		f.persistSnapshot(snapshot)
	}
	return removed
}

func (f *Fingerprints) List() []model.FingerprintRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

func (f *Fingerprints) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records)
}

func (f *Fingerprints) snapshotLocked() []model.FingerprintRecord {
	result := make([]model.FingerprintRecord, len(f.records))
	copy(result, f.records)
	return result
}

type persistedFingerprintsFile struct {
	Version      int                       `json:"version"`
	Policy       IDPolicy                  `json:"policy"`
	HighestID    int                       `json:"highestId"`
	Fingerprints []model.FingerprintRecord `json:"fingerprints"`
	SavedAt      int64                     `json:"savedAt"`
}

func (f *Fingerprints) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var file persistedFingerprintsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.Version != 1 {
		return errors.New("unsupported fingerprints state version")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range file.Fingerprints {
		if rec.ID <= 0 {
			continue
		}
		f.records = append(f.records, rec)
		if rec.ID > f.highest {
			f.highest = rec.ID
		}
	}
	if file.HighestID > f.highest {
		f.highest = file.HighestID
	}
	sort.SliceStable(f.records, func(i, j int) bool {
		return f.records[i].EnrolledDate.Before(f.records[j].EnrolledDate)
	})
	return nil
}

func (f *Fingerprints) persistSnapshot(records []model.FingerprintRecord) {
	path := f.stateFile
	if path == "" {
		return
	}

	f.persistMu.Lock()
	defer f.persistMu.Unlock()

	f.mu.RLock()
	highest := f.highest
	f.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		f.log.Error("fingerprints persistence: mkdir failed", zap.String("dir", dir), zap.Error(err))
		return
	}

	file := persistedFingerprintsFile{
		Version:      1,
		Policy:       f.policy,
		HighestID:    highest,
		Fingerprints: records,
		SavedAt:      time.Now().UnixMilli(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		f.log.Error("fingerprints persistence: marshal failed", zap.Error(err))
		return
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		f.log.Error("fingerprints persistence: create temp failed", zap.Error(err))
		return
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		f.log.Error("fingerprints persistence: chmod temp failed", zap.Error(err))
		return
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		f.log.Error("fingerprints persistence: write temp failed", zap.Error(err))
		return
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		f.log.Error("fingerprints persistence: sync temp failed", zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		f.log.Error("fingerprints persistence: close temp failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmpName, path); err != nil {
		f.log.Error("fingerprints persistence: rename failed", zap.Error(err))
	}
}
