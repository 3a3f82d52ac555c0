// Package session holds the client-side view of one lock: connectivity,
// last known device state, the access log and enrolled fingerprints. All
// commands against the device go through a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"smartlock-remote/internal/device"
	"smartlock-remote/internal/model"
	"smartlock-remote/internal/store"
)

const (
	DefaultBatteryLevel = 85
	DefaultSystemStatus = "normal"
)

// Device is the wire protocol a Session drives. *device.Client implements it.
type Device interface {
	Status(ctx context.Context, address string) (device.Status, error)
	Unlock(ctx context.Context, address string, method model.AccessMethod) error
	Lock(ctx context.Context, address string, method model.AccessMethod) error
	VerifyPassword(ctx context.Context, address, password string) (bool, error)
	SetPassword(ctx context.Context, address, password string) error
	RegisterFingerprint(ctx context.Context, address string) (bool, error)
	DeleteFingerprint(ctx context.Context, address string, id int) error
}

// Inputs are the password form drafts. Successful verify/set-password
// clears them; every failure leaves them as submitted.
type Inputs struct {
	Password        string
	NewPassword     string
	ConfirmPassword string
}

type Options struct {
	Address      string
	Device       Device
	AccessLog    *store.AccessLog
	Fingerprints *store.Fingerprints
	Logger       *zap.Logger
	// OnChange receives a snapshot after every state change. Calls are
	// serialized and made without the session lock held; a slow OnChange
	// delays the command that triggered it.
	OnChange func(Snapshot)
}

type Session struct {
	id     string
	device Device
	log    *zap.Logger

	accessLog    *store.AccessLog
	fingerprints *store.Fingerprints
	onChange     func(Snapshot)

	busy atomic.Bool

	// publishMu orders OnChange calls; each snapshot is taken under it so
	// the last call always carries the newest state.
	publishMu sync.Mutex

	mu        sync.RWMutex
	epoch     uint64
	address   string
	connected bool
	status    model.DeviceStatus
	inputs    Inputs
	message   string
}

func New(opts Options) *Session {
	s := &Session{
		id:           uuid.NewString(),
		device:       opts.Device,
		log:          opts.Logger,
		accessLog:    opts.AccessLog,
		fingerprints: opts.Fingerprints,
		onChange:     opts.OnChange,
		address:      strings.TrimSpace(opts.Address),
		status: model.DeviceStatus{
			LockState:    model.Locked,
			BatteryLevel: DefaultBatteryLevel,
			SystemStatus: DefaultSystemStatus,
		},
	}
	if s.device == nil {
		s.device = device.NewClient(device.Options{Logger: opts.Logger})
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.accessLog == nil {
		s.accessLog = store.NewAccessLog()
	}
	if s.fingerprints == nil {
		s.fingerprints = store.NewFingerprints(store.FingerprintOptions{Logger: s.log})
	}
	s.log = s.log.With(zap.String("session", s.id))
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// LockState is only meaningful while connected; ok reports whether it is.
func (s *Session) LockState() (state model.LockState, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.LockState, s.connected
}

func (s *Session) Inputs() Inputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputs
}

func (s *Session) SetInputs(in Inputs) {
	s.mu.Lock()
	s.inputs = in
	s.mu.Unlock()
}

func (s *Session) StatusMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

func (s *Session) SetStatusMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	s.publish()
}

// SetAddress edits the target address. It is refused while connected to a
// different address or while a probe or command is in flight.
func (s *Session) SetAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return s.fail(ErrInvalidInput, "Enter the lock address")
	}
	if !s.acquire() {
		return s.fail(ErrBusy, "Another command is in progress")
	}
	defer s.release()

	s.mu.Lock()
	if s.connected && address != s.address {
		s.mu.Unlock()
		return s.fail(ErrAddressLocked, "Disconnect before changing the lock address")
	}
	s.address = address
	s.mu.Unlock()
	return nil
}

// Connect probes the device and, on success, marks the session connected
// with the reported state. An empty address reuses the current one. The
// address is only committed once the probe has finished, and a Disconnect
// issued during the probe wins over its result.
func (s *Session) Connect(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" && s.Address() == "" {
		return s.fail(ErrInvalidInput, "Enter the lock address")
	}
	if !s.acquire() {
		return s.fail(ErrBusy, "Another command is in progress")
	}
	defer s.release()

	s.mu.RLock()
	if address == "" {
		address = s.address
	}
	locked := s.connected && address != s.address
	epoch := s.epoch
	s.mu.RUnlock()
	if locked {
		return s.fail(ErrAddressLocked, "Disconnect before changing the lock address")
	}

	st, err := s.device.Status(ctx, address)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Info("connect abandoned", zap.String("address", address))
		return ErrConnectAborted
	}
	s.address = address
	if err != nil {
		s.connected = false
		s.mu.Unlock()
		s.log.Warn("connect failed", zap.String("address", address), zap.Error(err))
		return s.fail(classify("connect", err, true), "Connection error: "+err.Error())
	}
	s.connected = true
	s.applyStatusLocked(st)
	s.message = "Connected to the lock"
	s.mu.Unlock()
	s.log.Info("connected", zap.String("address", address))
	s.publish()
	return nil
}

// Disconnect always succeeds. It also cancels the outcome of a Connect
// whose probe is still running.
func (s *Session) Disconnect() {
	s.mu.Lock()
	was := s.connected
	s.connected = false
	s.epoch++
	s.message = "Disconnected from the lock"
	s.mu.Unlock()
	if was {
		s.log.Info("disconnected")
	}
	s.publish()
}

// RefreshStatus re-probes the device. A failed probe leaves the session
// connected; only Connect and Disconnect change connectivity.
func (s *Session) RefreshStatus(ctx context.Context) error {
	address, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	st, err := s.device.Status(ctx, address)
	if err != nil {
		s.log.Warn("refresh failed", zap.Error(err))
		return s.fail(classify("refresh", err, true), "Could not read lock status: "+err.Error())
	}

	s.mu.Lock()
	s.applyStatusLocked(st)
	s.message = "Lock status updated"
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Session) Unlock(ctx context.Context, method model.AccessMethod) error {
	return s.move(ctx, method, model.Unlocked)
}

func (s *Session) Lock(ctx context.Context, method model.AccessMethod) error {
	return s.move(ctx, method, model.Locked)
}

func (s *Session) move(ctx context.Context, method model.AccessMethod, target model.LockState) error {
	if method == "" {
		method = model.MethodApp
	}
	if !method.Valid() {
		return s.fail(ErrInvalidInput, fmt.Sprintf("Unknown access method %q", method))
	}
	address, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	op, verb := "unlock", "opened"
	send := s.device.Unlock
	if target == model.Locked {
		op, verb = "lock", "closed"
		send = s.device.Lock
	}

	if err := send(ctx, address, method); err != nil {
		s.log.Warn(op+" failed", zap.String("method", string(method)), zap.Error(err))
		cerr := classify(op, err, false)
		var cmdErr *CommandError
		if errors.As(cerr, &cmdErr) {
			return s.fail(cerr, fmt.Sprintf("The lock refused to %s", op))
		}
		return s.fail(cerr, "Error: "+err.Error())
	}

	// The command response is authoritative; no follow-up probe.
	s.mu.Lock()
	s.status.LockState = target
	s.message = "Lock " + verb + " successfully"
	s.mu.Unlock()
	s.accessLog.Record(model.ActorMobileApp, method, true)
	s.log.Info(op, zap.String("method", string(method)))
	s.publish()
	return nil
}

func (s *Session) VerifyPassword(ctx context.Context, password string) error {
	s.mu.Lock()
	s.inputs.Password = password
	s.mu.Unlock()

	if password == "" {
		return s.fail(ErrInvalidInput, "Enter a password")
	}
	address, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	ok, err := s.device.VerifyPassword(ctx, address, password)
	if err != nil {
		s.log.Warn("verify password failed", zap.Error(err))
		return s.fail(classify("verify-password", err, false), "Error: "+err.Error())
	}
	if !ok {
		s.accessLog.Record(model.ActorIncorrectPassword, model.MethodPassword, false)
		s.log.Info("password rejected")
		return s.fail(&CommandError{Op: "verify-password", Rejected: true}, "Incorrect password")
	}

	s.mu.Lock()
	s.status.LockState = model.Unlocked
	s.inputs.Password = ""
	s.message = "Password correct. Lock opened."
	s.mu.Unlock()
	s.accessLog.Record(model.ActorPassword, model.MethodPassword, true)
	s.log.Info("password accepted")
	s.publish()
	return nil
}

func (s *Session) SetPassword(ctx context.Context, newPassword, confirmPassword string) error {
	s.mu.Lock()
	s.inputs.NewPassword = newPassword
	s.inputs.ConfirmPassword = confirmPassword
	s.mu.Unlock()

	if newPassword == "" || confirmPassword == "" {
		return s.fail(&ValidationError{Reason: "empty"}, "Fill in both password fields")
	}
	if newPassword != confirmPassword {
		return s.fail(&ValidationError{Reason: "mismatch"}, "Passwords do not match")
	}
	address, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	if err := s.device.SetPassword(ctx, address, newPassword); err != nil {
		s.log.Warn("set password failed", zap.Error(err))
		return s.fail(classify("set-password", err, false), "Could not save the password: "+err.Error())
	}

	s.mu.Lock()
	s.inputs.NewPassword = ""
	s.inputs.ConfirmPassword = ""
	s.message = "Password saved"
	s.mu.Unlock()
	s.log.Info("password changed")
	s.publish()
	return nil
}

// EnrollFingerprint asks the device to read a new finger; the request
// blocks until the sensor has been used.
func (s *Session) EnrollFingerprint(ctx context.Context) (model.FingerprintRecord, error) {
	address, err := s.begin()
	if err != nil {
		return model.FingerprintRecord{}, err
	}
	defer s.release()

	s.SetStatusMessage("Place your finger on the sensor...")

	ok, err := s.device.RegisterFingerprint(ctx, address)
	if err != nil {
		s.log.Warn("enroll fingerprint failed", zap.Error(err))
		return model.FingerprintRecord{}, s.fail(classify("register-fingerprint", err, false), "Error: "+err.Error())
	}
	if !ok {
		return model.FingerprintRecord{}, s.fail(&CommandError{Op: "register-fingerprint", Rejected: true}, "Could not enroll the fingerprint")
	}

	rec := s.fingerprints.Enroll()
	s.mu.Lock()
	s.message = "Fingerprint enrolled"
	s.mu.Unlock()
	s.log.Info("fingerprint enrolled", zap.Int("id", rec.ID))
	s.publish()
	return rec, nil
}

func (s *Session) DeleteFingerprint(ctx context.Context, id int) error {
	address, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	if err := s.device.DeleteFingerprint(ctx, address, id); err != nil {
		s.log.Warn("delete fingerprint failed", zap.Int("id", id), zap.Error(err))
		return s.fail(classify("delete-fingerprint", err, false), "Could not delete the fingerprint: "+err.Error())
	}

	s.fingerprints.Remove(id)
	s.mu.Lock()
	s.message = "Fingerprint deleted"
	s.mu.Unlock()
	s.log.Info("fingerprint deleted", zap.Int("id", id))
	s.publish()
	return nil
}

// begin checks the connection and claims the single in-flight slot.
func (s *Session) begin() (string, error) {
	s.mu.RLock()
	connected, address := s.connected, s.address
	s.mu.RUnlock()
	if !connected {
		return "", s.fail(ErrNotConnected, "Not connected to the lock")
	}
	if !s.acquire() {
		return "", s.fail(ErrBusy, "Another command is in progress")
	}
	return address, nil
}

func (s *Session) acquire() bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	s.publish()
	return true
}

func (s *Session) release() {
	s.busy.Store(false)
	s.publish()
}

func (s *Session) fail(err error, msg string) error {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	s.publish()
	return err
}

func (s *Session) applyStatusLocked(st device.Status) {
	s.status.LockState = model.Unlocked
	if st.Locked != nil && *st.Locked {
		s.status.LockState = model.Locked
	}
	s.status.BatteryLevel = DefaultBatteryLevel
	if st.Battery != nil {
		s.status.BatteryLevel = *st.Battery
	}
	s.status.SystemStatus = DefaultSystemStatus
	if st.Status != nil && *st.Status != "" {
		s.status.SystemStatus = *st.Status
	}
}

func (s *Session) publish() {
	if s.onChange == nil {
		return
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.onChange(s.Snapshot())
}
