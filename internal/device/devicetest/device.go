// Package devicetest provides an in-process fake lock controller for tests.
package devicetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        map[string]any
}

// Device mimics the controller firmware: it keeps its own lock state and
// password, and can be told to fail or stall individual paths.
type Device struct {
	mu sync.Mutex

	locked       bool
	battery      *int
	systemStatus *string
	password     string
	enrollOK     bool
	rawStatus    string

	failures map[string]int
	holds    map[string]chan struct{}
	entered  map[string]chan struct{}
	requests []Request

	server *httptest.Server
}

func New() *Device {
	d := &Device{
		locked:   true,
		password: "1234",
		enrollOK: true,
		failures: make(map[string]int),
		holds:    make(map[string]chan struct{}),
		entered:  make(map[string]chan struct{}),
	}
	d.server = httptest.NewServer(http.HandlerFunc(d.serve))
	return d
}

// Address is host:port, the form a user types into the client.
func (d *Device) Address() string {
	return strings.TrimPrefix(d.server.URL, "http://")
}

func (d *Device) Close() { d.server.Close() }

func (d *Device) SetLocked(locked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = locked
}

func (d *Device) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

func (d *Device) SetBattery(level int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.battery = &level
}

func (d *Device) SetSystemStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.systemStatus = &status
}

func (d *Device) SetPassword(password string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.password = password
}

func (d *Device) Password() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.password
}

func (d *Device) SetEnrollResult(ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrollOK = ok
}

// SetRawStatus makes /status answer with body verbatim.
func (d *Device) SetRawStatus(body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rawStatus = body
}

// FailWith makes path answer with code until Recover is called.
func (d *Device) FailWith(path string, code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[path] = code
}

func (d *Device) Recover(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.failures, path)
}

// Hold stalls requests to path. The returned channel is closed once a
// request has arrived; calling release lets it continue.
func (d *Device) Hold(path string) (entered <-chan struct{}, release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{})
	d.holds[path] = gate
	d.entered[path] = in
	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

func (d *Device) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Request, len(d.requests))
	copy(out, d.requests)
	return out
}

func (d *Device) Count(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (d *Device) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	req := Request{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &req.Body)
	}

	d.mu.Lock()
	d.requests = append(d.requests, req)
	gate := d.holds[r.URL.Path]
	in := d.entered[r.URL.Path]
	delete(d.holds, r.URL.Path)
	delete(d.entered, r.URL.Path)
	d.mu.Unlock()

	if gate != nil {
		close(in)
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if code, ok := d.failures[r.URL.Path]; ok {
		writeJSON(w, code, map[string]any{"error": "forced failure"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		if d.rawStatus != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, d.rawStatus)
			return
		}
		body := map[string]any{"locked": d.locked}
		if d.battery != nil {
			body["battery"] = *d.battery
		}
		if d.systemStatus != nil {
			body["status"] = *d.systemStatus
		}
		writeJSON(w, http.StatusOK, body)
	case r.Method == http.MethodPost && r.URL.Path == "/unlock":
		d.locked = false
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case r.Method == http.MethodPost && r.URL.Path == "/lock":
		d.locked = true
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case r.Method == http.MethodPost && r.URL.Path == "/verify-password":
		pw, _ := req.Body["password"].(string)
		if pw != "" && pw == d.password {
			d.locked = false
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
	case r.Method == http.MethodPost && r.URL.Path == "/set-password":
		pw, _ := req.Body["password"].(string)
		if pw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "empty password"})
			return
		}
		d.password = pw
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case r.Method == http.MethodPost && r.URL.Path == "/register-fingerprint":
		writeJSON(w, http.StatusOK, map[string]any{"success": d.enrollOK})
	case r.Method == http.MethodPost && r.URL.Path == "/delete-fingerprint":
		if _, ok := req.Body["fingerprintId"]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing fingerprintId"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
