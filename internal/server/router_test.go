package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"smartlock-remote/internal/device/devicetest"
	"smartlock-remote/internal/middleware"
	"smartlock-remote/internal/session"
)

type apiResponse struct {
	Message string           `json:"message"`
	Code    string           `json:"code"`
	State   session.Snapshot `json:"state"`
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) (*gin.Engine, *devicetest.Device) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dev := devicetest.New()
	t.Cleanup(dev.Close)
	sess := session.New(session.Options{Address: dev.Address()})
	return NewRouter(Deps{Session: sess, CommandLimiter: limiter}), dev
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w, _ := do(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCommandsRequireConnection(t *testing.T) {
	r, dev := newTestRouter(t, nil)
	w, resp := do(t, r, http.MethodPost, "/v1/unlock", nil)
	if w.Code != http.StatusConflict || resp.Code != "not_connected" {
		t.Fatalf("expected 409 not_connected, got %d: %s", w.Code, w.Body.String())
	}
	if resp.State.Connected || resp.State.Device != nil {
		t.Fatalf("unexpected state: %+v", resp.State)
	}
	if dev.Count("/unlock") != 0 {
		t.Fatalf("device must not be contacted")
	}
}

func TestLockFlow(t *testing.T) {
	r, dev := newTestRouter(t, nil)

	w, resp := do(t, r, http.MethodPost, "/v1/connect", nil)
	if w.Code != http.StatusOK || !resp.State.Connected {
		t.Fatalf("connect: %d %s", w.Code, w.Body.String())
	}

	w, resp = do(t, r, http.MethodPost, "/v1/unlock", map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("unlock: %d %s", w.Code, w.Body.String())
	}
	if resp.State.Device == nil || resp.State.Device.LockState != "UNLOCKED" || dev.Locked() {
		t.Fatalf("expected unlocked, got %+v", resp.State.Device)
	}
	if len(resp.State.AccessLog) != 1 || resp.State.AccessLog[0].Actor != "Mobile App" {
		t.Fatalf("unexpected access log: %+v", resp.State.AccessLog)
	}

	w, resp = do(t, r, http.MethodPost, "/v1/lock", map[string]any{"method": "voice"})
	if w.Code != http.StatusOK || resp.State.Device.LockState != "LOCKED" {
		t.Fatalf("lock: %d %s", w.Code, w.Body.String())
	}
	if resp.State.AccessLog[0].Method != "voice" {
		t.Fatalf("expected newest entry first with voice method, got %+v", resp.State.AccessLog[0])
	}

	w, _ = do(t, r, http.MethodPut, "/v1/address", map[string]any{"address": "10.0.0.9"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected address lock while connected, got %d", w.Code)
	}

	w, resp = do(t, r, http.MethodPost, "/v1/disconnect", nil)
	if w.Code != http.StatusOK || resp.State.Connected {
		t.Fatalf("disconnect: %d %s", w.Code, w.Body.String())
	}
}

func TestPasswordEndpoints(t *testing.T) {
	r, dev := newTestRouter(t, nil)
	do(t, r, http.MethodPost, "/v1/connect", nil)

	w, resp := do(t, r, http.MethodPost, "/v1/password/verify", map[string]any{"password": "0000"})
	if w.Code != http.StatusUnauthorized || resp.Message != "Incorrect password" {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if resp.State.AccessLog[0].Actor != "Incorrect Password" || resp.State.AccessLog[0].Succeeded {
		t.Fatalf("unexpected log entry: %+v", resp.State.AccessLog[0])
	}

	w, _ = do(t, r, http.MethodPost, "/v1/password/verify", map[string]any{"password": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty password, got %d", w.Code)
	}

	w, _ = do(t, r, http.MethodPut, "/v1/password", map[string]any{"newPassword": "5678", "confirmPassword": "8765"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatch, got %d", w.Code)
	}
	w, _ = do(t, r, http.MethodPut, "/v1/password", map[string]any{"newPassword": "", "confirmPassword": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty fields, got %d", w.Code)
	}
	w, _ = do(t, r, http.MethodPut, "/v1/password", map[string]any{"newPassword": "5678", "confirmPassword": "5678"})
	if w.Code != http.StatusOK || dev.Password() != "5678" {
		t.Fatalf("set password: %d %s", w.Code, w.Body.String())
	}

	w, resp = do(t, r, http.MethodPost, "/v1/password/verify", map[string]any{"password": "5678"})
	if w.Code != http.StatusOK || resp.State.Device.LockState != "UNLOCKED" {
		t.Fatalf("verify: %d %s", w.Code, w.Body.String())
	}
}

func TestFingerprintEndpoints(t *testing.T) {
	r, dev := newTestRouter(t, nil)
	do(t, r, http.MethodPost, "/v1/connect", nil)

	w, resp := do(t, r, http.MethodPost, "/v1/fingerprints", nil)
	if w.Code != http.StatusOK || len(resp.State.Fingerprints) != 1 || resp.State.Fingerprints[0].ID != 1 {
		t.Fatalf("enroll: %d %s", w.Code, w.Body.String())
	}

	dev.SetEnrollResult(false)
	w, resp = do(t, r, http.MethodPost, "/v1/fingerprints", nil)
	if w.Code != http.StatusUnprocessableEntity || len(resp.State.Fingerprints) != 1 {
		t.Fatalf("expected rejected enroll, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = do(t, r, http.MethodDelete, "/v1/fingerprints/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}

	w, resp = do(t, r, http.MethodDelete, "/v1/fingerprints/1", nil)
	if w.Code != http.StatusOK || len(resp.State.Fingerprints) != 0 {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, r, http.MethodGet, "/v1/fingerprints", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
}

func TestDeviceFailureMapsToBadGateway(t *testing.T) {
	r, dev := newTestRouter(t, nil)
	do(t, r, http.MethodPost, "/v1/connect", nil)

	dev.FailWith("/unlock", http.StatusInternalServerError)
	w, resp := do(t, r, http.MethodPost, "/v1/unlock", nil)
	if w.Code != http.StatusBadGateway || resp.Code != "command_failed" {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if resp.State.Device.LockState != "LOCKED" || len(resp.State.AccessLog) != 0 {
		t.Fatalf("failed unlock must not change state: %+v", resp.State)
	}
}

func TestAccessLogLimit(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	do(t, r, http.MethodPost, "/v1/connect", nil)
	do(t, r, http.MethodPost, "/v1/unlock", nil)
	do(t, r, http.MethodPost, "/v1/lock", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/access-logs?limit=1", nil))
	var body struct {
		AccessLog []map[string]any `json:"accessLog"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.AccessLog) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(body.AccessLog))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/access-logs?limit=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestVoiceFlow(t *testing.T) {
	r, dev := newTestRouter(t, nil)

	w, _ := do(t, r, http.MethodPost, "/v1/voice/start", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected voice start to need a connection, got %d", w.Code)
	}

	do(t, r, http.MethodPost, "/v1/connect", nil)
	w, _ = do(t, r, http.MethodPost, "/v1/voice/transcript", map[string]any{"transcript": "open"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected transcript without capture to be rejected, got %d", w.Code)
	}

	w, _ = do(t, r, http.MethodPost, "/v1/voice/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	w, resp := do(t, r, http.MethodPost, "/v1/voice/start", nil)
	if w.Code != http.StatusConflict || resp.Code != "voice_listening" {
		t.Fatalf("expected re-entrant start rejected, got %d: %s", w.Code, w.Body.String())
	}

	w, resp = do(t, r, http.MethodPost, "/v1/voice/transcript", map[string]any{"transcript": "Open the door"})
	if w.Code != http.StatusOK || dev.Locked() {
		t.Fatalf("transcript: %d %s", w.Code, w.Body.String())
	}
	if resp.State.AccessLog[0].Method != "voice" {
		t.Fatalf("expected voice access, got %+v", resp.State.AccessLog[0])
	}

	do(t, r, http.MethodPost, "/v1/voice/start", nil)
	w, resp = do(t, r, http.MethodPost, "/v1/voice/error", map[string]any{"error": "no-speech"})
	if w.Code != http.StatusOK || resp.Message != "Voice recognition error" {
		t.Fatalf("error: %d %s", w.Code, w.Body.String())
	}
}

func TestCommandRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	r, _ := newTestRouter(t, limiter)

	w, _ := do(t, r, http.MethodPost, "/v1/connect", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("connect: %d", w.Code)
	}
	w, _ = do(t, r, http.MethodPost, "/v1/refresh", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	w, _ = do(t, r, http.MethodGet, "/v1/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", w.Code)
	}
}

func TestSwaggerDocument(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.BasePath != "/v1" || doc.Paths["/unlock"]["post"] == nil || doc.Paths["/fingerprints/{id}"]["delete"] == nil {
		t.Fatalf("unexpected document: %s", w.Body.String())
	}
}

func TestUnlockAcceptsEmptyChunkedBody(t *testing.T) {
	r, dev := newTestRouter(t, nil)
	do(t, r, http.MethodPost, "/v1/connect", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/unlock", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || dev.Locked() {
		t.Fatalf("expected unlock with empty chunked body, got %d: %s", w.Code, w.Body.String())
	}
}
