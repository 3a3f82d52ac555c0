// Package device speaks the lock controller's small HTTP API.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"smartlock-remote/internal/model"
)

const (
	DefaultTimeout       = 8 * time.Second
	DefaultEnrollTimeout = 30 * time.Second

	maxBodyBytes = 64 * 1024
)

type Options struct {
	Timeout       time.Duration
	EnrollTimeout time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client issues requests against whichever address the caller passes in;
// it keeps no connection state of its own.
type Client struct {
	http          *http.Client
	timeout       time.Duration
	enrollTimeout time.Duration
	log           *zap.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		http:          opts.HTTPClient,
		timeout:       opts.Timeout,
		enrollTimeout: opts.EnrollTimeout,
		log:           opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.enrollTimeout <= 0 {
		c.enrollTimeout = DefaultEnrollTimeout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Status is the body of GET /status. Battery and Status are optional.
type Status struct {
	Locked  *bool   `json:"locked"`
	Battery *int    `json:"battery"`
	Status  *string `json:"status"`
}

type methodBody struct {
	Method model.AccessMethod `json:"method"`
}

type passwordBody struct {
	Password string `json:"password"`
}

type fingerprintBody struct {
	FingerprintID int `json:"fingerprintId"`
}

type successBody struct {
	Success *bool `json:"success"`
}

func (c *Client) Status(ctx context.Context, address string) (Status, error) {
	var st Status
	resp, err := c.do(ctx, address, http.MethodGet, "/status", nil, c.timeout)
	if err != nil {
		return st, err
	}
	if !resp.ok() {
		return st, resp.statusError()
	}
	if err := json.Unmarshal(resp.body, &st); err != nil {
		return st, &TransportError{Op: "status", Malformed: true, Err: errors.Wrap(err, "decode status")}
	}
	if st.Locked == nil {
		return st, &TransportError{Op: "status", Malformed: true, Err: errors.New("status response missing locked")}
	}
	return st, nil
}

func (c *Client) Unlock(ctx context.Context, address string, method model.AccessMethod) error {
	return c.expectOK(ctx, address, "/unlock", methodBody{Method: method})
}

func (c *Client) Lock(ctx context.Context, address string, method model.AccessMethod) error {
	return c.expectOK(ctx, address, "/lock", methodBody{Method: method})
}

func (c *Client) SetPassword(ctx context.Context, address, password string) error {
	return c.expectOK(ctx, address, "/set-password", passwordBody{Password: password})
}

func (c *Client) DeleteFingerprint(ctx context.Context, address string, id int) error {
	return c.expectOK(ctx, address, "/delete-fingerprint", fingerprintBody{FingerprintID: id})
}

// VerifyPassword reports the device's verdict. A decodable body decides
// the outcome whatever the HTTP status, since controllers commonly answer
// a wrong password with 401 and {"success": false}.
func (c *Client) VerifyPassword(ctx context.Context, address, password string) (bool, error) {
	return c.expectSuccess(ctx, address, "/verify-password", passwordBody{Password: password}, c.timeout)
}

// RegisterFingerprint blocks until the device has read the sensor.
func (c *Client) RegisterFingerprint(ctx context.Context, address string) (bool, error) {
	return c.expectSuccess(ctx, address, "/register-fingerprint", nil, c.enrollTimeout)
}

func (c *Client) expectOK(ctx context.Context, address, path string, payload any) error {
	resp, err := c.do(ctx, address, http.MethodPost, path, payload, c.timeout)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.statusError()
	}
	return nil
}

func (c *Client) expectSuccess(ctx context.Context, address, path string, payload any, timeout time.Duration) (bool, error) {
	resp, err := c.do(ctx, address, http.MethodPost, path, payload, timeout)
	if err != nil {
		return false, err
	}
	var body successBody
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Success == nil {
		if !resp.ok() {
			return false, resp.statusError()
		}
		if err == nil {
			err = errors.New("response missing success")
		}
		return false, &TransportError{Op: opName(path), Malformed: true, Err: errors.Wrapf(err, "decode %s", path)}
	}
	return *body.Success, nil
}

type response struct {
	op     string
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

func (r response) statusError() error {
	return &StatusError{Op: r.op, Code: r.status, Body: strings.TrimSpace(string(r.body))}
}

func (c *Client) do(ctx context.Context, address, method, path string, payload any, timeout time.Duration) (response, error) {
	op := opName(path)
	url, err := BaseURL(address)
	if err != nil {
		return response{}, &TransportError{Op: op, Err: err}
	}
	url += path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, &TransportError{Op: op, Err: errors.Wrap(err, "encode request")}
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, &TransportError{Op: op, Err: errors.Wrap(err, "build request")}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("device request failed",
			zap.String("method", method), zap.String("url", url),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return response{}, &TransportError{Op: op, Timeout: isTimeout(ctx, err), Err: errors.Wrapf(err, "%s %s", method, url)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, &TransportError{Op: op, Timeout: isTimeout(ctx, err), Err: errors.Wrap(err, "read response")}
	}
	c.log.Debug("device request",
		zap.String("method", method), zap.String("url", url),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	return response{op: op, status: resp.StatusCode, body: data}, nil
}

// BaseURL turns a user-entered address into http://host[:port]. An explicit
// http:// or https:// prefix is kept.
func BaseURL(address string) (string, error) {
	addr := strings.TrimSpace(address)
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return "", errors.New("empty device address")
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr, nil
	}
	if strings.Contains(addr, "/") {
		return "", fmt.Errorf("invalid device address %q", address)
	}
	return "http://" + addr, nil
}

func opName(path string) string {
	return strings.TrimPrefix(path, "/")
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
