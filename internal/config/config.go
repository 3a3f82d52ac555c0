package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"smartlock-remote/internal/store"
)

type Config struct {
	Port        int
	GinMode     string
	TLSCertFile string
	TLSKeyFile  string

	DeviceAddress string
	DeviceTimeout time.Duration
	EnrollTimeout time.Duration
	AutoConnect   bool

	FingerprintIDPolicy   store.IDPolicy
	FingerprintsStateFile string

	CommandRateLimit int // per client IP per minute, 0 disables
	LogLevel         string
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// LoadConfig reads the process environment after loading an optional .env
// file. Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:                3000,
		GinMode:             "release",
		DeviceAddress:       "192.168.1.100",
		DeviceTimeout:       8 * time.Second,
		EnrollTimeout:       30 * time.Second,
		FingerprintIDPolicy: store.IDPolicyCount,
		CommandRateLimit:    30,
		LogLevel:            "info",
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	if raw := strings.TrimSpace(env.Getenv("DEVICE_ADDRESS")); raw != "" {
		cfg.DeviceAddress = raw
	}

	if raw := env.Getenv("DEVICE_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid DEVICE_TIMEOUT_SECONDS")
		}
		cfg.DeviceTimeout = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("ENROLL_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid ENROLL_TIMEOUT_SECONDS")
		}
		cfg.EnrollTimeout = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("AUTO_CONNECT"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUTO_CONNECT")
		}
		cfg.AutoConnect = v
	}

	policy, err := store.ParseIDPolicy(env.Getenv("FINGERPRINT_ID_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid FINGERPRINT_ID_POLICY")
	}
	cfg.FingerprintIDPolicy = policy
	cfg.FingerprintsStateFile = env.Getenv("FINGERPRINTS_STATE_FILE")

	if raw := env.Getenv("COMMAND_RATE_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Config{}, fmt.Errorf("invalid COMMAND_RATE_LIMIT")
		}
		cfg.CommandRateLimit = limit
	}

	if raw := env.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	return cfg, nil
}
