package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"smartlock-remote/internal/device"
	"smartlock-remote/internal/logging"
	"smartlock-remote/internal/session"
	"smartlock-remote/internal/store"
	"smartlock-remote/internal/voice"
)

// Default device address; can override with LOCK_ADDRESS env var or --address flag.
var deviceAddress = "192.168.1.100"

func main() {
	cmd := flag.String("cmd", "status", "Command: status|unlock|lock|verify|set-password|enroll|delete|voice")
	addressFlag := flag.String("address", "", "Lock address (host, host:port or IP)")
	password := flag.String("password", "", "Password (for verify)")
	newPassword := flag.String("new", "", "New password (for set-password)")
	confirm := flag.String("confirm", "", "Repeat the new password (for set-password)")
	id := flag.Int("id", 0, "Fingerprint ID (for delete)")
	say := flag.String("say", "", "Spoken phrase (for voice)")
	timeout := flag.Duration("timeout", 8*time.Second, "Per-request timeout")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()
	if env := os.Getenv("LOCK_ADDRESS"); env != "" {
		deviceAddress = strings.TrimSpace(env)
	}
	if *addressFlag != "" {
		deviceAddress = strings.TrimSpace(*addressFlag)
	}

	logger := logging.New(*logLevel)
	defer func() { _ = logger.Sync() }()

	sess := session.New(session.Options{
		Address: deviceAddress,
		Device: device.NewClient(device.Options{
			Timeout: *timeout,
			Logger:  logger,
		}),
		Fingerprints: store.NewFingerprints(store.FingerprintOptions{Logger: logger}),
		Logger:       logger,
	})

	ctx := context.Background()
	err := sess.Connect(ctx, "")
	if err == nil {
		err = run(ctx, sess, logger, *cmd, *password, *newPassword, *confirm, *id, *say)
	}

	fmt.Println(sess.StatusMessage())
	out, _ := json.MarshalIndent(sess.Snapshot(), "", "  ")
	fmt.Println(string(out))
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sess *session.Session, logger *zap.Logger, cmd, password, newPassword, confirm string, id int, say string) error {
	switch cmd {
	case "status":
		return nil
	case "unlock":
		return sess.Unlock(ctx, "")
	case "lock":
		return sess.Lock(ctx, "")
	case "verify":
		return sess.VerifyPassword(ctx, password)
	case "set-password":
		return sess.SetPassword(ctx, newPassword, confirm)
	case "enroll":
		_, err := sess.EnrollFingerprint(ctx)
		return err
	case "delete":
		if id <= 0 {
			return fmt.Errorf("--id required")
		}
		return sess.DeleteFingerprint(ctx, id)
	case "voice":
		if say == "" {
			return fmt.Errorf("--say required")
		}
		ctrl := &voice.Controller{Session: sess, Logger: logger}
		_, err := ctrl.Handle(ctx, say)
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
