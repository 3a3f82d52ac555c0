// @title           Smart Lock Remote API
// @version         1.0
// @description     Control API for a single HTTP door lock.
// @BasePath        /v1
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"smartlock-remote/internal/config"
	"smartlock-remote/internal/device"
	"smartlock-remote/internal/handler"
	"smartlock-remote/internal/hub"
	"smartlock-remote/internal/logging"
	"smartlock-remote/internal/middleware"
	"smartlock-remote/internal/server"
	"smartlock-remote/internal/session"
	"smartlock-remote/internal/store"
	"smartlock-remote/internal/voice"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)

	fingerprints := store.NewFingerprints(store.FingerprintOptions{
		Policy:    cfg.FingerprintIDPolicy,
		StateFile: cfg.FingerprintsStateFile,
		Logger:    logger,
	})
	client := device.NewClient(device.Options{
		Timeout:       cfg.DeviceTimeout,
		EnrollTimeout: cfg.EnrollTimeout,
		Logger:        logger,
	})

	wsHub := hub.New()
	broadcaster := hub.NewBroadcaster(wsHub)
	defer broadcaster.Stop()
	sess := session.New(session.Options{
		Address:      cfg.DeviceAddress,
		Device:       client,
		AccessLog:    store.NewAccessLog(),
		Fingerprints: fingerprints,
		Logger:       logger,
		OnChange: func(snap session.Snapshot) {
			broadcaster.Publish(handler.StateMessage(snap))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoConnect {
		if err := sess.Connect(ctx, ""); err != nil {
			logger.Warn("auto-connect failed", zap.String("address", cfg.DeviceAddress), zap.Error(err))
		}
	}

	limiter := middleware.NewRateLimiter(cfg.CommandRateLimit, time.Minute)
	defer limiter.Stop()

	router := server.NewRouter(server.Deps{
		Session:        sess,
		Capture:        voice.NewCapture(),
		Hub:            wsHub,
		Logger:         logger,
		CommandLimiter: limiter,
	})
	logger.Info("listening",
		zap.Int("port", cfg.Port),
		zap.String("device", cfg.DeviceAddress),
		zap.String("fingerprintIdPolicy", string(cfg.FingerprintIDPolicy)),
	)
	if err := server.Run(ctx, cfg, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("shut down")
}
