package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	_ "smartlock-remote/docs"
	"smartlock-remote/internal/handler"
	"smartlock-remote/internal/hub"
	"smartlock-remote/internal/middleware"
	"smartlock-remote/internal/session"
	"smartlock-remote/internal/voice"
)

type Deps struct {
	Session *session.Session
	Capture *voice.Capture
	Hub     *hub.Hub
	Logger  *zap.Logger
	// CommandLimiter throttles the device-facing routes. Nil disables it.
	CommandLimiter *middleware.RateLimiter
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Capture == nil {
		deps.Capture = voice.NewCapture()
	}
	if deps.Hub == nil {
		deps.Hub = hub.New()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	stateHandler := &handler.StateHandler{Session: deps.Session}
	connHandler := &handler.ConnectionHandler{Session: deps.Session}
	lockHandler := &handler.LockHandler{Session: deps.Session}
	passwordHandler := &handler.PasswordHandler{Session: deps.Session}
	fingerprintHandler := &handler.FingerprintHandler{Session: deps.Session}
	voiceHandler := &handler.VoiceHandler{
		Session:    deps.Session,
		Capture:    deps.Capture,
		Controller: &voice.Controller{Session: deps.Session, Logger: deps.Logger},
	}

	v1 := r.Group("/v1")
	v1.GET("/state", stateHandler.Get)
	v1.GET("/access-logs", stateHandler.AccessLogs)
	v1.GET("/fingerprints", stateHandler.Fingerprints)
	v1.GET("/voice", voiceHandler.Status)
	v1.PUT("/address", connHandler.SetAddress)
	v1.POST("/disconnect", connHandler.Disconnect)
	v1.POST("/voice/start", voiceHandler.Start)
	v1.POST("/voice/error", voiceHandler.Error)

	commands := v1.Group("")
	commands.Use(middleware.RateLimitMiddleware(deps.CommandLimiter))
	commands.POST("/connect", connHandler.Connect)
	commands.POST("/refresh", connHandler.Refresh)
	commands.POST("/unlock", lockHandler.Unlock)
	commands.POST("/lock", lockHandler.Lock)
	commands.POST("/password/verify", passwordHandler.Verify)
	commands.PUT("/password", passwordHandler.Set)
	commands.POST("/fingerprints", fingerprintHandler.Enroll)
	commands.DELETE("/fingerprints/:id", fingerprintHandler.Delete)
	commands.POST("/voice/transcript", voiceHandler.Transcript)

	wsHandler := &handler.WebSocketHandler{Hub: deps.Hub, Session: deps.Session, Logger: deps.Logger}
	r.GET("/ws", wsHandler.Serve)

	return r
}
