// Package webapi exposes the read side of the lock over HTTP: session
// status, enrolled users and the authentication audit log.
package webapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"voicelock-go/internal/domain/session"
	"voicelock-go/internal/domain/voiceprint"
	"voicelock-go/internal/platform/config"
	"voicelock-go/internal/platform/logging"
	"voicelock-go/internal/platform/storage"
)

// Service is the gin application serving the status and admin API.
type Service struct {
	cfg       config.WebConfig
	session   *session.AuthenticationSession
	prints    *voiceprint.Store
	events    storage.AuthEventRepository
	logger    *logging.Logger
	engine    *gin.Engine
	server    *http.Server
	startedAt time.Time
}

func NewService(
	cfg config.WebConfig,
	sess *session.AuthenticationSession,
	prints *voiceprint.Store,
	events storage.AuthEventRepository,
	logger *logging.Logger,
) *Service {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	s := &Service{
		cfg:       cfg,
		session:   sess,
		prints:    prints,
		events:    events,
		logger:    logger,
		engine:    engine,
		startedAt: time.Now(),
	}
	s.routes()
	return s
}

func (s *Service) routes() {
	api := s.engine.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/users", s.handleUsers)
	api.POST("/login", s.handleLogin)

	admin := api.Group("/admin")
	admin.Use(s.authMiddleware())
	admin.GET("/events", s.handleEvents)
}

// Start serves until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port)
	s.server = &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoTag("HTTP", "web api listening on %s", addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler exposes the router for tests.
func (s *Service) Handler() http.Handler {
	return s.engine
}
