package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
)

//go:embed assets/index.html
var assets embed.FS

// Server is the browser front-end. It implements srv.Service.
type Server struct {
	cfg    *config.AppConfig
	chat   core.ChatService
	router core.CmdRouter
	http   *http.Server
	engine *gin.Engine
}

func NewServer(ctx context.Context, cfg *config.AppConfig, chat core.ChatService, router core.CmdRouter) (*Server, error) {
	if !config.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		chat:   chat,
		router: router,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(ctx))
	r.SetHTMLTemplate(tmpl)
	s.routes(r)
	s.engine = r

	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.index)
	r.GET("/health", s.health)

	api := r.Group("/api")
	api.Use(sessionCookie(s.cfg.SessionIdleTTL))
	{
		api.GET("/status", s.status)
		api.GET("/history", s.history)
		api.POST("/chat", s.send)
		api.POST("/clear", s.clear)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.HTTPAddr).Msg("starting web server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(ctx context.Context) gin.HandlerFunc {
	logger := log.FromCtx(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
