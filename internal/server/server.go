package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/handlers"
)

type Server struct {
	srv    *http.Server
	engine *gin.Engine
	port   int
}

// NewServer creates the stub Target System. registerHandlerFn receives the engine
// with the logging and recovery middleware installed.
func NewServer(cfg config.Stub, registerHandlerFn func(engine *gin.Engine)) (*Server, error) {
	switch cfg.ServerMode {
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "dev", "":
		gin.SetMode(gin.DebugMode)
	default:
		return nil, fmt.Errorf("invalid server mode %q", cfg.ServerMode)
	}

	engine := gin.New()
	logger := zap.L().Named("http")
	engine.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		ginzap.RecoveryWithZap(logger, true),
	)
	registerHandlerFn(engine)

	return &Server{
		engine: engine,
		port:   cfg.HTTPPort,
		srv: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// RegisterHandlers wires the Traefik API and the dashboard routes.
func RegisterHandlers(engine *gin.Engine, h *handlers.Handler) {
	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard/")
	})

	dashboard := engine.Group("/dashboard")
	dashboard.GET("/", h.GetDashboard)
	dashboard.GET("/flags.js", h.GetFlags)
	dashboard.StaticFileFS("/app.js", "app.js", handlers.Assets())
	dashboard.StaticFileFS("/style.css", "style.css", handlers.Assets())

	api := engine.Group("/api")
	api.GET("/overview", h.GetOverview)
	api.GET("/version", h.GetVersion)

	httpAPI := api.Group("/http")
	httpAPI.GET("/routers", h.ListRouters)
	httpAPI.GET("/routers/:name", h.GetRouter)
	httpAPI.GET("/middlewares", h.ListMiddlewares)
	httpAPI.GET("/middlewares/:name", h.GetMiddleware)
	httpAPI.GET("/services", h.ListServices)
	httpAPI.GET("/services/:name", h.GetService)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "404 page not found"})
	})
}

// Handler exposes the engine, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured port and blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, l)
}

// Serve blocks serving on l until the server is stopped or ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	})
	defer stop()

	zap.S().Named("server").Infow("stub target system listening", "addr", l.Addr().String())
	err := s.srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	zap.S().Named("server").Info("stopping stub target system")
	return s.srv.Shutdown(ctx)
}
