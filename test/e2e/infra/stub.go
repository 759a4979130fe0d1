package infra

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/handlers"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/server"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
)

// StubTarget serves the fake dashboard and API in-process on a loopback port.
type StubTarget struct {
	cfg     config.Stub
	catalog *catalog.Catalog
	addr    string

	srv     *server.Server
	baseURL string
	cancel  context.CancelFunc
	done    chan error
}

// NewStubTarget listens on addr when started; ":0" style addresses pick a free port.
func NewStubTarget(cfg config.Stub, cat *catalog.Catalog, addr string) *StubTarget {
	return &StubTarget{cfg: cfg, catalog: cat, addr: addr}
}

func (s *StubTarget) Start(ctx context.Context) error {
	faults := handlers.FaultsFromConfig(s.cfg)
	srv, err := server.NewServer(s.cfg, func(engine *gin.Engine) {
		server.RegisterHandlers(engine, handlers.New(s.catalog, faults))
	})
	if err != nil {
		return err
	}

	// Resolve the actual port before serving.
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.srv = srv
	s.baseURL = "http://" + listener.Addr().String()

	serveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() {
		zap.S().Named("infra").Infow("stub target started", "url", s.baseURL, "faults", faults)
		s.done <- srv.Serve(serveCtx, listener)
	}()

	return traefik.NewClient(s.baseURL).WaitReady(ctx, 5*time.Second)
}

func (s *StubTarget) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.cancel()
	select {
	case err := <-s.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StubTarget) BaseURL() string { return s.baseURL }

func (s *StubTarget) Name() string { return "stub" }
