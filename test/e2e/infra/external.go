package infra

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
)

// ExternalTarget is a Target System managed outside the suite (docker compose, CI service).
type ExternalTarget struct {
	baseURL      string
	client       *traefik.Client
	readyTimeout time.Duration
}

func NewExternalTarget(baseURL string, client *traefik.Client, readyTimeout time.Duration) *ExternalTarget {
	return &ExternalTarget{baseURL: baseURL, client: client, readyTimeout: readyTimeout}
}

func (e *ExternalTarget) Start(ctx context.Context) error {
	zap.S().Named("infra").Infow("waiting for external target", "url", e.baseURL, "timeout", e.readyTimeout)
	return e.client.WaitReady(ctx, e.readyTimeout)
}

func (e *ExternalTarget) Stop(context.Context) error { return nil }

func (e *ExternalTarget) BaseURL() string { return e.baseURL }

func (e *ExternalTarget) Name() string { return "external" }
