package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jzelinskie/cobrautil/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/logging"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/services"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
	"github.com/david-garcia-garcia/traefik-with-plugins/test/e2e/infra"
)

var (
	cfg           *config.Configuration
	cat           *catalog.Catalog
	targetManager infra.TargetManager
	runID         string
	artifactsDir  string
)

// newClient returns an introspection API client for the started Target System.
func newClient() *traefik.Client {
	return traefik.NewClient(targetManager.BaseURL(),
		traefik.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
}

func newTargetManager(c *config.Configuration, cat *catalog.Catalog) infra.TargetManager {
	if c.Target == config.TargetStub {
		return infra.NewStubTarget(c.Stub, cat, "127.0.0.1:0")
	}
	client := traefik.NewClient(c.BaseURL, traefik.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}))
	return infra.NewExternalTarget(c.BaseURL, client, c.ReadyTimeout)
}

func run(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	undo := zap.ReplaceGlobals(logger)
	defer undo()
	defer func() { _ = logger.Sync() }()

	cat = catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			return err
		}
	}

	runID = services.NewRunID()
	artifactsDir = filepath.Join(cfg.ArtifactsFolder, runID)
	targetManager = newTargetManager(cfg, cat)

	zap.S().Named("e2e").Infow("starting run", "run_id", runID, "target", targetManager.Name(), "config", cfg.DebugMap())

	suiteConfig, reporterConfig := GinkgoConfiguration()
	suiteConfig.LabelFilter = cfg.LabelFilter
	suiteConfig.Timeout = 2 * time.Hour
	if cfg.Report.JUnit != "" {
		reporterConfig.JUnitReport = cfg.Report.JUnit
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "Traefik Dashboard E2E Suite", suiteConfig, reporterConfig) {
		os.Exit(1)
	}
	return nil
}

func main() {
	cmd := &cobra.Command{
		Use:   "dashboard-e2e",
		Short: "Verify a Traefik dashboard with embedded plugins through a real browser",
		PreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(config.EnvPrefix),
		),
		RunE:         run,
		SilenceUsage: true,
	}
	config.RegisterFlags(cmd.Flags(), config.NewConfigurationWithDefaults())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
