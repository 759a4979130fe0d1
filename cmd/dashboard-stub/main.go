package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/handlers"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/logging"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/server"
)

func main() {
	defaults := config.NewConfigurationWithDefaults()
	stub := defaults.Stub
	var (
		catalogFile string
		logLevel    string
		logFormat   string
	)

	cmd := &cobra.Command{
		Use:   "dashboard-stub",
		Short: "Serve a fake Traefik dashboard and API built from the entity catalog",
		PreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE("DASHBOARD_STUB"),
		),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel, logFormat)
			if err != nil {
				return err
			}
			undo := zap.ReplaceGlobals(logger)
			defer undo()
			defer func() { _ = logger.Sync() }()

			cat := catalog.Default()
			if catalogFile != "" {
				if cat, err = catalog.Load(catalogFile); err != nil {
					return err
				}
			}

			faults := handlers.FaultsFromConfig(stub)
			zap.S().Named("dashboard_stub").Infow("starting", "port", stub.HTTPPort, "faults", faults)

			srv, err := server.NewServer(stub, func(engine *gin.Engine) {
				server.RegisterHandlers(engine, handlers.New(cat, faults))
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&stub.ServerMode, "server-mode", stub.ServerMode, "Server mode: 'dev' or 'prod'")
	flags.IntVar(&stub.HTTPPort, "http-port", stub.HTTPPort, "Listen port")
	flags.BoolVar(&stub.Placeholder, "placeholder", false, "Serve the embedded-version fallback page instead of the dashboard")
	flags.BoolVar(&stub.UnknownPlugin, "unknown-plugin", false, "Report the plugin middlewares as unknown plugin types")
	flags.BoolVar(&stub.HubButtonError, "hub-button-error", false, "Raise the hub button registration error in the dashboard")
	flags.BoolVar(&stub.APIError, "api-error", false, "Answer every /api/http request with 500")
	flags.StringSliceVar(&stub.Drop, "drop", nil, "Entities to omit from the API")
	flags.StringVar(&catalogFile, "catalog-file", "", "YAML catalog the stub content is built from")
	flags.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level")
	flags.StringVar(&logFormat, "log-format", defaults.LogFormat, "Log format: console or json")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
