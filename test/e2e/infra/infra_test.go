package infra_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
	"github.com/david-garcia-garcia/traefik-with-plugins/test/e2e/infra"
)

var _ = Describe("Targets", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("StubTarget", func() {
		It("should serve the catalog on a free loopback port", func() {
			// Arrange
			cfg := config.NewConfigurationWithDefaults().Stub
			cfg.Drop = []string{"plain-router@docker"}
			target := infra.NewStubTarget(cfg, catalog.Default(), "127.0.0.1:0")

			// Act
			err := target.Start(ctx)
			DeferCleanup(func() { Expect(target.Stop(context.Background())).To(Succeed()) })

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(target.BaseURL()).To(HavePrefix("http://127.0.0.1:"))

			routers, err := traefik.NewClient(target.BaseURL()).Routers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(routers).To(HaveLen(4))
		})

		It("should stop cleanly when never started", func() {
			target := infra.NewStubTarget(config.Stub{}, catalog.Default(), "127.0.0.1:0")

			Expect(target.Stop(ctx)).To(Succeed())
		})
	})

	Context("ExternalTarget", func() {
		It("should report a NavigationError when nothing answers", func() {
			target := infra.NewExternalTarget("http://127.0.0.1:1", traefik.NewClient("http://127.0.0.1:1"), 300*time.Millisecond)

			err := target.Start(ctx)

			Expect(srvErrors.IsNavigationError(err)).To(BeTrue())
			Expect(target.Name()).To(Equal("external"))
		})
	})
})
