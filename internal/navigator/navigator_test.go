package navigator_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/navigator"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
	"github.com/david-garcia-garcia/traefik-with-plugins/test"
)

const baseURL = "http://localhost:8080"

var _ = Describe("Navigator", func() {
	var (
		ctx    context.Context
		page   *test.FakePage
		slept  []time.Duration
		sleepy navigator.Sleeper
	)

	BeforeEach(func() {
		ctx = context.Background()
		page = test.NewFakePage(baseURL)
		slept = nil
		sleepy = func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		}
	})

	Context("URL", func() {
		DescribeTable("should build absolute dashboard URLs",
			func(base string, target models.NavigationTarget, opts []navigator.Option, expected string) {
				n := navigator.New(page, base, opts...)
				Expect(n.URL(target)).To(Equal(expected))
			},
			Entry("root", baseURL, models.DashboardRoot(), nil, "http://localhost:8080/dashboard/"),
			Entry("trailing slash on base", baseURL+"/", models.DashboardRoot(), nil, "http://localhost:8080/dashboard/"),
			Entry("hash route", baseURL, models.DashboardView(models.RouteMiddlewares), nil, "http://localhost:8080/dashboard/#/http/middlewares"),
			Entry("route without hash", baseURL, models.DashboardView("/http/routers"), nil, "http://localhost:8080/dashboard/#/http/routers"),
			Entry("custom dashboard path", baseURL, models.DashboardView(models.RouteServices),
				[]navigator.Option{navigator.WithDashboardPath("/traefik/dashboard/")}, "http://localhost:8080/traefik/dashboard/#/http/services"),
		)
	})

	Context("Goto", func() {
		// Given a reachable dashboard
		// When we navigate to the middlewares view
		// Then the page should load the view and settle for the configured delay
		It("should load the target and settle", func() {
			// Arrange
			n := navigator.New(page, baseURL, navigator.WithSleeper(sleepy), navigator.WithSettleDelay(3*time.Second))

			// Act
			err := n.Goto(ctx, models.DashboardView(models.RouteMiddlewares))

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Visits()).To(Equal([]string{"http://localhost:8080/dashboard/#/http/middlewares"}))
			Expect(slept).To(Equal([]time.Duration{3 * time.Second}))
		})

		// Given an unreachable Target System
		// When we navigate to the root view
		// Then a NavigationError carrying the URL should be returned and no settle should happen
		It("should wrap load failures in a NavigationError", func() {
			// Arrange
			page.Fail("http://localhost:8080/dashboard/", errors.New("net::ERR_CONNECTION_REFUSED"))
			n := navigator.New(page, baseURL, navigator.WithSleeper(sleepy))

			// Act
			err := n.Goto(ctx, models.DashboardRoot())

			// Assert
			Expect(srvErrors.IsNavigationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("ERR_CONNECTION_REFUSED"))
			Expect(slept).To(BeEmpty())
		})

		It("should call the visit hook with the loaded URL", func() {
			var visited []string
			n := navigator.New(page, baseURL,
				navigator.WithSleeper(sleepy),
				navigator.WithVisitHook(func(_ context.Context, url string) { visited = append(visited, url) }),
			)

			Expect(n.Goto(ctx, models.DashboardView(models.RouteRouters))).To(Succeed())
			Expect(visited).To(Equal([]string{"http://localhost:8080/dashboard/#/http/routers"}))
		})

		It("should fail on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			n := navigator.New(page, baseURL, navigator.WithSleeper(sleepy))

			err := n.Goto(cctx, models.DashboardRoot())

			Expect(srvErrors.IsNavigationError(err)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Context("Sleep", func() {
		It("should return early when the context is done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			start := time.Now()
			err := navigator.Sleep(cctx, time.Minute)

			Expect(err).To(MatchError(context.Canceled))
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})

		It("should wait for the delay", func() {
			Expect(navigator.Sleep(ctx, 10*time.Millisecond)).To(Succeed())
		})
	})
})
