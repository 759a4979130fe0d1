package main

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/locator"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/services"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/scheduler"
)

const hubButtonError = `Failed to execute 'define' on 'CustomElementRegistry': the name "hub-button-app" has already been used with this registry`

// renderedText polls the page text for Eventually.
func renderedText() string {
	snap, err := session.Snapshot()
	if err != nil {
		return ""
	}
	return snap.Text
}

var _ = Describe("Traefik dashboard", Ordered, ContinueOnFailure, func() {
	BeforeEach(startScenario)
	AfterEach(finishScenario)

	Describe("Dashboard Loading", Label("dashboard"), func() {
		It("renders the dashboard instead of the embedded placeholder", func() {
			must(session.Visit(models.DashboardRoot()))
			must(session.ExpectAbsent(cat.Placeholder()))
			must(session.ExpectChildren())
		})

		It("serves every entity view by direct URL", func() {
			for _, kind := range models.EntityKinds {
				must(session.Visit(kind.View()))
			}
		})
	})

	Describe("Middlewares", Label("middlewares"), func() {
		It("lists every plugin middleware after navigating from the root", func() {
			must(session.Visit(models.DashboardRoot()))

			res, err := session.Open(locator.Query{
				Label:    "Middleware",
				Fallback: models.DashboardView(models.RouteMiddlewares),
				Policy:   locator.PolicyFallback,
			})
			must(err)
			if res.FellBack {
				AddReportEntry("navigation", "middlewares control not found, loaded "+models.RouteMiddlewares)
			}

			must(session.ExpectEntities(models.EntityKindMiddlewares))
		})

		It("opens the details of waf@docker", func() {
			must(session.Visit(models.EntityKindMiddlewares.View()))
			must(session.ExpectEntities(models.EntityKindMiddlewares))

			_, err := session.Open(locator.Query{
				Label:      "waf@docker",
				Policy:     locator.PolicyStrict,
				Strategies: locator.EntityStrategies(),
			})
			must(err)

			Eventually(renderedText, cfg.DefaultCommandTimeout, cfg.PollInterval).Should(ContainSubstring("waf@docker"))
			must(session.ExpectAbsent("unknown plugin type"))
		})
	})

	Describe("Routers", Label("routers"), func() {
		It("lists every router", func() {
			must(session.Visit(models.EntityKindRouters.View()))
			must(session.ExpectEntities(models.EntityKindRouters))
		})
	})

	Describe("Services", Label("services"), func() {
		It("lists every service", func() {
			must(session.Visit(models.EntityKindServices.View()))
			must(session.ExpectEntities(models.EntityKindServices))
		})
	})

	Describe("Error Detection", Label("errors"), func() {
		It("renders no HTTP, plugin or template error on any view", func() {
			must(session.Visit(models.DashboardRoot()))
			for _, kind := range models.EntityKinds {
				must(session.Visit(kind.View()))
			}
		})

		// Advisory: API failures are reported, the rendered views decide the verdict.
		It("records failed introspection API calls", func() {
			must(session.Visit(models.DashboardRoot()))
			for _, kind := range models.EntityKinds {
				must(session.Visit(kind.View()))
			}

			for _, call := range session.FailedCalls() {
				AddReportEntry(entryFailedCall, fmt.Sprintf("%s %s -> %d %s", call.Method, call.URL, call.Status, call.Reason))
			}
			GinkgoWriter.Printf("observed %d API calls, %d failed\n", len(session.APICalls()), len(session.FailedCalls()))
		})
	})

	Describe("Introspection API", Label("api"), func() {
		It("returns every expected entity without errors", func() {
			sched := scheduler.NewScheduler(cfg.Workers, scheduler.WithJobTimeout(cfg.RequestTimeout*3))
			defer sched.Close()

			ctx, cancel := context.WithTimeout(session.Context(), cfg.DefaultCommandTimeout)
			defer cancel()

			report, err := services.NewPreflight(sched, cat, newClient()).Run(ctx)
			must(err)
			for _, kind := range models.EntityKinds {
				GinkgoWriter.Printf("%s: %d listed\n", kind, report.Counts[kind])
			}
			stats := sched.Stats()
			GinkgoWriter.Printf("api fetches: %d completed, %d failed\n", stats.Completed, stats.Failed)
			must(report.Err())
		})

		It("reports the Traefik version", func() {
			v, err := newClient().Version(session.Context())
			must(err)
			Expect(v.Version).NotTo(BeEmpty())
		})
	})

	Describe("Idempotence", Label("idempotence"), func() {
		It("renders the same entities when a view is visited twice in a row", func() {
			for _, kind := range models.EntityKinds {
				for i := 0; i < 2; i++ {
					must(session.Visit(kind.View()))
					must(session.ExpectEntities(kind))
				}
			}
		})

		It("renders the same entities after visiting the other views", func() {
			for i := 0; i < 2; i++ {
				for _, kind := range models.EntityKinds {
					must(session.Visit(kind.View()))
					must(session.ExpectEntities(kind))
				}
			}
		})
	})

	Describe("Harness self-check", Label("self-check"), func() {
		It("suppresses the hub button registration error", func() {
			must(session.Visit(models.DashboardRoot()))

			must(session.InjectError(hubButtonError))
			Expect(session.Suppressed()).NotTo(BeEmpty())
			must(session.Err())
		})

		It("propagates any other uncaught page error", func() {
			must(session.Visit(models.DashboardRoot()))

			err := session.InjectError("synthetic harness failure")

			Expect(srvErrors.IsUnhandledPageError(err)).To(BeTrue(), "expected an UnhandledPageError, got %v", err)
			Expect(session.TakeErr()).To(MatchError(err))
		})

		It("navigates directly when a navigation control is missing", func() {
			must(session.Visit(models.DashboardRoot()))

			res, err := session.Open(locator.Query{
				Label:    "no-such-control",
				Fallback: models.DashboardView(models.RouteRouters),
			})
			must(err)
			Expect(res.FellBack).To(BeTrue())
			must(session.ExpectEntities(models.EntityKindRouters))
		})

		It("fails strictly when an entity cannot be located", func() {
			must(session.Visit(models.EntityKindMiddlewares.View()))

			_, err := session.Open(locator.Query{
				Label:      "missing@docker",
				Policy:     locator.PolicyStrict,
				Strategies: locator.EntityStrategies(),
			})

			Expect(srvErrors.IsLocatorNotFoundError(err)).To(BeTrue(), "expected a LocatorNotFoundError, got %v", err)
		})
	})
})
