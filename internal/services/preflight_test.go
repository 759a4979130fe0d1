package services_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/services"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/scheduler"
)

func listerOf(set models.ExpectedSet, drop ...models.EntityID) services.EntityLister {
	return func(ctx context.Context) ([]v1.Entity, error) {
		var out []v1.Entity
	ids:
		for _, id := range set.IDs {
			for _, d := range drop {
				if d == id {
					continue ids
				}
			}
			switch set.Kind {
			case models.EntityKindMiddlewares:
				out = append(out, v1.NewMiddlewareFromModel(id))
			case models.EntityKindRouters:
				out = append(out, v1.NewRouterFromModel(id, nil))
			default:
				out = append(out, v1.NewServiceFromModel(id))
			}
		}
		return out, nil
	}
}

var _ = Describe("Preflight", func() {
	var (
		ctx   context.Context
		sched *scheduler.Scheduler
		cat   *catalog.Catalog
	)

	BeforeEach(func() {
		ctx = context.Background()
		sched = scheduler.NewScheduler(3)
		cat = catalog.Default()
	})

	AfterEach(func() {
		sched.Close()
	})

	listers := func(overrides map[models.EntityKind]services.EntityLister) map[models.EntityKind]services.EntityLister {
		out := make(map[models.EntityKind]services.EntityLister)
		for _, kind := range models.EntityKinds {
			out[kind] = listerOf(cat.Expected(kind))
		}
		for k, l := range overrides {
			out[k] = l
		}
		return out
	}

	It("should pass when the API returns every expected entity", func() {
		// Arrange
		p := services.NewPreflightWithListers(sched, cat, listers(nil))

		// Act
		report, err := p.Run(ctx)

		// Assert
		Expect(err).NotTo(HaveOccurred())
		Expect(report.OK()).To(BeTrue())
		Expect(report.Err()).NotTo(HaveOccurred())
		Expect(report.Counts[models.EntityKindMiddlewares]).To(Equal(4))
		Expect(report.Counts[models.EntityKindRouters]).To(Equal(5))
	})

	It("should report dropped entities per kind", func() {
		// Given a routers listing without plain-router@docker
		p := services.NewPreflightWithListers(sched, cat, listers(map[models.EntityKind]services.EntityLister{
			models.EntityKindRouters: listerOf(cat.Expected(models.EntityKindRouters), "plain-router@docker"),
		}))

		// When preflight runs
		report, err := p.Run(ctx)

		// Then the router is reported missing
		Expect(err).NotTo(HaveOccurred())
		Expect(report.OK()).To(BeFalse())
		Expect(report.Missing[models.EntityKindRouters]).To(ConsistOf(models.EntityID("plain-router@docker")))
		Expect(report.Err().Error()).To(ContainSubstring("api is missing routers"))
	})

	It("should report entities carrying errors", func() {
		errored := func(ctx context.Context) ([]v1.Entity, error) {
			m := v1.NewMiddlewareFromModel("waf@docker")
			m.Status = v1.StatusDisabled
			m.Error = []string{"unknown plugin type: modsecurity"}
			return []v1.Entity{m}, nil
		}
		p := services.NewPreflightWithListers(sched, cat, listers(map[models.EntityKind]services.EntityLister{
			models.EntityKindMiddlewares: errored,
		}))

		report, err := p.Run(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Errored).To(HaveKeyWithValue("waf@docker", []string{"unknown plugin type: modsecurity"}))
		Expect(report.Missing[models.EntityKindMiddlewares]).To(HaveLen(3))
	})

	It("should fail when a listing fails", func() {
		boom := errors.New("connection refused")
		p := services.NewPreflightWithListers(sched, cat, listers(map[models.EntityKind]services.EntityLister{
			models.EntityKindServices: func(ctx context.Context) ([]v1.Entity, error) { return nil, boom },
		}))

		_, err := p.Run(ctx)

		Expect(err).To(MatchError(ContainSubstring("failed to list services")))
		Expect(errors.Is(err, boom)).To(BeTrue())
	})
})
