package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/util"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/scheduler"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
)

// EntityLister reads one kind of entity from the introspection API.
type EntityLister func(ctx context.Context) ([]v1.Entity, error)

// PreflightReport describes the Target System as seen through its API, before the
// browser is involved.
type PreflightReport struct {
	Counts  map[models.EntityKind]int
	Missing map[models.EntityKind][]models.EntityID
	// Errored maps entity names to the errors Traefik reports for them.
	Errored map[string][]string
}

// OK is true when every expected entity exists and none reports an error.
func (r PreflightReport) OK() bool {
	for _, ids := range r.Missing {
		if len(ids) > 0 {
			return false
		}
	}
	return len(r.Errored) == 0
}

func (r PreflightReport) Err() error {
	var errs []error
	for _, kind := range models.EntityKinds {
		if ids := r.Missing[kind]; len(ids) > 0 {
			errs = append(errs, fmt.Errorf("api is missing %s: %v", kind, ids))
		}
	}
	names := make([]string, 0, len(r.Errored))
	for name := range r.Errored {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s reports errors: %v", name, r.Errored[name]))
	}
	return errors.Join(errs...)
}

// Preflight fetches the three entity kinds concurrently and compares them with the catalog.
type Preflight struct {
	sched   *scheduler.Scheduler
	catalog *catalog.Catalog
	listers map[models.EntityKind]EntityLister
}

func NewPreflight(sched *scheduler.Scheduler, cat *catalog.Catalog, client *traefik.Client) *Preflight {
	return NewPreflightWithListers(sched, cat, map[models.EntityKind]EntityLister{
		models.EntityKindRouters: func(ctx context.Context) ([]v1.Entity, error) {
			r, err := client.Routers(ctx)
			return v1.AsEntities(r), err
		},
		models.EntityKindMiddlewares: func(ctx context.Context) ([]v1.Entity, error) {
			m, err := client.Middlewares(ctx)
			return v1.AsEntities(m), err
		},
		models.EntityKindServices: func(ctx context.Context) ([]v1.Entity, error) {
			s, err := client.Services(ctx)
			return v1.AsEntities(s), err
		},
	})
}

func NewPreflightWithListers(sched *scheduler.Scheduler, cat *catalog.Catalog, listers map[models.EntityKind]EntityLister) *Preflight {
	return &Preflight{sched: sched, catalog: cat, listers: listers}
}

func (p *Preflight) Run(ctx context.Context) (*PreflightReport, error) {
	log := zap.S().Named("preflight")

	futures := make(map[models.EntityKind]*scheduler.Future[scheduler.Result[any]], len(models.EntityKinds))
	for _, kind := range models.EntityKinds {
		lister, ok := p.listers[kind]
		if !ok {
			continue
		}
		futures[kind] = p.sched.AddWork("list-"+string(kind), func(ctx context.Context) (any, error) {
			return lister(ctx)
		})
	}

	report := &PreflightReport{
		Counts:  make(map[models.EntityKind]int),
		Missing: make(map[models.EntityKind][]models.EntityID),
		Errored: make(map[string][]string),
	}

	for _, kind := range models.EntityKinds {
		future, ok := futures[kind]
		if !ok {
			continue
		}

		entities, err := scheduler.Await[[]v1.Entity](ctx, future)
		if err != nil {
			for _, f := range futures {
				f.Stop()
			}
			return nil, fmt.Errorf("failed to list %s: %w", kind, err)
		}

		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, e.EntityName())
			if errs := e.EntityErrors(); len(errs) > 0 {
				report.Errored[e.EntityName()] = errs
			}
		}
		report.Counts[kind] = len(entities)

		for _, id := range p.catalog.Expected(kind).IDs {
			if !util.Contains(names, string(id)) {
				report.Missing[kind] = append(report.Missing[kind], id)
			}
		}
		log.Infow("entities listed", "kind", kind, "count", len(entities), "missing", len(report.Missing[kind]))
	}

	return report, nil
}
