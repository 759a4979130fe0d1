package handlers

import (
	"slices"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/config"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

// Faults switches on the defects the stub can reproduce.
type Faults struct {
	// Placeholder serves the fallback page shown when dashboard assets were not embedded.
	Placeholder bool
	// UnknownPlugin marks the plugin middlewares as failed with an unknown plugin type.
	UnknownPlugin bool
	// HubButtonError makes the dashboard raise the hub button registration error.
	HubButtonError bool
	// APIError answers every /api/http request with 500.
	APIError bool
	// Drop removes entities from the API listings.
	Drop []string
}

func FaultsFromConfig(cfg config.Stub) Faults {
	return Faults{
		Placeholder:    cfg.Placeholder,
		UnknownPlugin:  cfg.UnknownPlugin,
		HubButtonError: cfg.HubButtonError,
		APIError:       cfg.APIError,
		Drop:           append([]string(nil), cfg.Drop...),
	}
}

type Handler struct {
	routers     []v1.Router
	middlewares []v1.Middleware
	services    []v1.Service
	placeholder string
	faults      Faults
}

// New builds the stub API content from the catalog entities.
func New(cat *catalog.Catalog, faults Faults) *Handler {
	h := &Handler{
		placeholder: cat.Placeholder(),
		faults:      faults,
	}

	mws := cat.Expected(models.EntityKindMiddlewares).IDs
	for _, id := range mws {
		if slices.Contains(faults.Drop, string(id)) {
			continue
		}
		m := v1.NewMiddlewareFromModel(id)
		if faults.UnknownPlugin && m.Type == "plugin" {
			m.Status = v1.StatusDisabled
			m.Error = []string{"unknown plugin type: " + v1.PluginFor(id)}
		}
		h.middlewares = append(h.middlewares, m)
	}

	for _, id := range cat.Expected(models.EntityKindRouters).IDs {
		if slices.Contains(faults.Drop, string(id)) {
			continue
		}
		h.routers = append(h.routers, v1.NewRouterFromModel(id, mws))
	}

	for _, id := range cat.Expected(models.EntityKindServices).IDs {
		if slices.Contains(faults.Drop, string(id)) {
			continue
		}
		h.services = append(h.services, v1.NewServiceFromModel(id))
	}

	for i, m := range h.middlewares {
		for _, r := range h.routers {
			if slices.Contains(r.Middlewares, m.Name) {
				h.middlewares[i].UsedBy = append(h.middlewares[i].UsedBy, r.Name)
			}
		}
	}

	return h
}
