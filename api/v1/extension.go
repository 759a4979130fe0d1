package v1

import (
	"strings"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

// Entity is the part of routers, middlewares and services the preflight inspects.
type Entity interface {
	EntityName() string
	EntityErrors() []string
}

func (r Router) EntityName() string         { return r.Name }
func (r Router) EntityErrors() []string     { return r.Error }
func (m Middleware) EntityName() string     { return m.Name }
func (m Middleware) EntityErrors() []string { return m.Error }
func (s Service) EntityName() string        { return s.Name }
func (s Service) EntityErrors() []string    { return s.Error }

// pluginByMiddleware maps the catalog middleware names to the embedded plugin they run.
var pluginByMiddleware = map[string]string{
	"waf":      "modsecurity",
	"geoblock": "geoblock",
	"crowdsec": "crowdsec",
	"realip":   "realip",
}

func splitID(id models.EntityID) (name, provider string) {
	s := string(id)
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return s, "docker"
	}
	return s[:i], s[i+1:]
}

// PluginFor returns the embedded plugin a middleware is configured with, or "" for a
// built-in middleware.
func PluginFor(id models.EntityID) string {
	name, _ := splitID(id)
	return pluginByMiddleware[name]
}

// NewMiddlewareFromModel builds the API representation of a catalog middleware.
func NewMiddlewareFromModel(id models.EntityID) Middleware {
	_, provider := splitID(id)
	m := Middleware{
		Name:     string(id),
		Provider: provider,
		Status:   StatusEnabled,
		Type:     "headers",
	}
	if plugin := PluginFor(id); plugin != "" {
		m.Type = "plugin"
		m.Plugin = map[string]any{plugin: map[string]any{"enabled": true}}
	}
	return m
}

// NewRouterFromModel builds the API representation of a catalog router. Routers named
// after a plugin ("geoblock-router") use the matching middleware and service.
func NewRouterFromModel(id models.EntityID, middlewares []models.EntityID) Router {
	name, provider := splitID(id)
	prefix := strings.TrimSuffix(name, "-router")
	r := Router{
		Name:        string(id),
		Provider:    provider,
		Status:      StatusEnabled,
		Rule:        "PathPrefix(`/" + prefix + "`)",
		Service:     prefix + "-service",
		EntryPoints: []string{"web"},
		Using:       []string{"web"},
	}
	for _, mw := range middlewares {
		mwName, _ := splitID(mw)
		if mwName == prefix || pluginByMiddleware[mwName] == prefix {
			r.Middlewares = append(r.Middlewares, string(mw))
		}
	}
	return r
}

func NewServiceFromModel(id models.EntityID) Service {
	name, provider := splitID(id)
	prefix := strings.TrimSuffix(name, "-service")
	return Service{
		Name:     string(id),
		Provider: provider,
		Status:   StatusEnabled,
		Type:     "loadbalancer",
		UsedBy:   []string{prefix + "-router@" + provider},
		LoadBalancer: &LoadBalancer{
			Servers:        []Server{{URL: "http://" + prefix + ":80"}},
			PassHostHeader: true,
		},
	}
}

// NewOverview counts entities and their errors per section.
func NewOverview(routers []Router, services []Service, middlewares []Middleware, providers ...string) Overview {
	count := func(entities []Entity) SectionCount {
		c := SectionCount{Total: len(entities)}
		for _, e := range entities {
			if len(e.EntityErrors()) > 0 {
				c.Errors++
			}
		}
		return c
	}
	return Overview{
		HTTP: HTTPOverview{
			Routers:     count(AsEntities(routers)),
			Services:    count(AsEntities(services)),
			Middlewares: count(AsEntities(middlewares)),
		},
		Providers: providers,
	}
}

// AsEntities converts a slice of API objects to entities.
func AsEntities[T Entity](in []T) []Entity {
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, e)
	}
	return out
}
