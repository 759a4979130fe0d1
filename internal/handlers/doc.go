// Package handlers implements the stub Target System: a Traefik-like introspection
// API and a small dashboard, both generated from the entity catalog.
//
// It exists so the e2e suite and its fault scenarios can run without a real
// Traefik build. The content is deterministic: one middleware, router and service
// per catalog entry.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - API listings with Traefik pagination                         │
//	│  - Dashboard page, flags.js and embedded static assets          │
//	│  - Fault injection                                              │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│         Catalog ──► api/v1 builders (New*FromModel)             │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Endpoints
//
//	┌──────────────────────────────────┬────────────────────────────────────────┐
//	│  Route                           │  Handler                               │
//	├──────────────────────────────────┼────────────────────────────────────────┤
//	│  GET /dashboard/                 │  GetDashboard (index.html/placeholder) │
//	│  GET /dashboard/flags.js         │  GetFlags (window.DASHBOARD_FLAGS)     │
//	│  GET /api/overview               │  GetOverview                           │
//	│  GET /api/version                │  GetVersion                            │
//	│  GET /api/http/routers[/:name]   │  ListRouters / GetRouter               │
//	│  GET /api/http/middlewares[/:n]  │  ListMiddlewares / GetMiddleware       │
//	│  GET /api/http/services[/:name]  │  ListServices / GetService             │
//	└──────────────────────────────────┴────────────────────────────────────────┘
//
// Routes are registered by server.RegisterHandlers.
//
// # Pagination
//
// Listings accept page, per_page (default 100) and search. X-Next-Page holds the
// next page number, or 1 on the last page. A page starting beyond the last entity
// is a 400, as in Traefik.
//
// # Faults
//
//	┌──────────────────┬──────────────────────────────────────────────────────────┐
//	│  Fault           │  Effect                                                  │
//	├──────────────────┼──────────────────────────────────────────────────────────┤
//	│  Placeholder     │  /dashboard/ serves "Traefik Dashboard - Embedded ..."   │
//	│  UnknownPlugin   │  plugin middlewares disabled, "unknown plugin type: x"   │
//	│  HubButtonError  │  app.js registers hub-button-app twice (uncaught error)  │
//	│  APIError        │  /api/http/* answer 500 "Internal Server Error"          │
//	│  Drop            │  listed identifiers are omitted everywhere               │
//	└──────────────────┴──────────────────────────────────────────────────────────┘
//
// FaultsFromConfig maps the stub section of the configuration to Faults.
//
// # Dashboard
//
// static/app.js is a hash router: #/ renders overview cards, #/http/<kind> a
// table of entities with clickable rows, #/http/<kind>/<name> the details.
// Entity errors are rendered verbatim, so faults reach the page text.
package handlers
