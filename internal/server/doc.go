// Package server provides the HTTP server of the stub Target System.
//
// The stub reproduces the parts of a Traefik instance the harness talks to: the
// dashboard under /dashboard/ and the read-only introspection API under /api. It is
// used to self-test the harness (target "stub") and by cmd/dashboard-stub.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Logger (ginzap.Ginzap, "http" logger)                  │  │
//	│  │  Recovery (ginzap.RecoveryWithZap)                      │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /dashboard/            index.html or embedded-version page   │
//	│  /dashboard/flags.js    UI fault switches                     │
//	│  /dashboard/app.js      hash routed fixture dashboard         │
//	│  /api/overview          section counts                        │
//	│  /api/version           version                               │
//	│  /api/http/{routers,middlewares,services}[/:name]             │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
// Development Mode (ServerMode = "dev"): Gin runs in debug mode.
// Production Mode (ServerMode = "prod"): Gin runs in release mode.
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg.Stub, func(engine *gin.Engine) {
//	    server.RegisterHandlers(engine, handlers.New(catalog.Default(), handlers.Faults{}))
//	})
//
//	// Blocks until error or shutdown; Serve accepts an existing listener.
//	err = srv.Start(ctx)
//
//	srv.Stop(ctx)
//
// Stop performs a graceful shutdown. Serve also shuts down when its context is done.
package server
