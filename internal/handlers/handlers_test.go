package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/handlers"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/server"
)

var _ = Describe("Stub handlers", func() {
	var engine *gin.Engine

	setup := func(faults handlers.Faults) {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		server.RegisterHandlers(engine, handlers.New(catalog.Default(), faults))
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		return w
	}

	Context("API", func() {
		BeforeEach(func() {
			setup(handlers.Faults{})
		})

		// Given the default catalog
		// When the middlewares are listed
		// Then the four plugin middlewares should be returned as plugins
		It("should list the catalog middlewares", func() {
			// Act
			w := get("/api/http/middlewares")

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			var mws []v1.Middleware
			Expect(json.Unmarshal(w.Body.Bytes(), &mws)).To(Succeed())
			Expect(mws).To(HaveLen(4))
			Expect(mws[0].Name).To(Equal("waf@docker"))
			Expect(mws[0].Type).To(Equal("plugin"))
			Expect(mws[0].Plugin).To(HaveKey("modsecurity"))
			Expect(mws[0].UsedBy).To(ConsistOf("modsecurity-router@docker"))
		})

		It("should attach plugin middlewares to their routers", func() {
			w := get("/api/http/routers/geoblock-router@docker")

			Expect(w.Code).To(Equal(http.StatusOK))
			var r v1.Router
			Expect(json.Unmarshal(w.Body.Bytes(), &r)).To(Succeed())
			Expect(r.Middlewares).To(Equal([]string{"geoblock@docker"}))
			Expect(r.Service).To(Equal("geoblock-service"))
		})

		// Given five routers
		// When they are read two per page
		// Then X-Next-Page should point to the next page and to 1 on the last one
		It("should paginate like Traefik", func() {
			// Act
			first := get("/api/http/routers?page=1&per_page=2")
			last := get("/api/http/routers?page=3&per_page=2")
			beyond := get("/api/http/routers?page=4&per_page=2")

			// Assert
			Expect(first.Header().Get("X-Next-Page")).To(Equal("2"))
			Expect(last.Header().Get("X-Next-Page")).To(Equal("1"))
			var routers []v1.Router
			Expect(json.Unmarshal(last.Body.Bytes(), &routers)).To(Succeed())
			Expect(routers).To(HaveLen(1))
			Expect(beyond.Code).To(Equal(http.StatusBadRequest))
		})

		It("should filter listings by search", func() {
			w := get("/api/http/services?search=plain")

			var services []v1.Service
			Expect(json.Unmarshal(w.Body.Bytes(), &services)).To(Succeed())
			Expect(services).To(HaveLen(1))
			Expect(services[0].Name).To(Equal("plain-service@docker"))
		})

		It("should count entities in the overview", func() {
			w := get("/api/overview")

			var o v1.Overview
			Expect(json.Unmarshal(w.Body.Bytes(), &o)).To(Succeed())
			Expect(o.HTTP.Routers.Total).To(Equal(5))
			Expect(o.HTTP.Middlewares.Total).To(Equal(4))
			Expect(o.HTTP.Middlewares.Errors).To(BeZero())
		})

		It("should return 404 for unknown entities", func() {
			Expect(get("/api/http/middlewares/nope@docker").Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("Dashboard", func() {
		It("should serve the dashboard entry page and its scripts", func() {
			setup(handlers.Faults{})

			index := get("/dashboard/")
			Expect(index.Code).To(Equal(http.StatusOK))
			Expect(index.Body.String()).To(ContainSubstring(`<script src="app.js"></script>`))
			Expect(index.Body.String()).NotTo(ContainSubstring(catalog.PlaceholderText))

			Expect(get("/dashboard/app.js").Code).To(Equal(http.StatusOK))
			Expect(get("/dashboard/flags.js").Body.String()).To(ContainSubstring(`"hubButtonError":false`))
		})

		It("should redirect the root to the dashboard", func() {
			w := get("/")
			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal("/dashboard/"))
		})
	})

	Context("Faults", func() {
		It("should serve the embedded-version page", func() {
			setup(handlers.Faults{Placeholder: true})

			Expect(get("/dashboard/").Body.String()).To(ContainSubstring(catalog.PlaceholderText))
		})

		It("should report unknown plugin types", func() {
			setup(handlers.Faults{UnknownPlugin: true})

			var mws []v1.Middleware
			Expect(json.Unmarshal(get("/api/http/middlewares").Body.Bytes(), &mws)).To(Succeed())
			Expect(mws[1].Error).To(ConsistOf("unknown plugin type: geoblock"))
			Expect(mws[1].Status).To(Equal(v1.StatusDisabled))

			var o v1.Overview
			Expect(json.Unmarshal(get("/api/overview").Body.Bytes(), &o)).To(Succeed())
			Expect(o.HTTP.Middlewares.Errors).To(Equal(4))
		})

		It("should drop entities", func() {
			setup(handlers.Faults{Drop: []string{"crowdsec@docker", "plain-router@docker"}})

			var mws []v1.Middleware
			Expect(json.Unmarshal(get("/api/http/middlewares").Body.Bytes(), &mws)).To(Succeed())
			Expect(mws).To(HaveLen(3))
			Expect(get("/api/http/routers/plain-router@docker").Code).To(Equal(http.StatusNotFound))
		})

		It("should fail the HTTP API", func() {
			setup(handlers.Faults{APIError: true})

			w := get("/api/http/routers")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(Equal("Internal Server Error"))
			Expect(get("/api/overview").Code).To(Equal(http.StatusOK))
		})

		It("should enable the hub button error", func() {
			setup(handlers.Faults{HubButtonError: true})

			Expect(get("/dashboard/flags.js").Body.String()).To(ContainSubstring(`"hubButtonError":true`))
		})
	})
})
