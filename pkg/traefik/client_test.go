package traefik_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/handlers"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/server"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
	"github.com/david-garcia-garcia/traefik-with-plugins/pkg/traefik"
)

func newStub(faults handlers.Faults) *httptest.Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	server.RegisterHandlers(engine, handlers.New(catalog.Default(), faults))
	return httptest.NewServer(engine)
}

var _ = Describe("Client", func() {
	var (
		ctx  context.Context
		stub *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if stub != nil {
			stub.Close()
		}
	})

	Context("listing", func() {
		BeforeEach(func() {
			stub = newStub(handlers.Faults{})
		})

		// Given five routers served two per page
		// When the routers are listed
		// Then every page should be followed
		It("should follow pagination", func() {
			// Arrange
			client := traefik.NewClient(stub.URL, traefik.WithPerPage(2))

			// Act
			routers, err := client.Routers(ctx)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(routers).To(HaveLen(5))
			Expect(routers[4].Name).To(Equal("plain-router@docker"))
		})

		It("should read middlewares, services and the overview", func() {
			client := traefik.NewClient(stub.URL + "/")

			mws, err := client.Middlewares(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mws).To(HaveLen(4))

			services, err := client.Services(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(services).To(HaveLen(5))

			o, err := client.Overview(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(o.HTTP.Services.Total).To(Equal(5))

			v, err := client.Version(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Version).NotTo(BeEmpty())
		})
	})

	Context("errors", func() {
		It("should report non-200 answers", func() {
			stub = newStub(handlers.Faults{APIError: true})

			_, err := traefik.NewClient(stub.URL).Middlewares(ctx)

			Expect(err).To(MatchError(ContainSubstring("500")))
			Expect(srvErrors.IsNavigationError(err)).To(BeFalse())
		})

		It("should report transport failures as navigation errors", func() {
			stub = newStub(handlers.Faults{})
			url := stub.URL
			stub.Close()
			stub = nil

			_, err := traefik.NewClient(url).Overview(ctx)

			Expect(srvErrors.IsNavigationError(err)).To(BeTrue())
		})
	})

	Context("WaitReady", func() {
		It("should return once the overview answers", func() {
			stub = newStub(handlers.Faults{})

			Expect(traefik.NewClient(stub.URL).WaitReady(ctx, 5*time.Second)).To(Succeed())
		})

		// Given a Target System that answers 503 twice before becoming ready
		// When readiness is awaited
		// Then the client should retry until it answers
		It("should retry until the target answers", func() {
			// Arrange
			calls := 0
			ready := newStub(handlers.Faults{})
			defer ready.Close()
			stub = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls < 3 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				ready.Config.Handler.ServeHTTP(w, r)
			}))

			// Act
			err := traefik.NewClient(stub.URL).WaitReady(ctx, 10*time.Second)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(BeNumerically(">=", 3))
		})

		It("should give up with a navigation error", func() {
			stub = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))

			err := traefik.NewClient(stub.URL).WaitReady(ctx, 500*time.Millisecond)

			Expect(srvErrors.IsNavigationError(err)).To(BeTrue())
		})
	})
})
