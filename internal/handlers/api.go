package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
)

const (
	defaultPerPage = 100
	nextPageHeader = "X-Next-Page"
	stubVersion    = "3.6.1-embedded"
)

// GetOverview returns entity counts per section
// (GET /api/overview)
func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewOverview(h.routers, h.services, h.middlewares, "docker"))
}

// (GET /api/version)
func (h *Handler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, v1.Version{Version: stubVersion, Codename: "stub"})
}

// (GET /api/http/routers)
func (h *Handler) ListRouters(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writePage(c, h.routers)
}

// (GET /api/http/middlewares)
func (h *Handler) ListMiddlewares(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writePage(c, h.middlewares)
}

// (GET /api/http/services)
func (h *Handler) ListServices(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writePage(c, h.services)
}

// (GET /api/http/routers/:name)
func (h *Handler) GetRouter(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writeOne(c, h.routers)
}

// (GET /api/http/middlewares/:name)
func (h *Handler) GetMiddleware(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writeOne(c, h.middlewares)
}

// (GET /api/http/services/:name)
func (h *Handler) GetService(c *gin.Context) {
	if h.apiFault(c) {
		return
	}
	writeOne(c, h.services)
}

func (h *Handler) apiFault(c *gin.Context) bool {
	if !h.faults.APIError {
		return false
	}
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	return true
}

func writeOne[T v1.Entity](c *gin.Context, entities []T) {
	name := c.Param("name")
	for _, e := range entities {
		if e.EntityName() == name {
			c.JSON(http.StatusOK, e)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": name + " not found"})
}

// writePage paginates like Traefik: X-Next-Page holds the next page number, or 1 on
// the last page.
func writePage[T v1.Entity](c *gin.Context, entities []T) {
	if search := c.Query("search"); search != "" {
		var filtered []T
		for _, e := range entities {
			if strings.Contains(e.EntityName(), search) {
				filtered = append(filtered, e)
			}
		}
		entities = filtered
	}

	page, err := intParam(c, "page", 1)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request: page"})
		return
	}
	perPage, err := intParam(c, "per_page", defaultPerPage)
	if err != nil || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request: per_page"})
		return
	}

	start := (page - 1) * perPage
	if start != 0 && start >= len(entities) {
		zap.S().Named("stub_handler").Debugw("page out of range", "page", page, "per_page", perPage, "total", len(entities))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request: page: " + strconv.Itoa(page)})
		return
	}
	end := min(start+perPage, len(entities))

	next := 1
	if page*perPage < len(entities) {
		next = page + 1
	}
	c.Header(nextPageHeader, strconv.Itoa(next))

	out := make([]T, 0, end-start)
	out = append(out, entities[start:end]...)
	c.JSON(http.StatusOK, out)
}

func intParam(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
