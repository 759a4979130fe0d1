package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

var placeholderPage = template.Must(template.New("placeholder").Parse(`<!DOCTYPE html>
<html><head><title>{{.}}</title></head>
<body><h1>{{.}}</h1><p>The dashboard assets are not available in this build.</p></body></html>
`))

// Assets returns the dashboard files served under /dashboard/.
func Assets() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// GetDashboard serves the dashboard entry page, or the embedded-version fallback page
// (GET /dashboard/)
func (h *Handler) GetDashboard(c *gin.Context) {
	if h.faults.Placeholder {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := placeholderPage.Execute(c.Writer, h.placeholder); err != nil {
			_ = c.Error(err)
		}
		return
	}
	index, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", index)
}

// GetFlags exposes the UI fault switches to the dashboard script
// (GET /dashboard/flags.js)
func (h *Handler) GetFlags(c *gin.Context) {
	flags, err := json.Marshal(map[string]bool{
		"hubButtonError": h.faults.HubButtonError,
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/javascript", append(append([]byte("window.DASHBOARD_FLAGS = "), flags...), ';', '\n'))
}
