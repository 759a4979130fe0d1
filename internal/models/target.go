package models

import "strings"

const (
	DashboardPath = "/dashboard/"

	RouteMiddlewares = "#/http/middlewares"
	RouteRouters     = "#/http/routers"
	RouteServices    = "#/http/services"
)

// NavigationTarget is a dashboard view: a base path plus an optional in-app hash route.
type NavigationTarget struct {
	BasePath string
	Route    string
}

func DashboardRoot() NavigationTarget {
	return NavigationTarget{BasePath: DashboardPath}
}

func DashboardView(route string) NavigationTarget {
	return NavigationTarget{BasePath: DashboardPath, Route: route}
}

// RouteFromLabel treats a label as a hash route fragment ("Middlewares" -> "#/middlewares").
func RouteFromLabel(label string) NavigationTarget {
	fragment := strings.Trim(strings.ToLower(strings.TrimSpace(label)), "#/")
	return DashboardView("#/" + fragment)
}

// Path returns the path and fragment, relative to the Target System base URL.
func (t NavigationTarget) Path() string {
	base := t.BasePath
	if base == "" {
		base = DashboardPath
	}
	if t.Route == "" {
		return base
	}
	route := t.Route
	if !strings.HasPrefix(route, "#") {
		route = "#" + route
	}
	return base + route
}

// Name is a short label for logs and reports ("root", "http/middlewares").
func (t NavigationTarget) Name() string {
	if t.Route == "" {
		return "root"
	}
	return strings.TrimPrefix(strings.TrimPrefix(t.Route, "#"), "/")
}

func (t NavigationTarget) String() string {
	return t.Path()
}
