package models

import (
	"fmt"
	"strings"
)

// EntityID identifies a routing entity as rendered by the dashboard, e.g. "waf@docker".
// It is treated as an opaque token: assertions only check substring presence.
type EntityID string

func (id EntityID) String() string {
	return string(id)
}

// Provider returns the provider suffix ("docker" for "waf@docker"), or "" when absent.
func (id EntityID) Provider() string {
	i := strings.LastIndex(string(id), "@")
	if i < 0 {
		return ""
	}
	return string(id)[i+1:]
}

type EntityKind string

const (
	EntityKindRouters     EntityKind = "routers"
	EntityKindMiddlewares EntityKind = "middlewares"
	EntityKindServices    EntityKind = "services"
)

// EntityKinds lists the kinds in the order the dashboard views are checked.
var EntityKinds = []EntityKind{EntityKindMiddlewares, EntityKindRouters, EntityKindServices}

func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "routers":
		return EntityKindRouters, nil
	case "middlewares":
		return EntityKindMiddlewares, nil
	case "services":
		return EntityKindServices, nil
	default:
		return "", fmt.Errorf("invalid entity kind: %s", s)
	}
}

// View returns the dashboard view listing entities of this kind.
func (k EntityKind) View() NavigationTarget {
	return DashboardView("#/http/" + string(k))
}

// ExpectedSet is the ordered list of entities a dashboard view must render.
type ExpectedSet struct {
	Kind EntityKind
	View NavigationTarget
	IDs  []EntityID
}

func NewExpectedSet(kind EntityKind, ids ...EntityID) ExpectedSet {
	return ExpectedSet{
		Kind: kind,
		View: kind.View(),
		IDs:  append([]EntityID(nil), ids...),
	}
}

// Strings returns the identifiers as plain strings.
func (s ExpectedSet) Strings() []string {
	out := make([]string, 0, len(s.IDs))
	for _, id := range s.IDs {
		out = append(out, string(id))
	}
	return out
}
