package locator

import (
	"strings"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
)

// Strategy finds candidate elements with Selector and keeps those Match accepts.
// Match must be a pure function of the element and the label.
type Strategy struct {
	Name     string
	Selector string
	Match    func(el browser.Element, label string) bool
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// LinkTextStrategy matches links and buttons whose visible text contains the label,
// ignoring case.
func LinkTextStrategy() Strategy {
	return Strategy{
		Name:     "link-text",
		Selector: "a, button",
		Match: func(el browser.Element, label string) bool {
			return containsFold(el.Text, label)
		},
	}
}

// HrefStrategy matches elements whose href contains the label, ignoring case.
func HrefStrategy() Strategy {
	return Strategy{
		Name:     "href",
		Selector: "[href]",
		Match: func(el browser.Element, label string) bool {
			return containsFold(el.Href, label)
		},
	}
}

// EntityTextStrategy matches leaf elements whose text contains the label exactly,
// such as the name cell of an entity row.
func EntityTextStrategy() Strategy {
	return Strategy{
		Name:     "entity-text",
		Selector: "*",
		Match: func(el browser.Element, label string) bool {
			return el.Leaf && strings.Contains(el.Text, label)
		},
	}
}

// NavigationStrategies is the canonical order used to find a navigation control.
func NavigationStrategies() []Strategy {
	return []Strategy{LinkTextStrategy(), HrefStrategy()}
}

// EntityStrategies locates an entity row, falling back to the navigation strategies.
func EntityStrategies() []Strategy {
	return []Strategy{EntityTextStrategy(), LinkTextStrategy(), HrefStrategy()}
}
