package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/filter"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

// PlaceholderText is rendered by the proxy when the dashboard assets were not embedded.
const PlaceholderText = "Traefik Dashboard - Embedded Version"

var categoryOrder = []models.PatternCategory{
	models.PatternCategoryHTTP,
	models.PatternCategoryPlugin,
	models.PatternCategoryTemplate,
}

// Catalog holds the expected entities per dashboard view and the strings that must
// never be rendered. It is read-only once built.
type Catalog struct {
	placeholder string
	sets        map[models.EntityKind]models.ExpectedSet
	forbidden   []models.ForbiddenPattern
	rules       []filter.Rule
}

// Default returns the catalog for the plugin set shipped with the proxy build.
func Default() *Catalog {
	return &Catalog{
		placeholder: PlaceholderText,
		sets: map[models.EntityKind]models.ExpectedSet{
			models.EntityKindMiddlewares: models.NewExpectedSet(models.EntityKindMiddlewares,
				"waf@docker",
				"geoblock@docker",
				"crowdsec@docker",
				"realip@docker",
			),
			models.EntityKindRouters: models.NewExpectedSet(models.EntityKindRouters,
				"modsecurity-router@docker",
				"geoblock-router@docker",
				"crowdsec-router@docker",
				"realip-router@docker",
				"plain-router@docker",
			),
			models.EntityKindServices: models.NewExpectedSet(models.EntityKindServices,
				"modsecurity-service@docker",
				"geoblock-service@docker",
				"crowdsec-service@docker",
				"realip-service@docker",
				"plain-service@docker",
			),
		},
		forbidden: []models.ForbiddenPattern{
			{Text: "Internal Server Error", Category: models.PatternCategoryHTTP},
			{Text: "500", Category: models.PatternCategoryHTTP},
			{Text: "unknown plugin type", Category: models.PatternCategoryPlugin},
			{Text: "plugin: unknown", Category: models.PatternCategoryPlugin},
			{Text: "Unable to parse", Category: models.PatternCategoryPlugin},
			{Text: "template: pattern matches no files", Category: models.PatternCategoryTemplate},
		},
		rules: filter.DefaultRules(),
	}
}

type fileRule struct {
	Name     string `yaml:"name"`
	Contains string `yaml:"contains"`
	Verdict  string `yaml:"verdict"`
}

type file struct {
	Placeholder    *string             `yaml:"placeholder"`
	Views          map[string][]string `yaml:"views"`
	Forbidden      map[string][]string `yaml:"forbidden"`
	ExceptionRules []fileRule          `yaml:"exceptionRules"`
}

// Load reads a catalog file. Sections absent from the file keep their default value.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	c := Default()
	if f.Placeholder != nil {
		c.placeholder = *f.Placeholder
	}

	for name, ids := range f.Views {
		kind, err := models.ParseEntityKind(name)
		if err != nil {
			return nil, err
		}
		entities := make([]models.EntityID, 0, len(ids))
		for _, id := range ids {
			entities = append(entities, models.EntityID(strings.TrimSpace(id)))
		}
		c.sets[kind] = models.NewExpectedSet(kind, entities...)
	}

	if len(f.Forbidden) > 0 {
		c.forbidden = nil
		for _, category := range sortedCategories(f.Forbidden) {
			for _, text := range f.Forbidden[category] {
				c.forbidden = append(c.forbidden, models.ForbiddenPattern{
					Text:     text,
					Category: models.PatternCategory(category),
				})
			}
		}
	}

	if f.ExceptionRules != nil {
		c.rules = make([]filter.Rule, 0, len(f.ExceptionRules))
		for _, r := range f.ExceptionRules {
			verdict := filter.VerdictSuppress
			if r.Verdict != "" {
				v, err := filter.ParseVerdict(r.Verdict)
				if err != nil {
					return nil, fmt.Errorf("exception rule %q: %w", r.Name, err)
				}
				verdict = v
			}
			c.rules = append(c.rules, filter.Rule{Name: r.Name, Contains: r.Contains, Verdict: verdict})
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// sortedCategories keeps the well-known categories first, then the rest alphabetically.
func sortedCategories(m map[string][]string) []string {
	rank := func(s string) int {
		for i, c := range categoryOrder {
			if string(c) == s {
				return i
			}
		}
		return len(categoryOrder)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (c *Catalog) Validate() error {
	var errs []error
	for _, kind := range models.EntityKinds {
		set, ok := c.sets[kind]
		if !ok || len(set.IDs) == 0 {
			errs = append(errs, fmt.Errorf("expected set for %s is empty", kind))
			continue
		}
		for i, id := range set.IDs {
			if strings.TrimSpace(string(id)) == "" {
				errs = append(errs, fmt.Errorf("expected set for %s has a blank identifier at position %d", kind, i))
			}
		}
	}
	for i, p := range c.forbidden {
		if p.Text == "" {
			errs = append(errs, fmt.Errorf("forbidden pattern %d (%s) is empty", i, p.Category))
		}
	}
	for _, r := range c.rules {
		if r.Contains == "" {
			errs = append(errs, fmt.Errorf("exception rule %q has an empty match", r.Name))
		}
	}
	return errors.Join(errs...)
}

// Expected returns a copy of the expected set for kind.
func (c *Catalog) Expected(kind models.EntityKind) models.ExpectedSet {
	set := c.sets[kind]
	return models.NewExpectedSet(kind, set.IDs...)
}

func (c *Catalog) Forbidden() []models.ForbiddenPattern {
	return append([]models.ForbiddenPattern(nil), c.forbidden...)
}

// ForbiddenIn returns the forbidden patterns of the given categories, in catalog order.
func (c *Catalog) ForbiddenIn(categories ...models.PatternCategory) []models.ForbiddenPattern {
	var out []models.ForbiddenPattern
	for _, p := range c.forbidden {
		for _, cat := range categories {
			if p.Category == cat {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (c *Catalog) Placeholder() string {
	return c.placeholder
}

func (c *Catalog) ExceptionRules() []filter.Rule {
	return append([]filter.Rule(nil), c.rules...)
}
