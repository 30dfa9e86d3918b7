// Package catalog serves the built-in packing templates.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/packzen/internal/model"
)

//go:embed catalog.yaml
var builtin []byte

type section struct {
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
	Items    []struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		Quantity  int    `yaml:"quantity"`
		Container bool   `yaml:"container"`
	} `yaml:"items"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []model.CatalogTemplate
	byID      map[string]int
}

// Parse reads a catalog document. Template ids must be unique and every
// template needs a name.
func Parse(data []byte) (*Catalog, error) {
	var sections []section
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int)}
	for _, s := range sections {
		for _, it := range s.Items {
			if it.ID == "" || it.Name == "" {
				return nil, fmt.Errorf("catalog entry in %q needs an id and a name", s.Category)
			}
			if _, dup := c.byID[it.ID]; dup {
				return nil, fmt.Errorf("duplicate catalog id %q", it.ID)
			}
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			c.byID[it.ID] = len(c.templates)
			c.templates = append(c.templates, model.CatalogTemplate{
				ID:          it.ID,
				Name:        it.Name,
				Category:    s.Category,
				Icon:        s.Icon,
				Quantity:    qty,
				IsContainer: it.Container,
			})
		}
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(builtin)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// All returns a copy of every template in catalog order.
func (c *Catalog) All() []model.CatalogTemplate {
	return slices.Clone(c.templates)
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (model.CatalogTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.CatalogTemplate{}, false
	}
	return c.templates[i], true
}

// Categories returns each catalog category once, in catalog order.
func (c *Catalog) Categories() []model.Category {
	seen := make(map[string]bool)
	var out []model.Category
	for _, t := range c.templates {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, model.Category{Name: t.Category, Icon: t.Icon, SortOrder: len(out)})
	}
	return out
}

// Search returns templates whose name or category contains q, ignoring case.
func (c *Catalog) Search(q string) []model.CatalogTemplate {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.All()
	}
	var out []model.CatalogTemplate
	for _, t := range c.templates {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Category), q) {
			out = append(out, t)
		}
	}
	return out
}
