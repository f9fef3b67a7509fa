package session

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Exercise is one entry of the static catalog.
type Exercise struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Duration string `yaml:"duration" json:"duration"`
	Icon     string `yaml:"icon" json:"icon"`
}

// Catalog maps category keys to ordered exercise lists. It is read-only
// once built.
type Catalog struct {
	order      []string
	categories map[string][]Exercise
}

type catalogFile struct {
	Categories []struct {
		Key       string     `yaml:"key"`
		Exercises []Exercise `yaml:"exercises"`
	} `yaml:"categories"`
}

// ParseCatalog builds a Catalog from its YAML form.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}

	c := &Catalog{categories: make(map[string][]Exercise, len(f.Categories))}
	seen := make(map[string]string)
	for _, cat := range f.Categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("parse exercise catalog: category without key")
		}
		if _, dup := c.categories[cat.Key]; dup {
			return nil, fmt.Errorf("parse exercise catalog: duplicate category %q", cat.Key)
		}
		for _, ex := range cat.Exercises {
			if prev, dup := seen[ex.ID]; dup {
				return nil, fmt.Errorf("parse exercise catalog: exercise %q in both %q and %q", ex.ID, prev, cat.Key)
			}
			seen[ex.ID] = cat.Key
		}
		c.order = append(c.order, cat.Key)
		c.categories[cat.Key] = cat.Exercises
	}
	return c, nil
}

var defaultCatalog = mustParseCatalog(defaultCatalogYAML)

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in exercise catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Categories lists category keys in catalog order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.order...)
}

// Has reports whether key names a category.
func (c *Catalog) Has(key string) bool {
	_, ok := c.categories[key]
	return ok
}

// Exercises returns a copy of the exercises in a category.
func (c *Catalog) Exercises(key string) []Exercise {
	return append([]Exercise(nil), c.categories[key]...)
}
