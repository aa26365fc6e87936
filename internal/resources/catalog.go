// Package resources serves the static list of support resources.
package resources

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var builtin []byte

type Category string

const (
	CategoryArticle  Category = "article"
	CategoryVideo    Category = "video"
	CategoryExercise Category = "exercise"
	CategoryHotline  Category = "hotline"
	CategoryOther    Category = "other"
)

type Resource struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	URL         string   `yaml:"url" json:"url"`
	Category    Category `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`
}

type Catalog struct {
	items []Resource
}

func Parse(data []byte) (*Catalog, error) {
	var items []Resource
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("resources parse: %w", err)
	}
	for i, r := range items {
		if r.ID == "" || r.Title == "" || r.URL == "" {
			return nil, fmt.Errorf("resources[%d]: id, title and url are required", i)
		}
		switch r.Category {
		case CategoryArticle, CategoryVideo, CategoryExercise, CategoryHotline, CategoryOther:
		default:
			return nil, fmt.Errorf("resources[%d] (%q): unknown category %q", i, r.ID, r.Category)
		}
	}
	return &Catalog{items: items}, nil
}

func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in resources are invalid: %v", err))
	}
	return c
}

// Search returns resources whose title, description or a tag contains term,
// case-insensitively. An empty term matches everything; a non-empty category
// restricts the result to that category.
func (c *Catalog) Search(term string, category Category) []Resource {
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]Resource, 0, len(c.items))
	for _, r := range c.items {
		if category != "" && r.Category != category {
			continue
		}
		if term != "" && !r.contains(term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r Resource) contains(term string) bool {
	if strings.Contains(strings.ToLower(r.Title), term) ||
		strings.Contains(strings.ToLower(r.Description), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
