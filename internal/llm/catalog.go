package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// CrisisCategory is always evaluated before every other category.
const CrisisCategory = "crisis"

// FallbackCategory names replies drawn from the fallback pool.
const FallbackCategory = "fallback"

//go:embed catalog.yaml
var defaultCatalog []byte

// Category is one keyword group and the fixed reply it triggers.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`

	phrases []phrase
}

// Catalog is the ordered category list plus the generic fallback pool.
type Catalog struct {
	Categories []Category `yaml:"categories"`
	Fallback   []string   `yaml:"fallback"`
}

// phrase is a keyword split into normalized words. When prefix is set the
// last word matches any token that starts with it.
type phrase struct {
	words  []string
	prefix bool
}

// ParseCatalog decodes a YAML catalog and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog parse: %w", err)
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads a catalog file, or returns the built-in catalog when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog read: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

func (c *Catalog) compile() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog: categories must not be empty")
	}
	if c.Categories[0].Name != CrisisCategory {
		return fmt.Errorf("catalog: first category must be %q, got %q", CrisisCategory, c.Categories[0].Name)
	}
	if len(c.Fallback) == 0 {
		return fmt.Errorf("catalog: fallback pool must not be empty")
	}
	for i, r := range c.Fallback {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("catalog: fallback[%d] must not be empty", i)
		}
	}

	seen := make(map[string]struct{}, len(c.Categories))
	for i := range c.Categories {
		cat := &c.Categories[i]
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("catalog: categories[%d]: name must not be empty", i)
		}
		if cat.Name == FallbackCategory {
			return fmt.Errorf("catalog: categories[%d]: name %q is reserved", i, cat.Name)
		}
		if _, dup := seen[cat.Name]; dup {
			return fmt.Errorf("catalog: categories[%d]: duplicate name %q", i, cat.Name)
		}
		seen[cat.Name] = struct{}{}

		if strings.TrimSpace(cat.Response) == "" {
			return fmt.Errorf("catalog: category %q: response must not be empty", cat.Name)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("catalog: category %q: keywords must not be empty", cat.Name)
		}

		cat.phrases = cat.phrases[:0]
		for _, kw := range cat.Keywords {
			p, err := compilePhrase(kw)
			if err != nil {
				return fmt.Errorf("catalog: category %q: %w", cat.Name, err)
			}
			cat.phrases = append(cat.phrases, p)
		}
	}
	return nil
}

func compilePhrase(keyword string) (phrase, error) {
	kw := strings.TrimSpace(keyword)
	prefix := strings.HasSuffix(kw, "*")
	words := tokenize(strings.TrimSuffix(kw, "*"))
	if len(words) == 0 {
		return phrase{}, fmt.Errorf("keyword %q has no words", keyword)
	}
	return phrase{words: words, prefix: prefix}, nil
}

var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "")

// tokenize lower-cases s and splits it into words. Apostrophes are dropped so
// "don't" and "dont" are the same token.
func tokenize(s string) []string {
	s = apostrophes.Replace(strings.ToLower(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (p phrase) matches(tokens []string) bool {
	n := len(p.words)
	for start := 0; start+n <= len(tokens); start++ {
		if p.matchesAt(tokens[start : start+n]) {
			return true
		}
	}
	return false
}

func (p phrase) matchesAt(window []string) bool {
	last := len(p.words) - 1
	for i, w := range p.words {
		if i == last && p.prefix {
			if !strings.HasPrefix(window[i], w) {
				return false
			}
			continue
		}
		if window[i] != w {
			return false
		}
	}
	return true
}

func (c *Category) matches(tokens []string) bool {
	for _, p := range c.phrases {
		if p.matches(tokens) {
			return true
		}
	}
	return false
}
