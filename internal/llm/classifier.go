package llm

import (
	"math/rand/v2"
	"sync"

	"github.com/RichardoC/lumi/internal/models"
)

// Match is the outcome of classifying one utterance.
type Match struct {
	Category string
	Response string
}

// Classifier picks a scripted reply for an utterance. Categories are tried in
// catalog order and the first one with a matching keyword wins; when none
// matches, a reply is drawn from the fallback pool using the injected source.
type Classifier struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

func NewClassifier(catalog *Catalog, rng *rand.Rand) *Classifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Classifier{catalog: catalog, rng: rng}
}

// Classify returns the reply text for utterance. history is accepted so
// callers always pass the conversation so far; matching does not consult it.
func (c *Classifier) Classify(utterance string, history []models.Message) string {
	return c.Match(utterance, history).Response
}

func (c *Classifier) Match(utterance string, _ []models.Message) Match {
	tokens := tokenize(utterance)

	for i := range c.catalog.Categories {
		cat := &c.catalog.Categories[i]
		if cat.matches(tokens) {
			return Match{Category: cat.Name, Response: cat.Response}
		}
	}

	c.mu.Lock()
	idx := c.rng.IntN(len(c.catalog.Fallback))
	c.mu.Unlock()

	return Match{Category: FallbackCategory, Response: c.catalog.Fallback[idx]}
}

func (c *Classifier) Catalog() *Catalog {
	return c.catalog
}
