// Package cache provides a cache of previously computed relevance scores.
// Scoring a pair is a full forward pass through the model, so repeated
// question/document pairs are worth remembering.
package cache

import (
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

const defTTL = 5 * time.Minute

// Config represents settings for the score cache.
//
// MaxEntries: Defines the maximum number of scores kept in memory.
// Defaults to 10240 if the value is 0.
//
// TTL: Defines the time a score can live in the cache without being
// rewritten. Defaults to 5 minutes.
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

func validateConfig(cfg Config) Config {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10240
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defTTL
	}

	return cfg
}

// Cache maintains scores for question/document pairs.
type Cache struct {
	scores *otter.Cache[string, float64]
}

// New constructs a score cache for use.
func New(cfg Config) (*Cache, error) {
	cfg = validateConfig(cfg)

	opt := otter.Options[string, float64]{
		MaximumSize:      cfg.MaxEntries,
		ExpiryCalculator: otter.ExpiryWriting[string, float64](cfg.TTL),
	}

	scores, err := otter.New(&opt)
	if err != nil {
		return nil, fmt.Errorf("constructing cache: %w", err)
	}

	return &Cache{scores: scores}, nil
}

// Lookup returns the cached score for the pair when one exists.
func (c *Cache) Lookup(question string, document string) (float64, bool) {
	return c.scores.GetIfPresent(key(question, document))
}

// Store remembers the score for the pair.
func (c *Cache) Store(question string, document string, score float64) {
	c.scores.Set(key(question, document), score)
}

// Clear drops every cached score.
func (c *Cache) Clear() {
	c.scores.InvalidateAll()
}

// key builds the cache key for a pair. The length prefix keeps shifted
// pairs from colliding.
func key(question string, document string) string {
	return fmt.Sprintf("%d:%s%s", len(question), question, document)
}
