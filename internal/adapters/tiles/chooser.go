package tiles

import (
	"math/rand"
	"sync"
	"time"
)

// Chooser picks one subdomain per request.
type Chooser interface {
	Choose(options []string) string
}

// RandomChooser draws uniformly from the options. Safe for concurrent use.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser seeds the chooser. Seed 0 uses the current time.
func NewRandomChooser(seed int64) *RandomChooser {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomChooser{rng: rand.New(rand.NewSource(seed))}
}

// Choose returns a random element, or "" for no options.
func (c *RandomChooser) Choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	c.mu.Lock()
	i := c.rng.Intn(len(options))
	c.mu.Unlock()
	return options[i]
}

// FixedChooser always returns the first option.
type FixedChooser struct{}

// Choose implements Chooser.
func (FixedChooser) Choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
