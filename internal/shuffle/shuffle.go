package shuffle

import (
	"math/rand"
	"sync"

	"github.com/KirkDiggler/secretsanta/internal/common/clock"
)

// Shuffler permutes a sequence in place, uniformly at random
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Random is a Shuffler backed by a seeded source
type Random struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the shuffler
type Config struct {
	// Optional seed for testing
	Seed int64

	// Clock seeds the source when Seed is zero (default system clock)
	Clock clock.Clock
}

// New creates a new shuffler
func New(cfg *Config) *Random {
	if cfg == nil {
		cfg = &Config{}
	}

	seed := cfg.Seed
	if seed == 0 {
		c := cfg.Clock
		if c == nil {
			c = &clock.DefaultClock{}
		}
		seed = c.Now().UnixNano()
	}

	return &Random{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Shuffle runs a Fisher-Yates shuffle over n elements.
// rand.Rand is not safe for concurrent use so calls are serialized.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.random.Shuffle(n, swap)
}
