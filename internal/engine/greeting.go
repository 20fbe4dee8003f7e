package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/tartampluch/go-sched/internal/config"
)

// Localizer resolves a translation key, returning fallback when the key is missing.
type Localizer interface {
	Localize(key string, data map[string]any, fallback string) string
}

// Picker selects an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Greeter chooses the block greeting. Picks are serialized, so a seeded
// *rand.Rand may be shared by concurrent Generate calls.
type Greeter struct {
	Picker    Picker
	Localizer Localizer

	mu sync.Mutex
}

// Greet returns the fixed phrase for the "Today" block, otherwise a uniform
// pick from the greeting pool.
func (g *Greeter) Greet(title string) string {
	if title == config.TitleToday {
		return g.Fixed()
	}
	i := g.pick(len(config.FallbackGreetings))
	key := fmt.Sprintf(config.FormatGreetingKey, i+1)
	return localize(g.localizer(), key, nil, config.FallbackGreetings[i])
}

// Fixed is the phrase used for today and for weather closures.
func (g *Greeter) Fixed() string {
	return localize(g.localizer(), config.TKeyGreetingToday, nil, config.FallbackGreetingToday)
}

func (g *Greeter) pick(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.Picker
	if p == nil {
		p = globalPicker{}
	}
	i := p.IntN(n)
	if i < 0 || i >= n {
		i = 0
	}
	return i
}

func (g *Greeter) localizer() Localizer {
	if g == nil {
		return nil
	}
	return g.Localizer
}

func localize(l Localizer, key string, data map[string]any, fallback string) string {
	if l == nil {
		return fallback
	}
	return l.Localize(key, data, fallback)
}
