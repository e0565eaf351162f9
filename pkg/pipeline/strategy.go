package pipeline

import (
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/genomap/pkg/geometry"
	"github.com/matzehuels/genomap/pkg/labels"
)

// StrategyFactory creates a placement strategy for one layout.
type StrategyFactory func(p geometry.Provider, cfg labels.Config) labels.Strategy

var (
	strategiesMu sync.RWMutex
	strategies   = map[string]StrategyFactory{
		StrategyAngled: func(p geometry.Provider, cfg labels.Config) labels.Strategy {
			return labels.NewAngled(p, cfg)
		},
		StrategyDefault: func(p geometry.Provider, cfg labels.Config) labels.Strategy {
			return labels.NewDefault(p, cfg)
		},
	}
)

// RegisterStrategy makes a custom strategy selectable by name. Registering
// an existing name replaces it.
func RegisterStrategy(name string, f StrategyFactory) {
	strategiesMu.Lock()
	defer strategiesMu.Unlock()
	strategies[name] = f
}

func lookupStrategy(name string) (StrategyFactory, bool) {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	f, ok := strategies[name]
	return f, ok
}

// Strategies returns the registered strategy names in sorted order.
func Strategies() []string {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func strategyNames() string {
	return strings.Join(Strategies(), ", ")
}
