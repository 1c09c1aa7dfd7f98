package audit

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrStrategyNotFound is returned when no strategy is registered for a type
var ErrStrategyNotFound = errors.New("strategy not found")

// Registry manages available audit strategies
type Registry struct {
	strategies map[string]AuditStrategy
	mu         sync.RWMutex
}

// NewRegistry creates a new strategy registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]AuditStrategy),
	}
}

// RegisterStrategy adds a strategy to the registry
func (r *Registry) RegisterStrategy(strategy AuditStrategy) error {
	if strategy == nil {
		return errors.New("strategy cannot be nil")
	}

	strategyType := strategy.GetType()
	if strategyType == "" {
		return errors.New("strategy type cannot be empty")
	}

	if err := strategy.Validate(); err != nil {
		return errors.Wrap(err, "strategy validation failed")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[strategyType]; exists {
		return errors.Newf("strategy type %q is already registered", strategyType)
	}

	r.strategies[strategyType] = strategy
	return nil
}

// GetStrategy retrieves a strategy by type
func (r *Registry) GetStrategy(strategyType string) (AuditStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[strategyType]
	if !exists {
		return nil, errors.Wrapf(ErrStrategyNotFound, "strategy type %q", strategyType)
	}

	return strategy, nil
}

// ListStrategies returns all registered strategy types, sorted
func (r *Registry) ListStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for strategyType := range r.strategies {
		names = append(names, strategyType)
	}
	sort.Strings(names)

	return names
}
