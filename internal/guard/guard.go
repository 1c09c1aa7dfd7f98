package guard

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// ErrGuardNotFound is returned when a guard name is not registered
var ErrGuardNotFound = errors.New("guard not found")

// Guard defines the interface that every hook classifier implements
type Guard interface {
	// Name returns the guard identifier, also used as the CLI subcommand
	Name() string

	// Description returns a one-line summary of what the guard prevents
	Description() string

	// Evaluate classifies the event and returns the decision
	Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error)
}

// Registry manages available guards
type Registry struct {
	guards map[string]Guard
	mu     sync.RWMutex
}

// NewRegistry creates a new, empty guard registry
func NewRegistry() *Registry {
	return &Registry{
		guards: make(map[string]Guard),
	}
}

// NewDefaultRegistry creates a registry holding every built-in guard
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry()

	for _, g := range []Guard{
		NewCommitGuard(logger),
		NewTestDoubleGuard(),
		NewSnippetGuard(),
		NewAssertionGuard(),
		NewCommentedCodeGuard(),
		NewDocsCodeGuard(),
	} {
		// Built-in names are unique and non-empty
		_ = r.Register(g)
	}

	return r
}

// Register adds a guard to the registry
func (r *Registry) Register(g Guard) error {
	if g == nil {
		return errors.New("guard cannot be nil")
	}

	name := g.Name()
	if name == "" {
		return errors.New("guard name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guards[name]; exists {
		return errors.Newf("guard %q is already registered", name)
	}

	r.guards[name] = g
	return nil
}

// Get retrieves a guard by name
func (r *Registry) Get(name string) (Guard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, exists := r.guards[name]
	if !exists {
		return nil, errors.Wrapf(ErrGuardNotFound, "guard %q", name)
	}

	return g, nil
}

// List returns all registered guards sorted by name
func (r *Registry) List() []Guard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.guards))
	for name := range r.guards {
		names = append(names, name)
	}
	sort.Strings(names)

	guards := make([]Guard, 0, len(names))
	for _, name := range names {
		guards = append(guards, r.guards[name])
	}

	return guards
}
