package service

import (
	"context"
	"sync"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
)

// RegistryManager caches a validated taxrate.Registry built from the
// repository and rebuilds it lazily after definition changes. The
// acyclicity and child-existence invariants are therefore checked once
// per definition change, never during computation.
type RegistryManager struct {
	repo taxrate.Repository

	mu       sync.Mutex
	registry *taxrate.Registry
}

func NewRegistryManager(repo taxrate.Repository) *RegistryManager {
	return &RegistryManager{repo: repo}
}

// GetRegistry returns the cached registry, building it when needed.
func (m *RegistryManager) GetRegistry(ctx context.Context) (*taxrate.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry != nil {
		return m.registry, nil
	}

	defs, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := taxrate.NewRegistry(defs)
	if err != nil {
		return nil, err
	}

	m.registry = registry
	return registry, nil
}

// Invalidate drops the cached registry after a definition change.
func (m *RegistryManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry = nil
}

// Verify builds a registry from the given definitions without caching
// it, used to validate a candidate set before persisting.
func (m *RegistryManager) Verify(defs []*taxrate.TaxDefinition) error {
	_, err := taxrate.NewRegistry(defs)
	return err
}
