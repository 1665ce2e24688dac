package memory

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// TaxDefinitionStore is an in-memory taxrate.Repository. Definition
// persistence proper is owned by collaborators outside this engine;
// this store backs the configuration API and the tests.
type TaxDefinitionStore struct {
	mu     sync.RWMutex
	byID   map[string]*taxrate.TaxDefinition
	byCode map[string]*taxrate.TaxDefinition
}

func NewTaxDefinitionStore() *TaxDefinitionStore {
	return &TaxDefinitionStore{
		byID:   make(map[string]*taxrate.TaxDefinition),
		byCode: make(map[string]*taxrate.TaxDefinition),
	}
}

func (s *TaxDefinitionStore) Create(ctx context.Context, def *taxrate.TaxDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[def.ID]; exists {
		return ierr.NewError("tax definition already exists").
			WithHintf("A tax definition with id '%s' already exists", def.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	if _, exists := s.byCode[def.Code]; exists {
		return ierr.NewError("tax definition code already exists").
			WithHintf("A tax definition with code '%s' already exists", def.Code).
			Mark(ierr.ErrAlreadyExists)
	}

	s.byID[def.ID] = def
	s.byCode[def.Code] = def
	return nil
}

func (s *TaxDefinitionStore) Get(ctx context.Context, id string) (*taxrate.TaxDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.byID[id]
	if !ok {
		return nil, ierr.NewError("tax definition not found").
			WithHintf("No tax definition with id '%s'", id).
			Mark(ierr.ErrNotFound)
	}
	return def, nil
}

func (s *TaxDefinitionStore) GetByCode(ctx context.Context, code string) (*taxrate.TaxDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.byCode[code]
	if !ok {
		return nil, ierr.NewError("tax definition not found").
			WithHintf("No tax definition with code '%s'", code).
			Mark(ierr.ErrNotFound)
	}
	return def, nil
}

func (s *TaxDefinitionStore) List(ctx context.Context) ([]*taxrate.TaxDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := lo.Values(s.byID)
	taxrate.SortBySequence(defs)
	return defs, nil
}

func (s *TaxDefinitionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.byID[id]
	if !ok {
		return ierr.NewError("tax definition not found").
			WithHintf("No tax definition with id '%s'", id).
			Mark(ierr.ErrNotFound)
	}
	delete(s.byID, id)
	delete(s.byCode, def.Code)
	return nil
}
