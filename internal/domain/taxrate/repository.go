package taxrate

import "context"

// Repository defines the interface for tax definition persistence.
// Definitions are configuration data owned by collaborators; the engine
// never mutates them during computation.
type Repository interface {
	Create(ctx context.Context, def *TaxDefinition) error
	Get(ctx context.Context, id string) (*TaxDefinition, error)
	GetByCode(ctx context.Context, code string) (*TaxDefinition, error)
	List(ctx context.Context) ([]*TaxDefinition, error)
	Delete(ctx context.Context, id string) error
}
