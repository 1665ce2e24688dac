package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/vidinfra/taxengine/internal/api/dto"
	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// TaxDefinitionService manages the registered tax definitions. The
// engine only ever reads them; this service is the configuration edge.
type TaxDefinitionService interface {
	CreateTaxDefinition(ctx context.Context, req dto.CreateTaxDefinitionRequest) (*dto.TaxDefinitionResponse, error)
	GetTaxDefinitionByCode(ctx context.Context, code string) (*dto.TaxDefinitionResponse, error)
	ListTaxDefinitions(ctx context.Context) (*dto.ListTaxDefinitionsResponse, error)
	DeleteTaxDefinition(ctx context.Context, id string) error
}

type taxDefinitionService struct {
	ServiceParams
}

func NewTaxDefinitionService(params ServiceParams) TaxDefinitionService {
	return &taxDefinitionService{ServiceParams: params}
}

func (s *taxDefinitionService) CreateTaxDefinition(ctx context.Context, req dto.CreateTaxDefinitionRequest) (*dto.TaxDefinitionResponse, error) {
	if err := req.Validate(); err != nil {
		s.Logger.Warnw("tax definition creation validation failed",
			"error", err,
			"code", req.Code,
		)
		return nil, err
	}

	def := req.ToTaxDefinition()

	// Verify the whole definition set with the candidate included, so
	// cycles and dangling children are rejected before anything is
	// persisted.
	existing, err := s.TaxDefinitionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Registry.Verify(append(existing, def)); err != nil {
		s.Logger.Warnw("tax definition graph validation failed",
			"error", err,
			"code", def.Code,
		)
		return nil, err
	}

	if err := s.TaxDefinitionRepo.Create(ctx, def); err != nil {
		s.Logger.Errorw("failed to create tax definition",
			"error", err,
			"tax_definition_id", def.ID,
			"code", def.Code,
		)
		return nil, err
	}

	s.Registry.Invalidate()

	s.Logger.Infow("tax definition created",
		"tax_definition_id", def.ID,
		"code", def.Code,
		"kind", def.Kind,
	)

	return &dto.TaxDefinitionResponse{TaxDefinition: def}, nil
}

func (s *taxDefinitionService) GetTaxDefinitionByCode(ctx context.Context, code string) (*dto.TaxDefinitionResponse, error) {
	if code == "" {
		return nil, ierr.NewError("code is required").
			WithHint("Tax definition code is required").
			Mark(ierr.ErrValidation)
	}

	def, err := s.TaxDefinitionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &dto.TaxDefinitionResponse{TaxDefinition: def}, nil
}

func (s *taxDefinitionService) ListTaxDefinitions(ctx context.Context) (*dto.ListTaxDefinitionsResponse, error) {
	defs, err := s.TaxDefinitionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(defs, func(def *taxrate.TaxDefinition, _ int) *dto.TaxDefinitionResponse {
		return &dto.TaxDefinitionResponse{TaxDefinition: def}
	})

	return &dto.ListTaxDefinitionsResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *taxDefinitionService) DeleteTaxDefinition(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("tax_definition_id is required").
			WithHint("Tax definition ID is required").
			Mark(ierr.ErrValidation)
	}

	def, err := s.TaxDefinitionRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	// Refuse to delete a definition another group still references.
	all, err := s.TaxDefinitionRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID == id {
			continue
		}
		if lo.Contains(other.ChildCodes, def.Code) {
			return ierr.NewError("tax definition is referenced by a group").
				WithHintf("Tax '%s' is a child of group '%s' and cannot be deleted", def.Code, other.Code).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	if err := s.TaxDefinitionRepo.Delete(ctx, id); err != nil {
		s.Logger.Errorw("failed to delete tax definition",
			"error", err,
			"tax_definition_id", id,
		)
		return err
	}

	s.Registry.Invalidate()

	s.Logger.Infow("tax definition deleted",
		"tax_definition_id", id,
		"code", def.Code,
	)

	return nil
}
