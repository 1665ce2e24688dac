package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/types"
	"github.com/vidinfra/taxengine/internal/validator"
)

// TaxDefinitionResponse represents the response for tax definition operations
type TaxDefinitionResponse struct {
	*taxrate.TaxDefinition `json:",inline"`
}

// ListTaxDefinitionsResponse represents the response for listing tax definitions
type ListTaxDefinitionsResponse struct {
	Items []*TaxDefinitionResponse `json:"items"`
	Total int                      `json:"total"`
}

// CreateTaxDefinitionRequest represents the request to register a tax definition
type CreateTaxDefinitionRequest struct {
	// code is the unique identifier callers reference from line tax stacks (required)
	Code string `json:"code" validate:"required"`

	// name is the human-readable name for the tax (required)
	Name string `json:"name" validate:"required"`

	// description is an optional text description
	Description string `json:"description,omitempty"`

	// kind determines the computation: percent, fixed_amount,
	// percent_of_previous_total or group
	Kind types.TaxKind `json:"kind" validate:"required"`

	// rate is a percentage (0-100) for percent kinds and a per-unit
	// amount for fixed_amount
	Rate decimal.Decimal `json:"rate"`

	// price_included marks a tax already embedded in the nominal price
	PriceIncluded bool `json:"price_included"`

	// rounding_method overrides the company default for this tax
	RoundingMethod *types.RoundingMethod `json:"rounding_method,omitempty"`

	// sequence is the evaluation order among taxes on the same line
	Sequence int `json:"sequence"`

	// child_codes lists the ordered children of a group tax
	ChildCodes []string `json:"child_codes,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate validates the CreateTaxDefinitionRequest
func (r CreateTaxDefinitionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	// The full cross-definition validation (cycles, child existence)
	// happens at registry load; this only checks the single definition.
	def := r.ToTaxDefinition()
	return def.Validate()
}

// ToTaxDefinition converts the request to a domain model
func (r CreateTaxDefinitionRequest) ToTaxDefinition() *taxrate.TaxDefinition {
	prefix := types.UUID_PREFIX_TAX_DEFINITION
	if r.Kind == types.TaxKindGroup {
		prefix = types.UUID_PREFIX_TAX_GROUP
	}

	return &taxrate.TaxDefinition{
		ID:             types.GenerateUUIDWithPrefix(prefix),
		Code:           r.Code,
		Name:           r.Name,
		Description:    r.Description,
		Kind:           r.Kind,
		Rate:           r.Rate,
		PriceIncluded:  r.PriceIncluded,
		RoundingMethod: r.RoundingMethod,
		Sequence:       r.Sequence,
		ChildCodes:     r.ChildCodes,
		Version:        1,
		Metadata:       r.Metadata,
	}
}
