package taxrate

import (
	"sort"

	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

// TaxDefinition is an immutable, versioned description of one tax rule.
// Definitions are created and versioned by configuration outside the
// engine; the engine only reads them.
type TaxDefinition struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Kind determines the computation: percent, fixed_amount,
	// percent_of_previous_total or group.
	Kind types.TaxKind `json:"kind"`

	// Rate is a percentage (0-100) for percent kinds and a per-unit
	// monetary amount for fixed_amount. Unused for group.
	Rate decimal.Decimal `json:"rate"`

	// PriceIncluded marks a tax whose amount is already embedded in the
	// line's nominal price and must be reversed out to find the base.
	PriceIncluded bool `json:"price_included"`

	// RoundingMethod overrides the company default when set.
	RoundingMethod *types.RoundingMethod `json:"rounding_method,omitempty"`

	// Sequence is the evaluation order among taxes on the same line.
	Sequence int `json:"sequence"`

	// ChildCodes lists the ordered children of a group tax, referenced
	// by code. Only valid for the group kind.
	ChildCodes []string `json:"child_codes,omitempty"`

	Version  int               `json:"version"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks one definition in isolation. Cross-definition
// invariants (child existence, acyclicity) belong to the Registry.
func (d *TaxDefinition) Validate() error {
	if d.Code == "" {
		return ierr.NewError("code is required").
			WithHint("Tax definition code is required").
			Mark(ierr.ErrValidation)
	}

	if err := d.Kind.Validate(); err != nil {
		return err
	}

	if d.RoundingMethod != nil {
		if err := d.RoundingMethod.Validate(); err != nil {
			return err
		}
	}

	switch d.Kind {
	case types.TaxKindPercent, types.TaxKindPercentOfPreviousTotal:
		if d.Rate.IsNegative() || d.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("rate out of range").
				WithHintf("Percentage rate for tax '%s' must be in range 0-100", d.Code).
				Mark(ierr.ErrValidation)
		}
	case types.TaxKindGroup:
		if len(d.ChildCodes) == 0 {
			return ierr.NewError("group tax requires children").
				WithHintf("Group tax '%s' must list at least one child code", d.Code).
				Mark(ierr.ErrValidation)
		}
		if !d.Rate.IsZero() {
			return ierr.NewError("group tax cannot carry a rate").
				WithHintf("Group tax '%s' derives its amount from its children", d.Code).
				Mark(ierr.ErrValidation)
		}
		if d.PriceIncluded {
			return ierr.NewError("group tax cannot be price included").
				WithHintf("Mark the children of group '%s' as price included instead", d.Code).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// SortBySequence orders definitions by sequence, stable on code so that
// equal sequences resolve deterministically.
func SortBySequence(defs []*TaxDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Sequence != defs[j].Sequence {
			return defs[i].Sequence < defs[j].Sequence
		}
		return defs[i].Code < defs[j].Code
	})
}
