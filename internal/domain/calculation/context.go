package calculation

import (
	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/types"
)

// ApplicabilityPredicate decides whether a tax definition applies to
// the line being built. It is a pure function of the definition; the
// engine itself never filters.
type ApplicabilityPredicate func(def *taxrate.TaxDefinition) bool

// ComputationContext carries everything a computation needs that is not
// on the line itself. It is an explicit value passed into every call;
// there is no request-scoped global state.
type ComputationContext struct {
	DefaultRoundingMethod types.RoundingMethod
	RoundingMode          types.RoundingMode

	// PrecisionOverrides extends or overrides the built-in currency
	// precision table.
	PrecisionOverrides map[string]int32

	// Applicable filters the resolved tax stack. Nil means every
	// referenced tax applies.
	Applicable ApplicabilityPredicate
}

// Validate checks the context before use.
func (c ComputationContext) Validate() error {
	if err := c.DefaultRoundingMethod.Validate(); err != nil {
		return err
	}
	return c.RoundingMode.Validate()
}
