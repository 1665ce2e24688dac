package types

import (
	"slices"

	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// ComputationStrategy names how a document's taxes are computed. It is
// resolved once per document, never chained.
type ComputationStrategy string

const (
	// ComputationStrategyDefault runs the local engine end to end.
	ComputationStrategyDefault ComputationStrategy = "default"
	// ComputationStrategyExternalProvider substitutes provider-supplied
	// amounts for the local engine's, then reconciles and aggregates.
	ComputationStrategyExternalProvider ComputationStrategy = "external_provider"
)

func (s ComputationStrategy) String() string {
	return string(s)
}

func (s ComputationStrategy) Validate() error {
	allowedValues := []string{
		ComputationStrategyDefault.String(),
		ComputationStrategyExternalProvider.String(),
	}
	if !slices.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid computation strategy").
			WithHint("Computation strategy must be either default or external_provider").
			Mark(ierr.ErrValidation)
	}
	return nil
}
