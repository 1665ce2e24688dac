package types

import (
	"slices"

	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// TaxKind determines how a tax definition computes its amount.
type TaxKind string

const (
	// TaxKindPercent computes rate% of the line's base amount.
	TaxKindPercent TaxKind = "percent"
	// TaxKindFixedAmount computes rate * quantity; it scales with
	// quantity, not price.
	TaxKindFixedAmount TaxKind = "fixed_amount"
	// TaxKindPercentOfPreviousTotal computes rate% of the running total
	// (base plus every previously applied tax), i.e. a cascading tax.
	TaxKindPercentOfPreviousTotal TaxKind = "percent_of_previous_total"
	// TaxKindGroup is a composite tax whose ordered children are applied
	// sequentially in its place.
	TaxKindGroup TaxKind = "group"
)

func (k TaxKind) String() string {
	return string(k)
}

func (k TaxKind) Validate() error {
	allowedValues := []string{
		TaxKindPercent.String(),
		TaxKindFixedAmount.String(),
		TaxKindPercentOfPreviousTotal.String(),
		TaxKindGroup.String(),
	}
	if !slices.Contains(allowedValues, string(k)) {
		return ierr.NewError("invalid tax kind").
			WithHint("Tax kind must be one of percent, fixed_amount, percent_of_previous_total or group").
			Mark(ierr.ErrValidation)
	}
	return nil
}
