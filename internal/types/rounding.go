package types

import (
	"slices"

	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/shopspring/decimal"
)

// RoundingMethod selects where currency rounding happens.
type RoundingMethod string

const (
	// RoundingMethodPerLine rounds each tax amount independently on every line.
	RoundingMethodPerLine RoundingMethod = "round_per_line"
	// RoundingMethodGlobal defers rounding to the document level: raw
	// amounts are summed per tax across all lines and rounded once.
	RoundingMethodGlobal RoundingMethod = "round_globally"
)

func (m RoundingMethod) String() string {
	return string(m)
}

func (m RoundingMethod) Validate() error {
	allowedValues := []string{
		RoundingMethodPerLine.String(),
		RoundingMethodGlobal.String(),
	}
	if !slices.Contains(allowedValues, string(m)) {
		return ierr.NewError("invalid rounding method").
			WithHint("Rounding method must be either round_per_line or round_globally").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RoundingMode selects the tie-breaking rule, fixed per currency.
type RoundingMode string

const (
	RoundingModeHalfUp   RoundingMode = "half_up"
	RoundingModeHalfEven RoundingMode = "half_even"
)

func (m RoundingMode) String() string {
	return string(m)
}

func (m RoundingMode) Validate() error {
	allowedValues := []string{
		RoundingModeHalfUp.String(),
		RoundingModeHalfEven.String(),
	}
	if !slices.Contains(allowedValues, string(m)) {
		return ierr.NewError("invalid rounding mode").
			WithHint("Rounding mode must be either half_up or half_even").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Round applies the mode at the given precision.
func (m RoundingMode) Round(amount decimal.Decimal, precision int32) decimal.Decimal {
	if m == RoundingModeHalfEven {
		return amount.RoundBank(precision)
	}
	return amount.Round(precision)
}
