package calculation

import (
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

// Distributor converts raw amounts to currency-precision amounts. Taxes
// carrying the per-line method are rounded here; taxes carrying the
// global method pass through raw and are settled once by the
// aggregator at the document level.
type Distributor struct{}

func NewDistributor() *Distributor {
	return &Distributor{}
}

// Round rounds the result in place. Fails with ErrUnresolvedPrecision
// on a negative precision instead of defaulting: silent precision
// defaults are the single most common source of cent-drift bugs.
func (d *Distributor) Round(result *Result, mode types.RoundingMode) error {
	if result.Precision < 0 {
		return ierr.NewError("precision not resolved").
			WithHintf("Line '%s' has no resolved currency precision", result.LineID).
			Mark(ierr.ErrUnresolvedPrecision)
	}
	if err := mode.Validate(); err != nil {
		return err
	}

	result.RoundedBase = mode.Round(result.BaseAmount, result.Precision)
	result.PendingDocumentRounding = false

	total := result.RoundedBase
	for _, ta := range result.TaxAmounts {
		switch ta.RoundingMethod {
		case types.RoundingMethodGlobal:
			// Defer: keep the raw amount; the line total stays
			// provisional until document-level rounding settles it.
			ta.RoundedAmount = ta.RawAmount
			result.PendingDocumentRounding = true
		default:
			ta.RoundedAmount = mode.Round(ta.RawAmount, result.Precision)
		}
		total = total.Add(ta.RoundedAmount)
	}

	result.TotalAmount = total
	return nil
}
