package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/types"
)

// Reconciler substitutes externally supplied authoritative amounts for
// locally computed ones, so provider-computed documents still flow
// through the aggregator with a uniform shape.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile replaces the local per-tax amounts with the provider's.
// The external result always wins; if its total diverges from the
// locally computed one by more than one minor currency unit, a warning
// is attached for manual review rather than failing the document.
func (r *Reconciler) Reconcile(local *Result, external *ExternalLineResult) *Result {
	localTotal := local.TotalAmount

	byCode := make(map[string]*TaxAmount, len(local.TaxAmounts))
	for _, ta := range local.TaxAmounts {
		byCode[ta.TaxCode] = ta
	}

	substituted := make([]*TaxAmount, 0, len(external.TaxAmounts))
	for _, ext := range external.TaxAmounts {
		ta := &TaxAmount{
			TaxID:          ext.TaxID,
			TaxCode:        ext.TaxCode,
			RawAmount:      ext.Amount,
			RoundedAmount:  ext.Amount,
			RoundingMethod: types.RoundingMethodPerLine,
		}
		// Keep the local identity and group key when the provider
		// reports a tax the local stack also knows.
		if localTax, ok := byCode[ext.TaxCode]; ok {
			if ta.TaxID == "" {
				ta.TaxID = localTax.TaxID
			}
			ta.GroupID = localTax.GroupID
		} else if ta.TaxID == "" {
			ta.TaxID = ext.TaxCode
		}
		substituted = append(substituted, ta)
	}

	local.TaxAmounts = substituted

	total := local.RoundedBase
	for _, ta := range local.TaxAmounts {
		total = total.Add(ta.RoundedAmount)
	}
	local.TotalAmount = total
	local.PendingDocumentRounding = false

	minorUnit := decimal.New(1, -local.Precision)
	if localTotal.Sub(external.Total).Abs().GreaterThan(minorUnit) {
		local.Warnings = append(local.Warnings, &ReconciliationWarning{
			LineID:        local.LineID,
			LocalTotal:    localTotal,
			ExternalTotal: external.Total,
			Message: fmt.Sprintf(
				"external total %s diverges from locally computed total %s by more than one minor unit",
				external.Total.String(), localTotal.String(),
			),
		})
	}

	return local
}
