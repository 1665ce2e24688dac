package calculation

import (
	"sort"

	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

// Aggregator groups rounded tax amounts by tax and by tax group across
// every line of a document. For globally rounded taxes it performs the
// deferred rounding: sum raw amounts first, round once, then push the
// remainder back onto the contributing lines so per-line amounts sum
// exactly to the rounded document total.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// contribution is one line's share of one globally rounded tax.
type contribution struct {
	lineIndex int
	amount    *TaxAmount
}

// Aggregate settles pending document-level rounding in place on the
// results, then returns the per-tax and per-group sums.
func (a *Aggregator) Aggregate(results []*Result, mode types.RoundingMode) ([]*AggregatedTax, error) {
	if len(results) == 0 {
		return []*AggregatedTax{}, nil
	}

	if err := mode.Validate(); err != nil {
		return nil, err
	}

	precision := results[0].Precision
	for _, r := range results {
		if r.Precision != precision {
			return nil, ierr.NewError("mixed precisions in one document").
				WithHint("All lines of a document must share one currency precision").
				Mark(ierr.ErrInvalidOperation)
		}
	}

	if err := a.settleGlobalRounding(results, precision, mode); err != nil {
		return nil, err
	}

	return a.sum(results), nil
}

// settleGlobalRounding rounds each globally rounded tax once on its
// document-wide raw sum and distributes the remainder
// largest-fractional-remainder first, ties broken by line index so the
// same input always produces the same distribution.
func (a *Aggregator) settleGlobalRounding(results []*Result, precision int32, mode types.RoundingMode) error {
	pending := make(map[string][]contribution)
	order := make([]string, 0)

	for i, result := range results {
		for _, ta := range result.TaxAmounts {
			if ta.RoundingMethod != types.RoundingMethodGlobal {
				continue
			}
			if _, seen := pending[ta.TaxID]; !seen {
				order = append(order, ta.TaxID)
			}
			pending[ta.TaxID] = append(pending[ta.TaxID], contribution{lineIndex: i, amount: ta})
		}
	}

	minorUnit := decimal.New(1, -precision)

	for _, taxID := range order {
		contribs := pending[taxID]

		rawSum := decimal.Zero
		truncSum := decimal.Zero
		for _, c := range contribs {
			rawSum = rawSum.Add(c.amount.RawAmount)
			c.amount.RoundedAmount = c.amount.RawAmount.Truncate(precision)
			truncSum = truncSum.Add(c.amount.RoundedAmount)
		}

		target := mode.Round(rawSum, precision)

		// Remainder in whole minor units; sign tells which way the
		// truncated amounts must move.
		remainder := target.Sub(truncSum).Div(minorUnit).IntPart()
		if remainder == 0 {
			continue
		}

		ordered := make([]contribution, len(contribs))
		copy(ordered, contribs)
		sort.SliceStable(ordered, func(x, y int) bool {
			fx := ordered[x].amount.RawAmount.Sub(ordered[x].amount.RoundedAmount).Abs()
			fy := ordered[y].amount.RawAmount.Sub(ordered[y].amount.RoundedAmount).Abs()
			if !fx.Equal(fy) {
				return fx.GreaterThan(fy)
			}
			return ordered[x].lineIndex < ordered[y].lineIndex
		})

		step := minorUnit
		count := remainder
		if remainder < 0 {
			step = minorUnit.Neg()
			count = -remainder
		}

		for i := int64(0); i < count; i++ {
			// More minor units than contributions means wrapping around,
			// adding a second unit to the largest remainders first.
			c := ordered[i%int64(len(ordered))]
			c.amount.RoundedAmount = c.amount.RoundedAmount.Add(step)
		}
	}

	// Settled lines get final totals.
	for _, result := range results {
		if !result.PendingDocumentRounding {
			continue
		}
		total := result.RoundedBase
		for _, ta := range result.TaxAmounts {
			total = total.Add(ta.RoundedAmount)
		}
		result.TotalAmount = total
		result.PendingDocumentRounding = false
	}

	return nil
}

// sum produces the per-tax aggregates, then the per-group aggregates
// for taxes expanded out of composite groups, in deterministic order.
func (a *Aggregator) sum(results []*Result) []*AggregatedTax {
	byTax := make(map[string]*AggregatedTax)
	byGroup := make(map[string]*AggregatedTax)
	taxOrder := make([]string, 0)
	groupOrder := make([]string, 0)

	for _, result := range results {
		seenTax := make(map[string]bool)
		seenGroup := make(map[string]bool)

		for _, ta := range result.TaxAmounts {
			agg, ok := byTax[ta.TaxID]
			if !ok {
				agg = &AggregatedTax{TaxID: ta.TaxID, TaxCode: ta.TaxCode}
				byTax[ta.TaxID] = agg
				taxOrder = append(taxOrder, ta.TaxID)
			}
			agg.TaxAmountSum = agg.TaxAmountSum.Add(ta.RoundedAmount)
			if !seenTax[ta.TaxID] {
				agg.BaseAmountSum = agg.BaseAmountSum.Add(result.RoundedBase)
				seenTax[ta.TaxID] = true
			}

			if ta.GroupID == "" {
				continue
			}
			gagg, ok := byGroup[ta.GroupID]
			if !ok {
				gagg = &AggregatedTax{GroupID: ta.GroupID, IsGroup: true}
				byGroup[ta.GroupID] = gagg
				groupOrder = append(groupOrder, ta.GroupID)
			}
			gagg.TaxAmountSum = gagg.TaxAmountSum.Add(ta.RoundedAmount)
			if !seenGroup[ta.GroupID] {
				gagg.BaseAmountSum = gagg.BaseAmountSum.Add(result.RoundedBase)
				seenGroup[ta.GroupID] = true
			}
		}
	}

	out := make([]*AggregatedTax, 0, len(taxOrder)+len(groupOrder))
	for _, id := range taxOrder {
		out = append(out, byTax[id])
	}
	for _, id := range groupOrder {
		out = append(out, byGroup[id])
	}
	return out
}
