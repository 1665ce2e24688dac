package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/types"
)

var oneHundred = decimal.NewFromInt(100)

// Engine evaluates the ordered tax stack of a TaxableLine. It is
// stateless, pure and total over valid input: negative and zero
// amounts flow through unchanged, and computing the same line twice
// yields bit-identical output.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// leafTax is one expanded stack position: groups are flattened to their
// children, each leaf remembering its nearest enclosing group.
type leafTax struct {
	def   *taxrate.TaxDefinition
	group *taxrate.TaxDefinition
}

// Compute evaluates the line's tax stack and returns raw per-tax
// amounts. Rounding is someone else's job: RawTotal here is the
// authoritative pre-rounding target the distributor reconciles against.
func (e *Engine) Compute(line *TaxableLine) *Result {
	leaves := flattenStack(line.Stack, nil)

	base := e.reverseIncludedTaxes(line, leaves)

	result := &Result{
		LineID:     line.LineID,
		Currency:   line.Currency,
		Precision:  line.Precision,
		BaseAmount: base,
		TaxAmounts: make([]*TaxAmount, 0, len(leaves)),
	}

	// Forward walk in sequence order. Plain percent always bases on the
	// original base; percent_of_previous_total bases on the running
	// total, which already includes every previously applied tax. That
	// difference is what makes sequence load-bearing.
	runningTotal := base
	for _, leaf := range leaves {
		amount := e.amountFor(leaf.def, base, runningTotal, line.Quantity)
		runningTotal = runningTotal.Add(amount)

		taxAmount := &TaxAmount{
			TaxID:          leaf.def.ID,
			TaxCode:        leaf.def.Code,
			RawAmount:      amount,
			RoundedAmount:  amount,
			RoundingMethod: resolveRoundingMethod(leaf.def, line.CompanyRoundingMethod),
		}
		if leaf.group != nil {
			taxAmount.GroupID = leaf.group.ID
		}
		result.TaxAmounts = append(result.TaxAmounts, taxAmount)
	}

	result.RawTotal = runningTotal
	result.TotalAmount = runningTotal
	return result
}

func (e *Engine) amountFor(def *taxrate.TaxDefinition, base, runningTotal, quantity decimal.Decimal) decimal.Decimal {
	switch def.Kind {
	case types.TaxKindPercent:
		return base.Mul(def.Rate).Div(oneHundred)
	case types.TaxKindFixedAmount:
		// Fixed taxes scale with quantity, not price.
		return def.Rate.Mul(quantity)
	case types.TaxKindPercentOfPreviousTotal:
		return runningTotal.Mul(def.Rate).Div(oneHundred)
	default:
		// Groups are flattened before the walk; a validated stack never
		// reaches here with any other kind.
		return decimal.Zero
	}
}

// reverseIncludedTaxes finds the pre-tax base. The forward walk over
// the included subset is linear in the base, so the walk is replayed
// symbolically as running = a*base + b and inverted exactly with one
// division: base = (gross - b) / a. This is what keeps the inclusion
// round-trip property intact for cascading and fixed included taxes
// alike.
func (e *Engine) reverseIncludedTaxes(line *TaxableLine, leaves []leafTax) decimal.Decimal {
	a := decimal.NewFromInt(1)
	b := decimal.Zero
	hasIncluded := false

	for _, leaf := range leaves {
		if !leaf.def.PriceIncluded {
			continue
		}
		hasIncluded = true

		switch leaf.def.Kind {
		case types.TaxKindPercent:
			a = a.Add(leaf.def.Rate.Div(oneHundred))
		case types.TaxKindPercentOfPreviousTotal:
			factor := decimal.NewFromInt(1).Add(leaf.def.Rate.Div(oneHundred))
			a = a.Mul(factor)
			b = b.Mul(factor)
		case types.TaxKindFixedAmount:
			b = b.Add(leaf.def.Rate.Mul(line.Quantity))
		}
	}

	if !hasIncluded {
		return line.GrossAmount
	}

	return line.GrossAmount.Sub(b).Div(a)
}

// flattenStack expands groups in place, children in the group's
// internal order, nested inside the parent's position.
func flattenStack(entries []*StackEntry, group *taxrate.TaxDefinition) []leafTax {
	leaves := make([]leafTax, 0, len(entries))
	for _, entry := range entries {
		if entry.Definition.Kind == types.TaxKindGroup {
			leaves = append(leaves, flattenStack(entry.Children, entry.Definition)...)
			continue
		}
		leaves = append(leaves, leafTax{def: entry.Definition, group: group})
	}
	return leaves
}

func resolveRoundingMethod(def *taxrate.TaxDefinition, companyDefault types.RoundingMethod) types.RoundingMethod {
	if def.RoundingMethod != nil {
		return *def.RoundingMethod
	}
	return companyDefault
}
