package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

// LineBuilder normalizes source lines into TaxableLines. It owns the
// two fail-fast validations the engine must never see: missing price
// and unresolvable currency precision.
type LineBuilder struct {
	registry *taxrate.Registry
}

func NewLineBuilder(registry *taxrate.Registry) *LineBuilder {
	return &LineBuilder{registry: registry}
}

// Build converts one source line into the canonical engine input.
// Pure and side-effect free: the same source and context always yield
// the same line.
func (b *LineBuilder) Build(src SourceLine, cctx ComputationContext) (*TaxableLine, error) {
	if err := cctx.Validate(); err != nil {
		return nil, err
	}

	if src.UnitPrice == nil && !src.Quantity.IsZero() {
		return nil, ierr.NewError("line has quantity but no price").
			WithHintf("Line '%s' has quantity %s and no unit price", src.LineID, src.Quantity.String()).
			Mark(ierr.ErrMissingPrice)
	}

	if src.DiscountFraction.IsNegative() || src.DiscountFraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ierr.NewError("discount fraction out of range").
			WithHintf("Line '%s' discount fraction must be between 0 and 1", src.LineID).
			Mark(ierr.ErrValidation)
	}

	precision, err := types.ResolveCurrencyPrecision(src.Currency, cctx.PrecisionOverrides)
	if err != nil {
		return nil, err
	}

	stack, err := b.resolveStack(src.TaxCodes, cctx)
	if err != nil {
		return nil, err
	}

	unitPrice := decimal.Zero
	if src.UnitPrice != nil {
		unitPrice = *src.UnitPrice
	}

	// gross = quantity * unit_price * (1 - discount), computed exactly
	// once; everything downstream treats it as read-only input.
	gross := src.Quantity.Mul(unitPrice).Mul(decimal.NewFromInt(1).Sub(src.DiscountFraction))

	return &TaxableLine{
		LineID:                src.LineID,
		Quantity:              src.Quantity,
		UnitPrice:             unitPrice,
		DiscountFraction:      src.DiscountFraction,
		Currency:              src.Currency,
		Precision:             precision,
		GrossAmount:           gross,
		Stack:                 stack,
		CompanyRoundingMethod: cctx.DefaultRoundingMethod,
		RoundingMode:          cctx.RoundingMode,
	}, nil
}

// resolveStack resolves codes through the registry, applies the
// applicability predicate, and materializes group children so the
// engine can walk the stack without registry access.
func (b *LineBuilder) resolveStack(codes []string, cctx ComputationContext) ([]*StackEntry, error) {
	defs, err := b.registry.ResolveStack(codes)
	if err != nil {
		return nil, err
	}

	entries := make([]*StackEntry, 0, len(defs))
	for _, def := range defs {
		if cctx.Applicable != nil && !cctx.Applicable(def) {
			continue
		}
		entry, err := b.materialize(def)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (b *LineBuilder) materialize(def *taxrate.TaxDefinition) (*StackEntry, error) {
	entry := &StackEntry{Definition: def}
	if def.Kind != types.TaxKindGroup {
		return entry, nil
	}

	children, err := b.registry.ResolveChildren(def)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childEntry, err := b.materialize(child)
		if err != nil {
			return nil, err
		}
		entry.Children = append(entry.Children, childEntry)
	}
	return entry, nil
}
