package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

func newTestBuilder(t *testing.T, defs ...*taxrate.TaxDefinition) *LineBuilder {
	t.Helper()
	registry, err := taxrate.NewRegistry(defs)
	require.NoError(t, err)
	return NewLineBuilder(registry)
}

func TestLineBuilder_GrossAmount(t *testing.T) {
	price := decimal.RequireFromString("19.99")
	line, err := newTestBuilder(t).Build(SourceLine{
		LineID:           "line-1",
		Quantity:         decimal.RequireFromString("3"),
		UnitPrice:        &price,
		DiscountFraction: decimal.RequireFromString("0.25"),
		Currency:         "usd",
	}, testContext())
	require.NoError(t, err)

	// 3 * 19.99 * 0.75, kept raw until rounding
	assert.True(t, line.GrossAmount.Equal(decimal.RequireFromString("44.9775")))
	assert.EqualValues(t, 2, line.Precision)
}

func TestLineBuilder_MissingPrice(t *testing.T) {
	_, err := newTestBuilder(t).Build(SourceLine{
		LineID:   "line-1",
		Quantity: decimal.RequireFromString("2"),
		Currency: "usd",
	}, testContext())

	require.Error(t, err)
	assert.True(t, ierr.IsMissingPrice(err))
}

func TestLineBuilder_NoPriceZeroQuantityAllowed(t *testing.T) {
	// A line with neither price nor quantity is a legitimate
	// informational line, not an error.
	line, err := newTestBuilder(t).Build(SourceLine{
		LineID:   "line-1",
		Currency: "usd",
	}, testContext())

	require.NoError(t, err)
	assert.True(t, line.GrossAmount.IsZero())
}

func TestLineBuilder_UnknownCurrency(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	_, err := newTestBuilder(t).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "wuf",
	}, testContext())

	require.Error(t, err)
	assert.True(t, ierr.IsUnknownCurrency(err))
}

func TestLineBuilder_PrecisionOverride(t *testing.T) {
	cctx := testContext()
	cctx.PrecisionOverrides = map[string]int32{"wuf": 4}

	price := decimal.RequireFromString("10.00")
	line, err := newTestBuilder(t).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "wuf",
	}, cctx)

	require.NoError(t, err)
	assert.EqualValues(t, 4, line.Precision)
}

func TestLineBuilder_DiscountOutOfRange(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	for _, discount := range []string{"-0.1", "1.5"} {
		_, err := newTestBuilder(t).Build(SourceLine{
			LineID:           "line-1",
			Quantity:         decimal.NewFromInt(1),
			UnitPrice:        &price,
			DiscountFraction: decimal.RequireFromString(discount),
			Currency:         "usd",
		}, testContext())

		require.Error(t, err, "discount %s", discount)
		assert.True(t, ierr.IsValidation(err))
	}
}

func TestLineBuilder_UnknownTaxCode(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	_, err := newTestBuilder(t).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "usd",
		TaxCodes:  []string{"NOPE"},
	}, testContext())

	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestLineBuilder_ApplicabilityPredicate(t *testing.T) {
	cctx := testContext()
	cctx.Applicable = func(def *taxrate.TaxDefinition) bool {
		return def.Code != "EXEMPT"
	}

	price := decimal.RequireFromString("10.00")
	line, err := newTestBuilder(t,
		percentDef("VAT", "20", 1),
		percentDef("EXEMPT", "5", 2),
	).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "usd",
		TaxCodes:  []string{"VAT", "EXEMPT"},
	}, cctx)

	require.NoError(t, err)
	require.Len(t, line.Stack, 1)
	assert.Equal(t, "VAT", line.Stack[0].Definition.Code)
}

func TestLineBuilder_StackOrderedBySequence(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	line, err := newTestBuilder(t,
		percentDef("SECOND", "5", 20),
		percentDef("FIRST", "10", 10),
	).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "usd",
		TaxCodes:  []string{"SECOND", "FIRST"},
	}, testContext())

	require.NoError(t, err)
	require.Len(t, line.Stack, 2)
	assert.Equal(t, "FIRST", line.Stack[0].Definition.Code)
	assert.Equal(t, "SECOND", line.Stack[1].Definition.Code)
}

func TestLineBuilder_GroupMaterialized(t *testing.T) {
	group := &taxrate.TaxDefinition{
		ID:         "taxgrp_BOTH",
		Code:       "BOTH",
		Name:       "both",
		Kind:       types.TaxKindGroup,
		Sequence:   1,
		ChildCodes: []string{"VAT", "LEVY"},
	}

	price := decimal.RequireFromString("10.00")
	line, err := newTestBuilder(t,
		percentDef("VAT", "20", 1),
		percentDef("LEVY", "2", 2),
		group,
	).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "usd",
		TaxCodes:  []string{"BOTH"},
	}, testContext())

	require.NoError(t, err)
	require.Len(t, line.Stack, 1)
	require.Len(t, line.Stack[0].Children, 2)
	assert.Equal(t, "VAT", line.Stack[0].Children[0].Definition.Code)
	assert.Equal(t, "LEVY", line.Stack[0].Children[1].Definition.Code)
}

func TestLineBuilder_InvalidContext(t *testing.T) {
	cctx := ComputationContext{
		DefaultRoundingMethod: types.RoundingMethod("sometimes"),
		RoundingMode:          types.RoundingModeHalfUp,
	}

	price := decimal.RequireFromString("10.00")
	_, err := newTestBuilder(t).Build(SourceLine{
		LineID:    "line-1",
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: &price,
		Currency:  "usd",
	}, cctx)

	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
