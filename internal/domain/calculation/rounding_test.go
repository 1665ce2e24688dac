package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

func taxAmount(taxID string, raw string, method types.RoundingMethod) *TaxAmount {
	return &TaxAmount{
		TaxID:          taxID,
		TaxCode:        taxID,
		RawAmount:      decimal.RequireFromString(raw),
		RoundingMethod: method,
	}
}

func TestDistributor_PerLineRounding(t *testing.T) {
	result := &Result{
		LineID:     "line-1",
		Precision:  2,
		BaseAmount: decimal.RequireFromString("100.005"),
		TaxAmounts: []*TaxAmount{
			taxAmount("vat", "15.0049", types.RoundingMethodPerLine),
			taxAmount("levy", "2.345", types.RoundingMethodPerLine),
		},
	}

	require.NoError(t, NewDistributor().Round(result, types.RoundingModeHalfUp))

	assert.True(t, result.RoundedBase.Equal(decimal.RequireFromString("100.01")))
	assert.True(t, result.TaxAmounts[0].RoundedAmount.Equal(decimal.RequireFromString("15.00")))
	assert.True(t, result.TaxAmounts[1].RoundedAmount.Equal(decimal.RequireFromString("2.35")))
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("117.36")))
	assert.False(t, result.PendingDocumentRounding)
}

func TestDistributor_GlobalTaxPassesThroughRaw(t *testing.T) {
	result := &Result{
		LineID:     "line-1",
		Precision:  2,
		BaseAmount: decimal.RequireFromString("10.00"),
		TaxAmounts: []*TaxAmount{
			taxAmount("vat", "0.333", types.RoundingMethodGlobal),
		},
	}

	require.NoError(t, NewDistributor().Round(result, types.RoundingModeHalfUp))

	// Raw amount survives untouched; the line stays provisional until
	// the aggregator settles the document.
	assert.True(t, result.TaxAmounts[0].RoundedAmount.Equal(decimal.RequireFromString("0.333")))
	assert.True(t, result.PendingDocumentRounding)
}

func TestDistributor_UnresolvedPrecisionFails(t *testing.T) {
	result := &Result{
		LineID:    "line-1",
		Precision: -1,
	}

	err := NewDistributor().Round(result, types.RoundingModeHalfUp)
	require.Error(t, err)
	assert.True(t, ierr.IsUnresolvedPrecision(err))
}

func TestDistributor_InvalidModeFails(t *testing.T) {
	result := &Result{
		LineID:    "line-1",
		Precision: 2,
	}

	err := NewDistributor().Round(result, types.RoundingMode("nearest"))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestDistributor_HalfEvenMode(t *testing.T) {
	result := &Result{
		LineID:     "line-1",
		Precision:  2,
		BaseAmount: decimal.RequireFromString("100.00"),
		TaxAmounts: []*TaxAmount{
			taxAmount("a", "0.125", types.RoundingMethodPerLine),
			taxAmount("b", "0.135", types.RoundingMethodPerLine),
		},
	}

	require.NoError(t, NewDistributor().Round(result, types.RoundingModeHalfEven))

	// Banker's rounding: .125 down to the even .12, .135 up to the even .14.
	assert.True(t, result.TaxAmounts[0].RoundedAmount.Equal(decimal.RequireFromString("0.12")))
	assert.True(t, result.TaxAmounts[1].RoundedAmount.Equal(decimal.RequireFromString("0.14")))
}

func TestDistributor_ZeroPrecisionCurrency(t *testing.T) {
	result := &Result{
		LineID:     "line-1",
		Precision:  0,
		BaseAmount: decimal.RequireFromString("1000.4"),
		TaxAmounts: []*TaxAmount{
			taxAmount("vat", "100.5", types.RoundingMethodPerLine),
		},
	}

	require.NoError(t, NewDistributor().Round(result, types.RoundingModeHalfUp))

	assert.True(t, result.RoundedBase.Equal(decimal.RequireFromString("1000")))
	assert.True(t, result.TaxAmounts[0].RoundedAmount.Equal(decimal.RequireFromString("101")))
}
