package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/vidinfra/taxengine/internal/errors"
)

func TestResolveCurrencyPrecision(t *testing.T) {
	testCases := []struct {
		currency  string
		overrides map[string]int32
		expected  int32
		expectErr bool
	}{
		{currency: "usd", expected: 2},
		{currency: "USD", expected: 2},
		{currency: "jpy", expected: 0},
		{currency: "bhd", expected: 3},
		{currency: "usd", overrides: map[string]int32{"usd": 4}, expected: 4},
		{currency: "wuf", overrides: map[string]int32{"wuf": 2}, expected: 2},
		{currency: "wuf", expectErr: true},
		{currency: "", expectErr: true},
	}

	for _, tc := range testCases {
		precision, err := ResolveCurrencyPrecision(tc.currency, tc.overrides)
		if tc.expectErr {
			require.Error(t, err, "currency %q", tc.currency)
			assert.True(t, ierr.IsUnknownCurrency(err))
			continue
		}
		require.NoError(t, err, "currency %q", tc.currency)
		assert.Equal(t, tc.expected, precision, "currency %q", tc.currency)
	}
}

func TestGetCurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", GetCurrencySymbol("usd"))
	assert.Equal(t, "$", GetCurrencySymbol("USD"))
	assert.Equal(t, "€", GetCurrencySymbol("eur"))
	// unknown codes fall back to the code itself; symbols are display
	// only and never feed computation
	assert.Equal(t, "xyz", GetCurrencySymbol("xyz"))
}
