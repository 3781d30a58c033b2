package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(555) 123-4567", "5551234567"},
		{"  +1 555.123.4567 ", "15551234567"},
		{"5551234567.0", "5551234567"},
		{"5551234567.00", "5551234567"},
		{"555.123.4567", "5551234567"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Digits(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	n, reason := Normalize("555-123-4567", MinRegistryDigits)
	assert.Empty(t, reason)
	assert.Equal(t, int64(5551234567), n)

	n, reason = Normalize("555-123-456", MinSuppressionDigits)
	assert.Empty(t, reason)
	assert.Equal(t, int64(555123456), n)

	_, reason = Normalize("555-123-456", MinRegistryDigits)
	assert.Equal(t, ReasonTooShort, reason)

	_, reason = Normalize("n/a", MinRegistryDigits)
	assert.Equal(t, ReasonEmpty, reason)

	_, reason = Normalize("99999999999999999999", MinRegistryDigits)
	assert.Equal(t, ReasonOverflow, reason)
}

func TestNormalize_TwoDigitsRejectedForAnyThreshold(t *testing.T) {
	for _, min := range []int{3, 9, 10, 15} {
		_, reason := Normalize("12-34", min)
		assert.Equal(t, ReasonTooShort, reason, "min=%d", min)
	}
}

func TestSplitSales(t *testing.T) {
	p, alt, reason := SplitSales("555-123-4567")
	require.Empty(t, reason)
	assert.Equal(t, int64(5551234567), p)
	assert.Nil(t, alt)

	p, alt, reason = SplitSales("5551234567 / 5559876543")
	require.Empty(t, reason)
	assert.Equal(t, int64(5551234567), p)
	require.NotNil(t, alt)
	assert.Equal(t, int64(5559876543), *alt)

	// 15 digits: primary only, the partial alternate is dropped.
	p, alt, reason = SplitSales("555123456712345")
	require.Empty(t, reason)
	assert.Equal(t, int64(5551234567), p)
	assert.Nil(t, alt)

	_, _, reason = SplitSales("555-1234")
	assert.Equal(t, ReasonTooShort, reason)

	_, _, reason = SplitSales("")
	assert.Equal(t, ReasonEmpty, reason)
}

func TestSalesNumber(t *testing.T) {
	n, reason := SalesNumber("1 (555) 123-4567")
	require.Empty(t, reason)
	assert.Equal(t, int64(1555123456), n)

	_, reason = SalesNumber("123456789")
	assert.Equal(t, ReasonTooShort, reason)
}
