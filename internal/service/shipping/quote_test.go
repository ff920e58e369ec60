package shipping

import (
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteByZone(t *testing.T) {
	cases := []struct {
		country  string
		postal   string
		standard string
		nextDay  string
		days     string
	}{
		{"US", "10001", "5.99", "24.99", "3-5 days"},
		{"gb", "SW1A", "8.99", "34.99", "4-6 days"},
		{"DE", "10115", "9.99", "39.99", "5-7 days"},
		{"JP", "100-0001", "12.99", "49.99", "7-10 days"},
		{"NZ", "6011", "14.99", "59.99", "8-12 days"},
		{"BR", "01000", "5.99", "24.99", "3-5 days"},
		{"US", "90210", "10.99", "29.99", "3-5 days"},
	}
	for _, tc := range cases {
		t.Run(tc.country+"/"+tc.postal, func(t *testing.T) {
			rates, err := Quote(tc.country, tc.postal)
			require.NoError(t, err)
			require.Len(t, rates, 3)
			assert.Equal(t, "standard", rates[0].ID)
			assert.Equal(t, tc.standard, rates[0].Cost.String())
			assert.Equal(t, tc.nextDay, rates[2].Cost.String())
			assert.Equal(t, tc.days, rates[0].EstimatedDays)
		})
	}
}

func TestQuoteLabels(t *testing.T) {
	rates, err := Quote("CA", "")
	require.NoError(t, err)
	assert.Equal(t, "Express Shipping", rates[1].Name)
	assert.Equal(t, "Delivery in 2-3 days", rates[1].Description)
	assert.Equal(t, "1-2 days", rates[2].EstimatedDays)
}

func TestQuoteRequiresCountry(t *testing.T) {
	_, err := Quote(" ", "123")
	assert.True(t, domain.IsValidation(err))
}
