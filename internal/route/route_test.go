package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCountry_Nigeria(t *testing.T) {
	d := ForCountry("NG")

	assert.Equal(t, Regional, d.Processor)
	assert.Equal(t, "NGN", d.Currency)
}

func TestForCountry_CardNetwork(t *testing.T) {
	cases := []struct {
		country  string
		currency string
	}{
		{"GB", "GBP"},
		{"US", "USD"},
		{"CA", "CAD"},
		{"DE", "EUR"},
		{"IE", "EUR"},
		{"ZA", "ZAR"},
	}

	for _, tc := range cases {
		d := ForCountry(tc.country)
		assert.Equal(t, CardNetwork, d.Processor, "country %s", tc.country)
		assert.Equal(t, tc.currency, d.Currency, "country %s", tc.country)
	}
}

func TestForCountry_UnrecognizedFallsOpen(t *testing.T) {
	for _, cc := range []string{"BR", "JP", "XX", ""} {
		d := ForCountry(cc)
		assert.Equal(t, Regional, d.Processor, "country %q", cc)
		assert.Equal(t, "NGN", d.Currency, "country %q", cc)
	}
}

func TestForCountry_CaseInsensitive(t *testing.T) {
	d := ForCountry("gb")

	assert.Equal(t, CardNetwork, d.Processor)
	assert.Equal(t, "GBP", d.Currency)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000000), MinorUnits(20000))
	assert.Equal(t, int64(1050), MinorUnits(10.50))
	assert.Equal(t, int64(1), MinorUnits(0.01))
	assert.Equal(t, int64(0), MinorUnits(0))
}
