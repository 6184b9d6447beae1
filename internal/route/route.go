// Package route selects a payment processor and settlement currency from a
// caller's country. It is a pure lookup with no side effects.
package route

import (
	"math"
	"strings"
)

type Processor string

const (
	// Regional is the Paystack-style processor that settles in NGN.
	Regional Processor = "regional"
	// CardNetwork is the Stripe-style processor for card-network countries.
	CardNetwork Processor = "card-network"
)

type Decision struct {
	Processor Processor
	Currency  string
}

// cardNetworkCurrencies enumerates the countries we route to the card
// network, with their settlement currency.
var cardNetworkCurrencies = map[string]string{
	"GB": "GBP",
	"US": "USD",
	"CA": "CAD",
	"AU": "AUD",
	"NZ": "NZD",
	"ZA": "ZAR",
	"IE": "EUR",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"PT": "EUR",
	"AT": "EUR",
	"BE": "EUR",
	"FI": "EUR",
}

// ForCountry routes an ISO 3166 country code to a processor. Unrecognized
// countries fall through to the regional processor rather than erroring;
// the regional gateway accepts international cards, so an unknown country
// degrades to a worse checkout rather than a blocked one.
func ForCountry(country string) Decision {
	cc := strings.ToUpper(strings.TrimSpace(country))
	if cur, ok := cardNetworkCurrencies[cc]; ok {
		return Decision{Processor: CardNetwork, Currency: cur}
	}
	return Decision{Processor: Regional, Currency: "NGN"}
}

// MinorUnits converts a major-unit amount (naira, pounds, dollars) into the
// processor's minor unit (kobo, pence, cents). All supported currencies use
// a 2-decimal minor unit.
func MinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}
