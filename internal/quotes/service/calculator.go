package service

import (
	"math"

	"angebot_backend/internal/quotes/transport"
)

// Discount tiers for one-off deliveries, evaluated highest threshold first so
// that a boundary value takes the higher tier (15 countries → 22%).
const (
	frameworkDiscountPercent = 16

	tier1MinCountries = 15
	tier1Percent      = 22
	tier2MinCountries = 10
	tier2Percent      = 17
	tier3MinCountries = 5
	tier3Percent      = 9
	tier4MinCountries = 2
	tier4Percent      = 4
)

// roundPrice rounds to the nearest whole currency unit. Ties round away from
// zero (math.Round), which is the documented behavior for all derived prices.
func roundPrice(v float64) int64 {
	return int64(math.Round(v))
}

// discountPercent returns the discount for the given delivery mode and
// country count. Framework contracts trade a flat discount for presumed
// repeat business; one-off deliveries earn a volume discount per country.
func discountPercent(deliveryMode transport.DeliveryMode, countryCount int) int64 {
	if deliveryMode == transport.DeliveryModeFramework {
		return frameworkDiscountPercent
	}

	switch {
	case countryCount >= tier1MinCountries:
		return tier1Percent
	case countryCount >= tier2MinCountries:
		return tier2Percent
	case countryCount >= tier3MinCountries:
		return tier3Percent
	case countryCount >= tier4MinCountries:
		return tier4Percent
	default:
		return 0
	}
}

// CalculatePrice computes the priced breakdown for a set of resolved module
// prices (overrides already applied by the caller), a country count, and a
// delivery mode.
//
// The function is pure and total over its domain: it performs no validation
// (non-negative inputs are the caller's contract) and has no error paths.
// An empty price list yields a zero base price; zero countries yield a zero
// grand total regardless of base price.
func CalculatePrice(modulePrices []int64, countryCount int, deliveryMode transport.DeliveryMode) transport.Breakdown {
	var basePrice int64
	for _, price := range modulePrices {
		basePrice += price
	}

	discount := discountPercent(deliveryMode, countryCount)
	pricePerCountry := roundPrice(float64(basePrice) * (1 - float64(discount)/100))

	return transport.Breakdown{
		BasePrice:       basePrice,
		DiscountPercent: discount,
		PricePerCountry: pricePerCountry,
		GrandTotal:      pricePerCountry * int64(countryCount),
		CountryCount:    countryCount,
	}
}
