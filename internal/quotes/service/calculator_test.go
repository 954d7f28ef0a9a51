package service

import (
	"testing"

	"angebot_backend/internal/quotes/transport"
)

func TestCalculatePrice_VolumeDiscountTiers(t *testing.T) {
	// Boundary values take the higher tier: tiers are checked descending.
	cases := []struct {
		countryCount int
		wantPercent  int64
	}{
		{0, 0},
		{1, 0},
		{2, 4},
		{4, 4},
		{5, 9},
		{9, 9},
		{10, 17},
		{14, 17},
		{15, 22},
		{20, 22},
	}

	for _, tc := range cases {
		got := CalculatePrice([]int64{1000}, tc.countryCount, transport.DeliveryModeOnce)
		if got.DiscountPercent != tc.wantPercent {
			t.Errorf("countryCount=%d: expected discount %d%%, got %d%%",
				tc.countryCount, tc.wantPercent, got.DiscountPercent)
		}
	}
}

func TestCalculatePrice_FrameworkContractFlatDiscount(t *testing.T) {
	for _, countryCount := range []int{0, 1, 2, 5, 10, 15, 30} {
		got := CalculatePrice([]int64{1000, 500}, countryCount, transport.DeliveryModeFramework)
		if got.DiscountPercent != 16 {
			t.Errorf("countryCount=%d: expected flat 16%%, got %d%%", countryCount, got.DiscountPercent)
		}
	}
}

func TestCalculatePrice_ThreeCountriesOnce(t *testing.T) {
	got := CalculatePrice([]int64{2300, 1600, 900}, 3, transport.DeliveryModeOnce)

	if got.BasePrice != 4800 {
		t.Fatalf("expected base price 4800, got %d", got.BasePrice)
	}
	if got.DiscountPercent != 4 {
		t.Fatalf("expected discount 4%%, got %d%%", got.DiscountPercent)
	}
	if got.PricePerCountry != 4608 {
		t.Fatalf("expected price per country 4608, got %d", got.PricePerCountry)
	}
	if got.GrandTotal != 13824 {
		t.Fatalf("expected grand total 13824, got %d", got.GrandTotal)
	}
	if got.CountryCount != 3 {
		t.Fatalf("expected country count 3, got %d", got.CountryCount)
	}
}

func TestCalculatePrice_TopTierOnce(t *testing.T) {
	got := CalculatePrice([]int64{2300}, 20, transport.DeliveryModeOnce)

	if got.BasePrice != 2300 {
		t.Fatalf("expected base price 2300, got %d", got.BasePrice)
	}
	if got.DiscountPercent != 22 {
		t.Fatalf("expected discount 22%%, got %d%%", got.DiscountPercent)
	}
	if got.PricePerCountry != 1794 {
		t.Fatalf("expected price per country 1794, got %d", got.PricePerCountry)
	}
	if got.GrandTotal != 35880 {
		t.Fatalf("expected grand total 35880, got %d", got.GrandTotal)
	}
}

func TestCalculatePrice_FrameworkSingleCountry(t *testing.T) {
	got := CalculatePrice([]int64{1000, 1000}, 1, transport.DeliveryModeFramework)

	if got.BasePrice != 2000 {
		t.Fatalf("expected base price 2000, got %d", got.BasePrice)
	}
	if got.PricePerCountry != 1680 {
		t.Fatalf("expected price per country 1680, got %d", got.PricePerCountry)
	}
	if got.GrandTotal != 1680 {
		t.Fatalf("expected grand total 1680, got %d", got.GrandTotal)
	}
}

func TestCalculatePrice_NoModules(t *testing.T) {
	got := CalculatePrice(nil, 5, transport.DeliveryModeOnce)

	if got.BasePrice != 0 {
		t.Fatalf("expected base price 0, got %d", got.BasePrice)
	}
	if got.DiscountPercent != 9 {
		t.Fatalf("expected discount 9%%, got %d%%", got.DiscountPercent)
	}
	if got.PricePerCountry != 0 || got.GrandTotal != 0 {
		t.Fatalf("expected zero prices, got perCountry=%d total=%d", got.PricePerCountry, got.GrandTotal)
	}
}

func TestCalculatePrice_ZeroCountries(t *testing.T) {
	got := CalculatePrice([]int64{5000}, 0, transport.DeliveryModeOnce)

	if got.BasePrice != 5000 {
		t.Fatalf("expected base price 5000, got %d", got.BasePrice)
	}
	if got.GrandTotal != 0 {
		t.Fatalf("expected grand total 0 for zero countries, got %d", got.GrandTotal)
	}
	if got.CountryCount != 0 {
		t.Fatalf("expected country count 0, got %d", got.CountryCount)
	}
}

func TestCalculatePrice_GrandTotalInvariant(t *testing.T) {
	prices := [][]int64{
		{100}, {2300, 1600, 900}, {1, 1, 1}, {999999}, nil,
	}
	for _, modulePrices := range prices {
		for countryCount := 0; countryCount <= 20; countryCount++ {
			for _, mode := range []transport.DeliveryMode{transport.DeliveryModeOnce, transport.DeliveryModeFramework} {
				got := CalculatePrice(modulePrices, countryCount, mode)
				if got.GrandTotal != got.PricePerCountry*int64(got.CountryCount) {
					t.Fatalf("invariant violated: total=%d perCountry=%d countries=%d",
						got.GrandTotal, got.PricePerCountry, got.CountryCount)
				}
			}
		}
	}
}

func TestCalculatePrice_Deterministic(t *testing.T) {
	first := CalculatePrice([]int64{2300, 1600}, 7, transport.DeliveryModeOnce)
	second := CalculatePrice([]int64{2300, 1600}, 7, transport.DeliveryModeOnce)

	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestCalculatePrice_RoundsHalfAwayFromZero(t *testing.T) {
	// base 50, discount 9% → 45.5 rounds up to 46.
	got := CalculatePrice([]int64{50}, 5, transport.DeliveryModeOnce)
	if got.PricePerCountry != 46 {
		t.Fatalf("expected 45.5 to round to 46, got %d", got.PricePerCountry)
	}
}
