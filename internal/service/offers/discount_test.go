package offers

import (
	"testing"
	"time"

	"github.com/skyfare/skyfare/internal/domain"
	"github.com/stretchr/testify/assert"
)

func cents(v int64) *int64 {
	return &v
}

func testFlight() *domain.Flight {
	return &domain.Flight{
		ID:              4,
		FlightNumber:    "SF204",
		AirlineCode:     "AA",
		OriginCode:      "JFK",
		DestinationCode: "LAX",
		DepartureTime:   time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC),
		ArrivalTime:     time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		PriceCents:      10000, // $100
	}
}

func activeOffer(id int64, discount float64) domain.Offer {
	return domain.Offer{
		ID:        id,
		Title:     "Test offer",
		Discount:  discount,
		ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func TestBestPrice_NoOffers(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	quote := BestPrice(flight, nil, now)

	assert.Equal(t, int64(10000), quote.OriginalCents)
	assert.Equal(t, int64(10000), quote.DiscountedCents)
	assert.Equal(t, int64(0), quote.DiscountCents)
	assert.Equal(t, float64(0), quote.DiscountPercent)
	assert.Nil(t, quote.AppliedOffer)
}

func TestBestPrice_InactiveOfferSkipped(t *testing.T) {
	flight := testFlight()
	offer := activeOffer(1, 20)
	offer.IsActive = false
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	quote := BestPrice(flight, []domain.Offer{offer}, now)

	assert.Nil(t, quote.AppliedOffer)
	assert.Equal(t, int64(10000), quote.DiscountedCents)
}

func TestBestPrice_ValidityBoundariesInclusive(t *testing.T) {
	flight := testFlight()
	offer := activeOffer(1, 10)

	testCases := []struct {
		name    string
		now     time.Time
		applies bool
	}{
		{"exactly validFrom", offer.ValidFrom, true},
		{"exactly validTo", offer.ValidTo, true},
		{"one second before validFrom", offer.ValidFrom.Add(-time.Second), false},
		{"one second after validTo", offer.ValidTo.Add(time.Second), false},
		{"inside window", offer.ValidFrom.Add(24 * time.Hour), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote := BestPrice(flight, []domain.Offer{offer}, tc.now)
			if tc.applies {
				assert.NotNil(t, quote.AppliedOffer)
				assert.Equal(t, int64(1000), quote.DiscountCents)
			} else {
				assert.Nil(t, quote.AppliedOffer)
				assert.Equal(t, int64(0), quote.DiscountCents)
			}
		})
	}
}

func TestBestPrice_LargerAmountBeatsLargerPercentage(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offerA := activeOffer(1, 20) // $20 off, uncapped
	offerB := activeOffer(2, 50) // 50% but capped at $10
	offerB.MaxDiscountCents = cents(1000)

	quote := BestPrice(flight, []domain.Offer{offerB, offerA}, now)

	assert.NotNil(t, quote.AppliedOffer)
	assert.Equal(t, int64(1), quote.AppliedOffer.ID)
	assert.Equal(t, int64(2000), quote.DiscountCents)
	assert.Equal(t, int64(8000), quote.DiscountedCents)
}

func TestBestPrice_FirstOfferWinsTies(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	first := activeOffer(1, 10)
	second := activeOffer(2, 10)

	quote := BestPrice(flight, []domain.Offer{first, second}, now)

	assert.NotNil(t, quote.AppliedOffer)
	assert.Equal(t, int64(1), quote.AppliedOffer.ID)
}

func TestBestPrice_PercentDerivedFromCappedAmount(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offer := activeOffer(1, 50)
	offer.MaxDiscountCents = cents(1000)

	quote := BestPrice(flight, []domain.Offer{offer}, now)

	// 10% of the price after capping, not the offer's 50%.
	assert.Equal(t, int64(1000), quote.DiscountCents)
	assert.InDelta(t, 10.0, quote.DiscountPercent, 0.001)
}

func TestBestPrice_AirlineScopeExcludes(t *testing.T) {
	flight := testFlight()
	flight.AirlineCode = "DL"
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offer := activeOffer(1, 25)
	offer.ApplicableAirlines = []string{"AA"}

	quote := BestPrice(flight, []domain.Offer{offer}, now)

	assert.Nil(t, quote.AppliedOffer)
	assert.Equal(t, int64(10000), quote.DiscountedCents)
}

func TestBestPrice_FlightScope(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offer := activeOffer(1, 25)
	offer.ApplicableFlights = []int64{99}

	quote := BestPrice(flight, []domain.Offer{offer}, now)
	assert.Nil(t, quote.AppliedOffer)

	offer.ApplicableFlights = []int64{4}
	quote = BestPrice(flight, []domain.Offer{offer}, now)
	assert.NotNil(t, quote.AppliedOffer)
}

func TestBestPrice_RouteScopeIsDirectional(t *testing.T) {
	flight := testFlight() // JFK -> LAX
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offer := activeOffer(1, 25)
	offer.ApplicableRoutes = []domain.Route{{Origin: "LAX", Destination: "JFK"}}

	quote := BestPrice(flight, []domain.Offer{offer}, now)
	assert.Nil(t, quote.AppliedOffer)

	offer.ApplicableRoutes = []domain.Route{{Origin: "JFK", Destination: "LAX"}}
	quote = BestPrice(flight, []domain.Offer{offer}, now)
	assert.NotNil(t, quote.AppliedOffer)
}

func TestBestPrice_MinPriceRequirement(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	offer := activeOffer(1, 25)
	offer.MinPriceCents = cents(20000)

	quote := BestPrice(flight, []domain.Offer{offer}, now)
	assert.Nil(t, quote.AppliedOffer)

	offer.MinPriceCents = cents(10000)
	quote = BestPrice(flight, []domain.Offer{offer}, now)
	assert.NotNil(t, quote.AppliedOffer)
}

func TestBestPrice_NeverNegative(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, discount := range []float64{0, 1, 33.3, 50, 99, 100} {
		for _, cap := range []*int64{nil, cents(0), cents(1), cents(10000), cents(999999)} {
			flight := testFlight()
			offer := activeOffer(1, discount)
			offer.MaxDiscountCents = cap

			quote := BestPrice(flight, []domain.Offer{offer}, now)

			assert.GreaterOrEqual(t, quote.DiscountedCents, int64(0))
			assert.LessOrEqual(t, quote.DiscountCents, flight.PriceCents)
			assert.Equal(t, flight.PriceCents, quote.DiscountedCents+quote.DiscountCents)
		}
	}
}

func TestBestPrice_DoesNotMutateInputs(t *testing.T) {
	flight := testFlight()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	offers := []domain.Offer{activeOffer(1, 20), activeOffer(2, 30)}

	_ = BestPrice(flight, offers, now)

	assert.Equal(t, int64(10000), flight.PriceCents)
	assert.Equal(t, float64(20), offers[0].Discount)
	assert.Equal(t, float64(30), offers[1].Discount)
}
