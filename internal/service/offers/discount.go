package offers

import (
	"slices"
	"time"

	"github.com/skyfare/skyfare/internal/domain"
)

// BestPrice evaluates every offer against the flight and returns a
// quote for the single best one. Evaluation is per seat: callers
// multiply by passenger count themselves.
//
// An offer survives only if it is active, now falls inside its
// validity window (boundaries included), its scoping matches the
// flight, and the flight price meets its minimum. The winning offer is
// the one with the strictly largest discount amount; on equal amounts
// the earlier offer keeps the win. The reported percentage is derived
// from the final, possibly capped, amount.
//
// Missing optional offer fields mean "no constraint". BestPrice never
// fails and never mutates its inputs.
func BestPrice(flight *domain.Flight, offers []domain.Offer, now time.Time) domain.PriceQuote {
	var bestOffer *domain.Offer
	var maxDiscount int64

	for i := range offers {
		offer := &offers[i]
		if !offer.IsActive {
			continue
		}
		if now.Before(offer.ValidFrom) || now.After(offer.ValidTo) {
			continue
		}
		if !applicable(flight, offer) {
			continue
		}
		if offer.MinPriceCents != nil && flight.PriceCents < *offer.MinPriceCents {
			continue
		}

		discount := int64(float64(flight.PriceCents) * offer.Discount / 100)
		if offer.MaxDiscountCents != nil && discount > *offer.MaxDiscountCents {
			discount = *offer.MaxDiscountCents
		}

		if discount > maxDiscount {
			maxDiscount = discount
			bestOffer = offer
		}
	}

	quote := domain.PriceQuote{
		OriginalCents:   flight.PriceCents,
		DiscountedCents: flight.PriceCents - maxDiscount,
		DiscountCents:   maxDiscount,
		AppliedOffer:    bestOffer,
	}
	if maxDiscount > 0 {
		quote.DiscountPercent = float64(maxDiscount) / float64(flight.PriceCents) * 100
	}
	return quote
}

// applicable reports whether the offer's scoping admits the flight.
// Every populated scoping field must pass; no populated fields means
// the offer applies to all flights.
func applicable(flight *domain.Flight, offer *domain.Offer) bool {
	if len(offer.ApplicableFlights) > 0 && !slices.Contains(offer.ApplicableFlights, flight.ID) {
		return false
	}
	if len(offer.ApplicableAirlines) > 0 && !slices.Contains(offer.ApplicableAirlines, flight.AirlineCode) {
		return false
	}
	if len(offer.ApplicableRoutes) > 0 {
		match := false
		for _, route := range offer.ApplicableRoutes {
			if route.Origin == flight.OriginCode && route.Destination == flight.DestinationCode {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
