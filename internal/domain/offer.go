package domain

import "time"

// Route is an ordered origin→destination airport code pair. Offers that
// scope to routes match direction-sensitively.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Offer is a promotional discount rule. When none of the applicability
// slices are populated the offer applies to every flight.
type Offer struct {
	ID                 int64
	Title              string
	Description        string
	Discount           float64 // percentage, 0-100
	ValidFrom          time.Time
	ValidTo            time.Time
	IsActive           bool
	ApplicableFlights  []int64
	ApplicableAirlines []string
	ApplicableRoutes   []Route
	MinPriceCents      *int64
	MaxDiscountCents   *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PriceQuote is the result of evaluating offers against a flight.
// Computed fresh on every evaluation, never persisted.
type PriceQuote struct {
	OriginalCents   int64
	DiscountedCents int64
	DiscountCents   int64
	DiscountPercent float64
	AppliedOffer    *Offer
}
