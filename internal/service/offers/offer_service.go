package offers

import (
	"context"
	"time"

	"github.com/skyfare/skyfare/internal/domain"
	"github.com/skyfare/skyfare/internal/repository"
)

type OfferUseCase interface {
	List(ctx context.Context) ([]domain.Offer, error)
	Quote(ctx context.Context, flightID int64) (*domain.PriceQuote, error)
	QuoteFlight(ctx context.Context, flight *domain.Flight) (*domain.PriceQuote, error)
}

type Cache interface {
	GetOffers(ctx context.Context) ([]domain.Offer, error)
	SetOffers(ctx context.Context, offers []domain.Offer) error
}

type OfferService struct {
	repo    repository.OfferRepository
	flights repository.FlightRepository
	cache   Cache
	now     func() time.Time
}

type OfferServiceOption func(*OfferService)

// WithClock overrides the evaluation instant source. Tests use it to
// pin validity-window checks.
func WithClock(now func() time.Time) OfferServiceOption {
	return func(s *OfferService) {
		s.now = now
	}
}

func NewOfferService(repo repository.OfferRepository, flights repository.FlightRepository, cache Cache, opts ...OfferServiceOption) *OfferService {
	service := &OfferService{
		repo:    repo,
		flights: flights,
		cache:   cache,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *OfferService) List(ctx context.Context) ([]domain.Offer, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetOffers(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	offers, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOffers(ctx, offers)
	}
	return offers, nil
}

func (s *OfferService) Quote(ctx context.Context, flightID int64) (*domain.PriceQuote, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return s.QuoteFlight(ctx, flight)
}

func (s *OfferService) QuoteFlight(ctx context.Context, flight *domain.Flight) (*domain.PriceQuote, error) {
	offers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	quote := BestPrice(flight, offers, s.now())
	return &quote, nil
}

var _ OfferUseCase = (*OfferService)(nil)
