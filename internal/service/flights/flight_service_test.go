package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skyfare/skyfare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ReserveSeat(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

func (m *MockFlightRepository) ReleaseSeat(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func sampleFlights() []domain.Flight {
	departure := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	return []domain.Flight{
		{ID: 1, FlightNumber: "SF101", AirlineCode: "SF", OriginCode: "JFK", DestinationCode: "LAX", DepartureTime: departure, PriceCents: 19900},
		{ID: 2, FlightNumber: "SF205", AirlineCode: "SF", OriginCode: "LAX", DestinationCode: "SEA", DepartureTime: departure.Add(3 * time.Hour), PriceCents: 12900},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockFlightCache{}
	service := NewFlightService(repo, cache)

	ctx := context.Background()
	flights := sampleFlights()

	cache.On("GetFlights", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(flights, nil).Once()
	cache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockFlightCache{}
	service := NewFlightService(repo, cache)

	ctx := context.Background()
	flights := sampleFlights()

	cache.On("GetFlights", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)

	cache.AssertExpectations(t)
	repo.AssertNotCalled(t, "List")
}

func TestFlightService_List_CacheErrorFallsThrough(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockFlightCache{}
	service := NewFlightService(repo, cache)

	ctx := context.Background()
	flights := sampleFlights()

	cache.On("GetFlights", ctx).Return(nil, errors.New("redis down")).Once()
	repo.On("List", ctx).Return(flights, nil).Once()
	cache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
}

func TestFlightService_List_NoCache(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, nil)

	ctx := context.Background()
	flights := sampleFlights()

	repo.On("List", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	repo.AssertExpectations(t)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, nil)

	ctx := context.Background()
	expectedErr := errors.New("database error")
	repo.On("List", ctx).Return(nil, expectedErr).Once()

	result, err := service.List(ctx)

	assert.Equal(t, expectedErr, err)
	assert.Nil(t, result)
}

func TestFlightService_GetByID(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, nil)

	ctx := context.Background()
	flight := &sampleFlights()[0]

	repo.On("GetByID", ctx, int64(1)).Return(flight, nil).Once()

	result, err := service.GetByID(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, flight, result)
	repo.AssertExpectations(t)
}
