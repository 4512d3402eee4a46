package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skyfare/skyfare/internal/domain"
	"github.com/skyfare/skyfare/internal/kafka"
	"github.com/skyfare/skyfare/internal/repository"
	"github.com/skyfare/skyfare/pkg/logger"
)

var (
	// ErrNotCancellable is returned when a booking exists but is not in
	// a state that permits cancellation.
	ErrNotCancellable = errors.New("booking is not cancellable")
	// ErrCancelInProgress is returned when a cancellation for the same
	// booking token is already running.
	ErrCancelInProgress = errors.New("cancellation already in progress")
	// ErrSeatLocked is returned when another pending booking holds the
	// requested seat.
	ErrSeatLocked = errors.New("seat is already locked")
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, bool, error)
	GetByConfirmation(ctx context.Context, confirmationID string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, flightID int64, seatNumber int, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightID int64, seatNumber int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Pricer resolves the effective per-seat price for a flight after
// promotional offers are applied.
type Pricer interface {
	Quote(ctx context.Context, flightID int64) (*domain.PriceQuote, error)
}

// Reminders removes any scheduled flight reminders for a booking.
type Reminders interface {
	ClearForBooking(ctx context.Context, bookingID int64) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	pricer             Pricer
	reminders          Reminders
	log                logger.Logger
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	confirmationTTL    time.Duration
	refundWindow       time.Duration
	now                func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

type CreateBookingInput struct {
	FlightID   int64              `json:"flight_id"`
	SeatNumber int                `json:"seat_number"`
	Email      string             `json:"email"`
	Passengers []domain.Passenger `json:"passengers"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPricer(p Pricer) BookingServiceOption {
	return func(s *BookingService) {
		s.pricer = p
	}
}

func WithReminders(r Reminders) BookingServiceOption {
	return func(s *BookingService) {
		s.reminders = r
	}
}

func WithRefundWindow(window time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.refundWindow = window
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	log logger.Logger,
	bookingTopic string,
	holdTTL, confirmationTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		flights:         flights,
		cache:           cache,
		producer:        producer,
		log:             log,
		bookingTopic:    bookingTopic,
		holdTTL:         holdTTL,
		confirmationTTL: confirmationTTL,
		refundWindow:    24 * time.Hour,
		now:             time.Now,
		inflight:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// RefundEligible reports whether a cancellation at now qualifies for a
// refund. The boundary is inclusive: cancelling exactly refundWindow
// before departure still refunds.
func (s *BookingService) RefundEligible(departure, now time.Time) bool {
	return departure.Sub(now) >= s.refundWindow
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.SeatNumber <= 0 {
		return nil, errors.New("seat number must be positive")
	}
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if len(input.Passengers) == 0 {
		return nil, errors.New("at least one passenger is required")
	}
	for _, p := range input.Passengers {
		if p.FirstName == "" || p.LastName == "" {
			return nil, errors.New("passenger first and last name are required")
		}
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, input.FlightID, input.SeatNumber, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSeatLocked
		}
		locked = true
	}

	perSeat, err := s.perSeatPrice(ctx, input.FlightID)
	if err != nil {
		if locked {
			_ = s.cache.ReleaseSeatLock(ctx, input.FlightID, input.SeatNumber)
		}
		return nil, err
	}

	expiresIn := s.confirmationTTL
	if expiresIn == 0 {
		expiresIn = s.holdTTL
	}

	booking := &domain.Booking{
		ConfirmationID:  newConfirmationID(),
		FlightID:        input.FlightID,
		SeatNumber:      input.SeatNumber,
		Token:           uuid.NewString(),
		Status:          domain.BookingStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Passengers:      input.Passengers,
		TotalPriceCents: perSeat * int64(len(input.Passengers)),
		ExpiresAt:       s.now().Add(expiresIn),
		Email:           input.Email,
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		if locked {
			_ = s.cache.ReleaseSeatLock(ctx, input.FlightID, input.SeatNumber)
		}
		return nil, err
	}

	if err := s.publish(ctx, "booking_created", booking, false); err != nil {
		s.log.Warn("failed to publish booking_created event", "token", booking.Token, "error", err)
	}
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, errors.New("booking is not pending")
	}

	updated, err := s.bookings.ConfirmPending(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated, false); err != nil {
		s.log.Warn("failed to publish booking_confirmed event", "token", updated.Token, "error", err)
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.FlightID, updated.SeatNumber)
	}
	return updated, nil
}

// CancelBooking cancels a confirmed booking and reports refund
// eligibility. The status change is applied before any local cleanup
// so a failed cancellation leaves seats, reminders and locks in place.
// Only one cancellation per token runs at a time.
func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, bool, error) {
	if !s.beginCancel(token) {
		return nil, false, ErrCancelInProgress
	}
	defer s.endCancel(token)

	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if current.Status != domain.BookingStatusConfirmed {
		return nil, false, ErrNotCancellable
	}

	flight, err := s.flights.GetByID(ctx, current.FlightID)
	if err != nil {
		return nil, false, err
	}
	refund := s.RefundEligible(flight.DepartureTime, s.now())

	updated, err := s.bookings.CancelConfirmed(ctx, token, refund)
	if err != nil {
		return nil, false, err
	}

	_ = s.bookings.ReleaseSeat(ctx, updated.FlightID)
	if s.reminders != nil {
		if err := s.reminders.ClearForBooking(ctx, updated.ID); err != nil {
			s.log.Warn("failed to clear reminders for cancelled booking", "booking_id", updated.ID, "error", err)
		}
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.FlightID, updated.SeatNumber)
	}
	if err := s.publish(ctx, "booking_cancelled", updated, refund); err != nil {
		s.log.Warn("failed to publish booking_cancelled event", "token", updated.Token, "error", err)
	}
	return updated, refund, nil
}

func (s *BookingService) GetByConfirmation(ctx context.Context, confirmationID string) (*domain.Booking, error) {
	return s.bookings.GetByConfirmation(ctx, confirmationID)
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for _, b := range expired {
		_ = s.bookings.ReleaseSeat(ctx, b.FlightID)
		_ = s.publish(ctx, "booking_expired", &b, false)
		if s.cache != nil {
			_ = s.cache.ReleaseSeatLock(ctx, b.FlightID, b.SeatNumber)
		}
	}
	return expired, nil
}

func (s *BookingService) perSeatPrice(ctx context.Context, flightID int64) (int64, error) {
	if s.pricer != nil {
		quote, err := s.pricer.Quote(ctx, flightID)
		if err != nil {
			return 0, err
		}
		return quote.DiscountedCents, nil
	}
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return 0, err
	}
	return flight.PriceCents, nil
}

func (s *BookingService) beginCancel(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[token]; busy {
		return false
	}
	s.inflight[token] = struct{}{}
	return true
}

func (s *BookingService) endCancel(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, token)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, refund bool) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		Token:           booking.Token,
		ConfirmationID:  booking.ConfirmationID,
		FlightID:        booking.FlightID,
		SeatNumber:      booking.SeatNumber,
		Email:           booking.Email,
		Status:          string(booking.Status),
		TotalPriceCents: booking.TotalPriceCents,
		RefundEligible:  refund,
		ExpiresAt:       booking.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Token, event)
	}
	return nil
}

func newConfirmationID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:8]
}

var _ BookingUseCase = (*BookingService)(nil)
