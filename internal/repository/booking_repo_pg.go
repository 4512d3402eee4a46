package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyfare/skyfare/internal/domain"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	GetByConfirmation(ctx context.Context, confirmationID string) (*domain.Booking, error)
	ConfirmPending(ctx context.Context, token string) (*domain.Booking, error)
	CancelConfirmed(ctx context.Context, token string, refund bool) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	ListConfirmedDeparting(ctx context.Context, until time.Time) ([]domain.BookingFlight, error)
	ReleaseSeat(ctx context.Context, flightID int64) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, confirmation_id, flight_id, seat_number, token, status, payment_status, passengers, total_price_cents, expires_at, email, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.ConfirmationID, &b.FlightID, &b.SeatNumber, &b.Token, &b.Status, &b.PaymentStatus, &b.Passengers, &b.TotalPriceCents, &b.ExpiresAt, &b.Email, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	if err := tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now() WHERE id=$1 AND available_seats > 0 RETURNING available_seats`, booking.FlightID).Scan(&available); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusPending
	booking.PaymentStatus = domain.PaymentStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (confirmation_id, flight_id, seat_number, token, status, payment_status, passengers, total_price_cents, expires_at, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		booking.ConfirmationID, booking.FlightID, booking.SeatNumber, booking.Token, booking.Status, booking.PaymentStatus, booking.Passengers, booking.TotalPriceCents, booking.ExpiresAt, booking.Email).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByConfirmation(ctx context.Context, confirmationID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE confirmation_id=$1`, confirmationID)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ConfirmPending(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, payment_status=$2, updated_at=now() WHERE token=$3 AND status=$4 RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, domain.PaymentStatusPaid, token, domain.BookingStatusPending)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CancelConfirmed transitions a CONFIRMED booking to CANCELLED,
// marking the payment refunded when the cancellation is refund
// eligible. Returns pgx.ErrNoRows when the booking is no longer in a
// cancellable state.
func (r *PGBookingRepository) CancelConfirmed(ctx context.Context, token string, refund bool) (*domain.Booking, error) {
	payment := domain.PaymentStatusPaid
	if refund {
		payment = domain.PaymentStatusRefunded
	}
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, payment_status=$2, updated_at=now() WHERE token=$3 AND status=$4 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, payment, token, domain.BookingStatusConfirmed)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, payment_status=$2, updated_at=now() WHERE status=$3 AND expires_at <= $4 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.PaymentStatusFailed, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	return expired, rows.Err()
}

func (r *PGBookingRepository) ListConfirmedDeparting(ctx context.Context, until time.Time) ([]domain.BookingFlight, error) {
	rows, err := r.db.Query(ctx, `SELECT
		b.id, b.confirmation_id, b.flight_id, b.seat_number, b.token, b.status, b.payment_status, b.passengers, b.total_price_cents, b.expires_at, b.email, b.created_at, b.updated_at,
		f.id, f.flight_number, f.airline_code, f.origin_code, f.destination_code, f.departure_time, f.arrival_time, f.total_seats, f.available_seats, f.price_cents, f.status, f.created_at, f.updated_at
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE b.status=$1 AND f.departure_time > now() AND f.departure_time <= $2
		ORDER BY f.departure_time`, domain.BookingStatusConfirmed, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingFlight
	for rows.Next() {
		var bf domain.BookingFlight
		b, f := &bf.Booking, &bf.Flight
		if err := rows.Scan(
			&b.ID, &b.ConfirmationID, &b.FlightID, &b.SeatNumber, &b.Token, &b.Status, &b.PaymentStatus, &b.Passengers, &b.TotalPriceCents, &b.ExpiresAt, &b.Email, &b.CreatedAt, &b.UpdatedAt,
			&f.ID, &f.FlightNumber, &f.AirlineCode, &f.OriginCode, &f.DestinationCode, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, bf)
	}
	return out, rows.Err()
}

func (r *PGBookingRepository) ReleaseSeat(ctx context.Context, flightID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1, updated_at = now() WHERE id = $1`, flightID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("flight not found")
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
