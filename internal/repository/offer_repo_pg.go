package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyfare/skyfare/internal/domain"
)

type OfferRepository interface {
	ListActive(ctx context.Context) ([]domain.Offer, error)
	GetByID(ctx context.Context, id int64) (*domain.Offer, error)
}

type PGOfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) OfferRepository {
	return &PGOfferRepository{db: db}
}

const offerColumns = `id, title, description, discount, valid_from, valid_to, is_active, applicable_flights, applicable_airlines, applicable_routes, min_price_cents, max_discount_cents, created_at, updated_at`

func scanOffer(row interface{ Scan(dest ...any) error }, o *domain.Offer) error {
	var routes []byte
	if err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Discount, &o.ValidFrom, &o.ValidTo, &o.IsActive, &o.ApplicableFlights, &o.ApplicableAirlines, &routes, &o.MinPriceCents, &o.MaxDiscountCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	if len(routes) > 0 {
		if err := json.Unmarshal(routes, &o.ApplicableRoutes); err != nil {
			return err
		}
	}
	return nil
}

// ListActive returns offers flagged active. Validity windows and
// applicability are evaluated by the discount engine, not here, so the
// closed-interval boundary semantics live in one place.
func (r *PGOfferRepository) ListActive(ctx context.Context) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.Offer, 0)
	for rows.Next() {
		var o domain.Offer
		if err := scanOffer(rows, &o); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *PGOfferRepository) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id=$1`, id)
	var o domain.Offer
	if err := scanOffer(row, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

var _ OfferRepository = (*PGOfferRepository)(nil)
