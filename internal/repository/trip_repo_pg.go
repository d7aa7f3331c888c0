package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdiagne/terangabus/internal/domain"
)

type TripRepository interface {
	Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
}

type PGTripRepository struct {
	db *pgxpool.Pool
}

func NewTripRepository(db *pgxpool.Pool) TripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `id, ville_depart, ville_arrivee, date_depart, heure_depart, bus_id, places_total, prix_cents, created_at, updated_at`

func (r *PGTripRepository) Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trajets
		WHERE lower(ville_depart) = lower($1) AND lower(ville_arrivee) = lower($2) AND date_depart = $3
		ORDER BY heure_depart`, from, to, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		var t domain.Trip
		if err := scanTrip(rows, &t); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *PGTripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	row := r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trajets WHERE id=$1`, id)
	var t domain.Trip
	if err := scanTrip(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func scanTrip(row pgx.Row, t *domain.Trip) error {
	return row.Scan(&t.ID, &t.DepartureCity, &t.ArrivalCity, &t.DepartureDate, &t.DepartureTime, &t.BusID, &t.SeatsTotal, &t.PriceCents, &t.CreatedAt, &t.UpdatedAt)
}

var _ TripRepository = (*PGTripRepository)(nil)
