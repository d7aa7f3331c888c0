package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdiagne/terangabus/internal/domain"
)

type ReservationRepository interface {
	// CreatePendingIfFree inserts the reservation only when no active
	// (pending or confirmed, non-expired) hold exists for the same
	// (trip, seat) pair. Returns ErrSeatTaken otherwise. The check and
	// the insert are a single statement, so two concurrent requests
	// cannot both succeed.
	CreatePendingIfFree(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
	SetTicketURL(ctx context.Context, id int64, url string) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, user_id, trajet_id, siege_numero, moyen_paiement, montant_cents, code, statut, expires_at, ticket_url, created_at, updated_at`

func (r *PGReservationRepository) CreatePendingIfFree(ctx context.Context, res *domain.Reservation) error {
	res.Status = domain.ReservationStatusPending
	err := r.db.QueryRow(ctx, `
		INSERT INTO reservations (user_id, trajet_id, siege_numero, moyen_paiement, montant_cents, code, statut, expires_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM reservations
			WHERE trajet_id = $2 AND siege_numero = $3
			  AND statut IN ('pending', 'confirmed')
			  AND (expires_at IS NULL OR expires_at > now())
		)
		RETURNING id, created_at, updated_at`,
		res.UserID, res.TripID, res.SeatNumber, res.PaymentMethod, res.AmountCents, res.Code, res.Status, res.ExpiresAt).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSeatTaken
	}
	return err
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
}

func (r *PGReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE code=$1`, code)
}

func (r *PGReservationRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, query, arg)
	var res domain.Reservation
	if err := scanReservation(row, &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE user_id=$1 AND statut <> 'deleted' ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// UpdateStatus also drops the hold expiry on confirmation: a confirmed
// seat blocks its (trip, seat) pair until cancelled, never by timeout.
func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations
		SET statut=$1,
		    expires_at=CASE WHEN $1='confirmed' THEN NULL ELSE expires_at END,
		    updated_at=now()
		WHERE id=$2 RETURNING `+reservationColumns, status, id)
	var res domain.Reservation
	if err := scanReservation(row, &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) SetTicketURL(ctx context.Context, id int64, url string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET ticket_url=$1, updated_at=now() WHERE id=$2`, url, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpirePendingBefore flips expired pending holds to the expired state
// and returns them so the caller can release seat locks and notify.
// The read-time expiry predicate stays authoritative; this sweep only
// reconciles storage.
func (r *PGReservationRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET statut=$1, updated_at=now()
		WHERE statut=$2 AND expires_at IS NOT NULL AND expires_at <= $3
		RETURNING `+reservationColumns,
		domain.ReservationStatusExpired, domain.ReservationStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func scanReservation(row pgx.Row, res *domain.Reservation) error {
	return row.Scan(&res.ID, &res.UserID, &res.TripID, &res.SeatNumber, &res.PaymentMethod, &res.AmountCents, &res.Code, &res.Status, &res.ExpiresAt, &res.TicketURL, &res.CreatedAt, &res.UpdatedAt)
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
