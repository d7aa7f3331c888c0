package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdiagne/terangabus/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
}

type PGContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) ContactRepository {
	return &PGContactRepository{db: db}
}

func (r *PGContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return r.db.QueryRow(ctx, `INSERT INTO contact_messages (nom, email, sujet, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Message).
		Scan(&msg.ID, &msg.CreatedAt)
}

var _ ContactRepository = (*PGContactRepository)(nil)
