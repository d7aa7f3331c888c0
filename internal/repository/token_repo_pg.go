package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mdiagne/terangabus/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	// FindByHash returns the token row for a hash regardless of its
	// used flag, optionally scoped to a user. The service layer tells
	// "already consumed" apart from "never existed" with the result.
	FindByHash(ctx context.Context, hash string, tokenType domain.TokenType, userID *int64) (*domain.VerificationToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) error
	// DeleteActive removes prior unused, unexpired tokens so at most
	// one token per (user, type) is live at a time.
	DeleteActive(ctx context.Context, userID int64, tokenType domain.TokenType) error
}

type PGTokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &PGTokenRepository{db: db}
}

func (r *PGTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	return r.db.QueryRow(ctx, `INSERT INTO verification_tokens (user_id, token_hash, type, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		token.UserID, token.TokenHash, token.Type, token.ExpiresAt, token.IPAddress, token.UserAgent).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *PGTokenRepository) FindByHash(ctx context.Context, hash string, tokenType domain.TokenType, userID *int64) (*domain.VerificationToken, error) {
	query := `SELECT id, user_id, token_hash, type, expires_at, used_at, ip_address, user_agent, created_at
		FROM verification_tokens WHERE token_hash=$1 AND type=$2`
	args := []interface{}{hash, tokenType}
	if userID != nil {
		query += ` AND user_id=$3`
		args = append(args, *userID)
	}

	row := r.db.QueryRow(ctx, query, args...)
	var t domain.VerificationToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Type, &t.ExpiresAt, &t.UsedAt, &t.IPAddress, &t.UserAgent, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE verification_tokens SET used_at=$1 WHERE id=$2 AND used_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTokenRepository) DeleteActive(ctx context.Context, userID int64, tokenType domain.TokenType) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_tokens
		WHERE user_id=$1 AND type=$2 AND used_at IS NULL AND expires_at > now()`, userID, tokenType)
	return err
}

var _ TokenRepository = (*PGTokenRepository)(nil)
