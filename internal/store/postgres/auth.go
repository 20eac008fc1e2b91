package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthRepository struct {
	db *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) CreateAccount(ctx context.Context, p *profile.Profile, passwordHash string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, name, email, phone, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Name, p.Email, p.Phone, string(p.Role), p.CreatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO credentials (user_id, password_hash) VALUES ($1, $2)`, p.ID, passwordHash)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return auth.ErrEmailExists
		}
		return fmt.Errorf("repository: failed to create account: %w", err)
	}
	return nil
}

func (r *AuthRepository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	query := `
		SELECT p.id, p.email, c.password_hash
		FROM profiles p
		JOIN credentials c ON c.user_id = p.id
		WHERE p.email = $1
	`
	var acc auth.Account
	if err := r.db.QueryRow(ctx, query, email).Scan(&acc.UserID, &acc.Email, &acc.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account by email: %w", err)
	}
	return &acc, nil
}

func (r *AuthRepository) CreateSession(ctx context.Context, s *auth.SessionRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert session: %w", err)
	}
	return nil
}

func (r *AuthRepository) GetSession(ctx context.Context, id uuid.UUID) (*auth.SessionRecord, error) {
	query := `SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`

	var s auth.SessionRecord
	if err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select session %s: %w", id, err)
	}
	return &s, nil
}

func (r *AuthRepository) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("repository: failed to revoke session %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}
