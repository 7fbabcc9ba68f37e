package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository handles user data access. It also stores the quota ledger
// of registered users and implements domain.QuotaRepository.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, generations_count, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.GenerationsCount,
		user.Credits,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID, returning nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, returning nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, generations_count, credits, created_at, updated_at
		FROM users
	` + where

	var user domain.User
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.GenerationsCount,
		&user.Credits,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// EmailExists checks whether an account already uses the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// GetQuota returns the ledger of a user; unknown users have a zero ledger
func (r *UserRepository) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("%w: owner id %q", domain.ErrInvalidRequest, ownerID)
	}

	var q domain.Quota
	err = r.db.Pool.QueryRow(ctx,
		`SELECT generations_count, credits FROM users WHERE id = $1`, id,
	).Scan(&q.FreeGenerationsUsed, &q.CreditBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quota{CreditBalance: decimal.Zero}, nil
		}
		return domain.Quota{}, fmt.Errorf("failed to get quota: %w", err)
	}

	return q, nil
}

// UpdateQuota writes next only if the stored ledger still equals prev
func (r *UserRepository) UpdateQuota(ctx context.Context, ownerID string, prev, next domain.Quota) error {
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return fmt.Errorf("%w: owner id %q", domain.ErrInvalidRequest, ownerID)
	}

	query := `
		UPDATE users
		SET generations_count = $2, credits = $3, updated_at = NOW()
		WHERE id = $1 AND generations_count = $4 AND credits = $5
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		id,
		next.FreeGenerationsUsed,
		next.CreditBalance,
		prev.FreeGenerationsUsed,
		prev.CreditBalance,
	)
	if err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return domain.ErrQuotaConflict
	}

	return nil
}

func (r *UserRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}
