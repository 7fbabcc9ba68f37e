package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type quotaRow struct {
	GenerationsCount int    `db:"generations_count"`
	Credits          string `db:"credits"`
}

// QuotaStore implements domain.QuotaRepository with sqlx
type QuotaStore struct {
	db *sqlx.DB
}

// NewQuotaStore creates a quota store on an open database
func NewQuotaStore(db *sqlx.DB) *QuotaStore {
	return &QuotaStore{db: db}
}

// GetQuota returns the owner's ledger, zero for unseen owners
func (s *QuotaStore) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	var row quotaRow
	err := s.db.GetContext(ctx, &row,
		`SELECT generations_count, credits FROM quotas WHERE owner_id = ?`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quota{CreditBalance: decimal.Zero}, nil
		}
		return domain.Quota{}, fmt.Errorf("failed to get quota: %w", err)
	}

	balance, err := decimal.NewFromString(row.Credits)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("corrupt credits for %s: %w", ownerID, err)
	}

	return domain.Quota{FreeGenerationsUsed: row.GenerationsCount, CreditBalance: balance}, nil
}

// UpdateQuota writes next only if the stored ledger still equals prev.
// An owner without a row is treated as holding the zero ledger.
func (s *QuotaStore) UpdateQuota(ctx context.Context, ownerID string, prev, next domain.Quota) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE quotas SET generations_count = ?, credits = ?
		WHERE owner_id = ? AND generations_count = ? AND credits = ?`,
		next.FreeGenerationsUsed, next.CreditBalance.String(),
		ownerID, prev.FreeGenerationsUsed, prev.CreditBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	if n == 0 {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM quotas WHERE owner_id = ?`, ownerID); err != nil {
			return fmt.Errorf("failed to check quota: %w", err)
		}
		if count > 0 || !prev.Equal(domain.Quota{}) {
			return domain.ErrQuotaConflict
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO quotas (owner_id, generations_count, credits) VALUES (?, ?, ?)`,
			ownerID, next.FreeGenerationsUsed, next.CreditBalance.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert quota: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quota: %w", err)
	}
	return nil
}
