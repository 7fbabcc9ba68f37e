package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/shopspring/decimal"
)

// GenerationRepository implements domain.GenerationLog
type GenerationRepository struct {
	db *DB
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Record inserts a finished run
func (r *GenerationRepository) Record(ctx context.Context, g *domain.Generation) error {
	query := `
		INSERT INTO generations (id, owner_id, mode, state, charge_kind, charge_amount, provider, model, tokens_used, latency_ms, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var (
		chargeKind   *string
		chargeAmount *decimal.Decimal
	)
	if g.Charge != nil {
		kind := string(g.Charge.Kind)
		chargeKind = &kind
		chargeAmount = &g.Charge.Amount
	}

	_, err := r.db.Pool.Exec(ctx, query,
		g.ID,
		g.OwnerID,
		g.Mode,
		g.State,
		chargeKind,
		chargeAmount,
		g.Provider,
		g.Model,
		g.TokensUsed,
		g.LatencyMs,
		g.Error,
		g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}

	return nil
}
