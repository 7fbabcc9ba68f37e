package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/quota"
	"github.com/rs/zerolog/log"
)

const purchaseRetries = 3

// QuotaService reports ledgers and credits purchases
type QuotaService struct {
	stores Stores
	policy quota.Policy
	locks  *OwnerLocks
}

// NewQuotaService creates a new quota service
func NewQuotaService(stores Stores, policy quota.Policy, locks *OwnerLocks) *QuotaService {
	if locks == nil {
		locks = NewOwnerLocks()
	}
	return &QuotaService{stores: stores, policy: policy, locks: locks}
}

// Status returns the owner's ledger with derived fields
func (s *QuotaService) Status(ctx context.Context, owner domain.Owner) (*domain.QuotaStatus, error) {
	q, err := s.stores.Quota(owner).GetQuota(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}
	status := s.policy.Status(q)
	return &status, nil
}

// Packages lists the purchasable credit bundles
func (s *QuotaService) Packages() []domain.CreditPackage {
	return s.policy.Packages
}

// Purchase credits the owner with one of the offered packages.
// Payment is not processed; the balance is credited immediately.
func (s *QuotaService) Purchase(ctx context.Context, owner domain.Owner, credits int) (*domain.QuotaStatus, error) {
	pkg, ok := s.policy.Package(credits)
	if !ok {
		return nil, fmt.Errorf("%w: no package with %d credits", domain.ErrInvalidRequest, credits)
	}

	unlock, err := s.locks.Lock(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for owner ledger: %w", err)
	}
	defer unlock()

	ledger := s.stores.Quota(owner)

	for attempt := 0; attempt < purchaseRetries; attempt++ {
		current, err := ledger.GetQuota(ctx, owner.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
		}

		next := s.policy.ApplyPurchase(current, pkg.Credits, s.policy.CreditRate)
		err = ledger.UpdateQuota(ctx, owner.ID, current, next)
		if errors.Is(err, domain.ErrQuotaConflict) {
			// Another process changed the ledger; purchases commute, so re-read and retry
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
		}

		log.Info().
			Str("owner", owner.ID).
			Int("credits", pkg.Credits).
			Str("price", pkg.Price.StringFixed(2)).
			Str("balance", next.CreditBalance.StringFixed(2)).
			Msg("Credits purchased")

		status := s.policy.Status(next)
		return &status, nil
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, domain.ErrQuotaConflict)
}
