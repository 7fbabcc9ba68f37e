package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quota is a user's generation allowance: free runs consumed and purchased balance
type Quota struct {
	FreeGenerationsUsed int             `json:"free_generations_used"`
	CreditBalance       decimal.Decimal `json:"credit_balance"`
}

// Equal reports whether two ledgers hold the same values
func (q Quota) Equal(o Quota) bool {
	return q.FreeGenerationsUsed == o.FreeGenerationsUsed && q.CreditBalance.Equal(o.CreditBalance)
}

// ChargeKind tells whether a generation consumed the free allowance or the balance
type ChargeKind string

const (
	ChargeFree ChargeKind = "free"
	ChargePaid ChargeKind = "paid"
)

// Charge is the cost of one generation
type Charge struct {
	Kind   ChargeKind      `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// QuotaStatus is the derived view of a ledger shown to users
type QuotaStatus struct {
	Quota
	FreeLimit                int             `json:"free_limit"`
	FreeGenerationsLeft      int             `json:"free_generations_left"`
	PaidGenerationsAvailable int64           `json:"paid_generations_available"`
	NeedsCredits             bool            `json:"needs_credits"`
	UnitCost                 decimal.Decimal `json:"unit_cost"`
	NextCharge               Charge          `json:"next_charge"`
}

// CreditPackage is a purchasable bundle of credits
type CreditPackage struct {
	Credits int             `json:"credits"`
	Price   decimal.Decimal `json:"price"`
	Popular bool            `json:"popular,omitempty"`
}

// QuotaRepository is the user-record collaborator that stores ledgers.
// GetQuota returns a zero ledger for owners it has never seen.
// UpdateQuota is a compare-and-swap: it fails with ErrQuotaConflict
// when the stored ledger differs from prev.
type QuotaRepository interface {
	GetQuota(ctx context.Context, ownerID string) (Quota, error)
	UpdateQuota(ctx context.Context, ownerID string, prev, next Quota) error
}
