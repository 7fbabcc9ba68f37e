// Package quota implements the free-allowance and credit rules that decide
// whether a generation may run and what it costs. Every function is pure; the
// caller persists the returned ledger.
package quota

import (
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// FreeLimit is the number of generations every user gets for free
	FreeLimit = 2
)

var (
	// UnitCost is what a paid generation deducts from the balance
	UnitCost = decimal.RequireFromString("0.20")

	// CreditRate converts one purchased credit into balance units
	CreditRate = decimal.RequireFromString("0.20")
)

// Policy holds the ledger constants
type Policy struct {
	FreeLimit  int
	UnitCost   decimal.Decimal
	CreditRate decimal.Decimal
	Packages   []domain.CreditPackage
}

// DefaultPolicy returns the standard pricing: two free runs, then 0.20 per run
func DefaultPolicy() Policy {
	return Policy{
		FreeLimit:  FreeLimit,
		UnitCost:   UnitCost,
		CreditRate: CreditRate,
		Packages:   DefaultPackages(),
	}
}

// DefaultPackages lists the credit bundles offered for purchase
func DefaultPackages() []domain.CreditPackage {
	return []domain.CreditPackage{
		{Credits: 10, Price: decimal.RequireFromString("2.00")},
		{Credits: 25, Price: decimal.RequireFromString("5.00"), Popular: true},
		{Credits: 50, Price: decimal.RequireFromString("10.00")},
	}
}

// CanGenerate reports whether a new generation is permitted
func (p Policy) CanGenerate(q domain.Quota) bool {
	return q.FreeGenerationsUsed < p.FreeLimit || q.CreditBalance.GreaterThanOrEqual(p.UnitCost)
}

// CostOf returns what the next generation would cost
func (p Policy) CostOf(q domain.Quota) domain.Charge {
	if q.FreeGenerationsUsed < p.FreeLimit {
		return domain.Charge{Kind: domain.ChargeFree, Amount: decimal.Zero}
	}
	return domain.Charge{Kind: domain.ChargePaid, Amount: p.UnitCost}
}

// ApplyGeneration records one successful generation.
// The balance is only touched once the free allowance was already spent
// and never drops below zero.
func (p Policy) ApplyGeneration(q domain.Quota) domain.Quota {
	next := q
	if q.FreeGenerationsUsed >= p.FreeLimit {
		next.CreditBalance = q.CreditBalance.Sub(p.UnitCost)
		if next.CreditBalance.IsNegative() {
			next.CreditBalance = decimal.Zero
		}
	}
	next.FreeGenerationsUsed = q.FreeGenerationsUsed + 1
	return next
}

// ApplyPurchase credits the balance with credits*rate
func (p Policy) ApplyPurchase(q domain.Quota, credits int, rate decimal.Decimal) domain.Quota {
	next := q
	next.CreditBalance = q.CreditBalance.Add(rate.Mul(decimal.NewFromInt(int64(credits))))
	return next
}

// Package looks up an offered bundle by credit count
func (p Policy) Package(credits int) (domain.CreditPackage, bool) {
	for _, pkg := range p.Packages {
		if pkg.Credits == credits {
			return pkg, true
		}
	}
	return domain.CreditPackage{}, false
}

// Status derives the user-facing view of a ledger
func (p Policy) Status(q domain.Quota) domain.QuotaStatus {
	left := p.FreeLimit - q.FreeGenerationsUsed
	if left < 0 {
		left = 0
	}

	var paid int64
	if p.UnitCost.IsPositive() {
		paid = q.CreditBalance.Div(p.UnitCost).Floor().IntPart()
	}

	return domain.QuotaStatus{
		Quota:                    q,
		FreeLimit:                p.FreeLimit,
		FreeGenerationsLeft:      left,
		PaidGenerationsAvailable: paid,
		NeedsCredits:             !p.CanGenerate(q),
		UnitCost:                 p.UnitCost,
		NextCharge:               p.CostOf(q),
	}
}

// CanGenerate applies the default policy
func CanGenerate(q domain.Quota) bool { return DefaultPolicy().CanGenerate(q) }

// CostOf applies the default policy
func CostOf(q domain.Quota) domain.Charge { return DefaultPolicy().CostOf(q) }

// ApplyGeneration applies the default policy
func ApplyGeneration(q domain.Quota) domain.Quota { return DefaultPolicy().ApplyGeneration(q) }

// ApplyPurchase applies the default policy
func ApplyPurchase(q domain.Quota, credits int, rate decimal.Decimal) domain.Quota {
	return DefaultPolicy().ApplyPurchase(q, credits, rate)
}
