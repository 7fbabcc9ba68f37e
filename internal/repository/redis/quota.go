package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	quotaPrefix  = "quota:"
	fieldUsed    = "generations_count"
	fieldBalance = "credits"
)

// QuotaStore keeps the ledger of anonymous sessions in a hash
type QuotaStore struct {
	client *Client
	ttl    time.Duration
}

// NewQuotaStore creates a quota store; ttl of zero keeps ledgers forever
func NewQuotaStore(client *Client, ttl time.Duration) *QuotaStore {
	return &QuotaStore{client: client, ttl: ttl}
}

// GetQuota returns the session ledger, zero for unseen sessions
func (s *QuotaStore) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	q, err := readQuota(ctx, s.client.rdb, quotaPrefix+ownerID)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("failed to get quota: %w", err)
	}
	return q, nil
}

// UpdateQuota writes next only if the stored ledger still equals prev
func (s *QuotaStore) UpdateQuota(ctx context.Context, ownerID string, prev, next domain.Quota) error {
	key := quotaPrefix + ownerID

	err := s.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readQuota(ctx, tx, key)
		if err != nil {
			return err
		}
		if !current.Equal(prev) {
			return domain.ErrQuotaConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				fieldUsed, next.FreeGenerationsUsed,
				fieldBalance, next.CreditBalance.String(),
			)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrQuotaConflict
	}
	if err != nil && !errors.Is(err, domain.ErrQuotaConflict) {
		return fmt.Errorf("failed to update quota: %w", err)
	}
	return err
}

type hashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func readQuota(ctx context.Context, r hashGetter, key string) (domain.Quota, error) {
	fields, err := r.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Quota{}, err
	}

	q := domain.Quota{CreditBalance: decimal.Zero}
	if v, ok := fields[fieldUsed]; ok {
		if q.FreeGenerationsUsed, err = strconv.Atoi(v); err != nil {
			return domain.Quota{}, fmt.Errorf("corrupt %s: %w", fieldUsed, err)
		}
	}
	if v, ok := fields[fieldBalance]; ok {
		if q.CreditBalance, err = decimal.NewFromString(v); err != nil {
			return domain.Quota{}, fmt.Errorf("corrupt %s: %w", fieldBalance, err)
		}
	}
	return q, nil
}
