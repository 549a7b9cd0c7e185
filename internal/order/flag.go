package order

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skvortsovm/shop-backend/internal/logging"
)

const (
	hasNewKey = "orders:has_new"
	hasNewTTL = 24 * time.Hour
)

// Flag is the redis-backed "new orders since an admin last looked" bit
// behind GET /orders/admin/has-new. A nil Flag or nil client degrades to
// no-ops; the flag then always reads false.
type Flag struct {
	rdb *redis.Client
}

func NewFlag(rdb *redis.Client) *Flag { return &Flag{rdb: rdb} }

func (f *Flag) Set(ctx context.Context) {
	if f == nil || f.rdb == nil {
		return
	}
	if err := f.rdb.Set(ctx, hasNewKey, "1", hasNewTTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("has_new_set_error", "error", err)
	}
}

func (f *Flag) Has(ctx context.Context) (bool, error) {
	if f == nil || f.rdb == nil {
		return false, nil
	}
	n, err := f.rdb.Exists(ctx, hasNewKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (f *Flag) Clear(ctx context.Context) {
	if f == nil || f.rdb == nil {
		return
	}
	if err := f.rdb.Del(ctx, hasNewKey).Err(); err != nil {
		logging.FromContext(ctx).Warn("has_new_clear_error", "error", err)
	}
}
