package cart

import (
	"context"
	"time"

	"github.com/skvortsovm/shop-backend/internal/logging"
)

// StartReaper deletes expired anonymous carts on the given interval until
// ctx is canceled. This is the TTL side of the store expressed as a
// background sweep.
func (s *Service) StartReaper(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("svc", "cart.reaper")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.store.DeleteExpired(ctx, time.Now())
				if err != nil {
					l.Error("reap_error", "error", err)
					continue
				}
				if n > 0 {
					l.Info("carts_reaped", "count", n)
				}
			}
		}
	}()
}
