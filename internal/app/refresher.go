package app

import (
	"context"
	"time"

	"github.com/academyops/clinicboard/internal/debounce"
	"go.uber.org/zap"
)

// Refresher sits between mutation hooks and the board re-render: bursts of
// session/attendance mutations coalesce into one deferred refresh, and a
// newer burst cancels a refresh still in flight.
type Refresher struct {
	deb     *debounce.Debouncer
	refresh func(ctx context.Context) error
	logger  *zap.Logger
}

func NewRefresher(quiet time.Duration, refresh func(ctx context.Context) error, logger *zap.Logger) *Refresher {
	return &Refresher{
		deb:     debounce.New(quiet),
		refresh: refresh,
		logger:  logger,
	}
}

// Notify schedules a refresh. Safe to call from any mutation path.
func (r *Refresher) Notify() {
	r.deb.Trigger(func(ctx context.Context) {
		if err := r.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return // superseded by a newer burst
			}
			r.logger.Warn("Board refresh failed", zap.Error(err))
		}
	})
}

// Stop drops any pending refresh.
func (r *Refresher) Stop() {
	r.deb.Stop()
}
