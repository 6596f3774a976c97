// Package quota enforces the per-user daily caps on AI-backed actions.
//
// The check-then-increment runs as a single atomic transaction inside
// the UsageStore. This is the one place where correctness depends on
// atomicity: two concurrent calls for the same (user, action, day) must
// never both consume the last allowed slot, even from different
// processes. The limiter therefore never retries a failed transaction
// itself; callers must not either.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/metrics"
)

const dateLayout = "2006-01-02"

// DateKey renders the UTC calendar day a time falls on. Anchoring the
// quota window to server UTC keeps it consistent across a user's
// devices and out of reach of client clocks.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// DefaultLimits are policy, not mechanism: any positive integer per
// action works.
func DefaultLimits() map[domain.ActionType]int {
	return map[domain.ActionType]int{
		domain.ActionChat:      30,
		domain.ActionExtract:   10,
		domain.ActionInterpret: 20,
		domain.ActionDescribe:  10,
		domain.ActionImage:     5,
	}
}

// Service is the rate limiter. It fails closed: any uncertainty about
// remaining quota blocks the action rather than risking cost overrun.
type Service struct {
	store  domain.UsageStore
	limits map[domain.ActionType]int
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds a limiter over the given store. A nil limits map
// falls back to DefaultLimits.
func NewService(store domain.UsageStore, limits map[domain.ActionType]int, logger *zap.Logger) *Service {
	if limits == nil {
		limits = DefaultLimits()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	own := make(map[domain.ActionType]int, len(limits))
	for k, v := range limits {
		if !domain.ValidAction(k) {
			logger.Warn("ignoring limit for unknown action", zap.String("action", string(k)))
			continue
		}
		own[k] = v
	}
	return &Service{
		store:  store,
		limits: own,
		now:    time.Now,
		logger: logger,
	}
}

// CheckAndConsume consumes one unit of today's quota for the action, on
// behalf of the authenticated user in ctx.
//
// Errors: domain.ErrNotAuthenticated without a user in ctx;
// *domain.ConfigError when the action has no positive configured limit;
// *domain.LimitExceededError (carrying current/limit) when the day's
// cap is reached, with no mutation performed; any store error verbatim.
func (s *Service) CheckAndConsume(ctx context.Context, action domain.ActionType) error {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}

	limit, ok := s.limits[action]
	if !ok || limit <= 0 {
		return &domain.ConfigError{Msg: fmt.Sprintf("no positive limit configured for action %q", action)}
	}

	dateKey := DateKey(s.now())

	current, err := s.store.IncrementIfUnder(ctx, userID, dateKey, action, limit)
	if err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			metrics.QuotaDeniedTotal.WithLabelValues(string(action)).Inc()
			s.logger.Info("quota denied",
				zap.String("user_id", string(userID)),
				zap.String("action", string(action)),
				zap.Int("current", limitErr.Current),
				zap.Int("limit", limitErr.Limit),
			)
			return err
		}
		// Store failure: fail closed, surface as-is. No retry here;
		// retrying a quota transaction risks double-counting.
		s.logger.Error("quota transaction failed",
			zap.String("user_id", string(userID)),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("quota consumed",
		zap.String("user_id", string(userID)),
		zap.String("action", string(action)),
		zap.Int("current", current),
		zap.Int("limit", limit),
	)
	return nil
}

// Usage returns today's counts for the authenticated user, all zero
// when no counter document exists yet.
func (s *Service) Usage(ctx context.Context) (map[domain.ActionType]int, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return s.store.GetUsage(ctx, userID, DateKey(s.now()))
}

// Limits returns a copy of the static configured limits. No store access.
func (s *Service) Limits() map[domain.ActionType]int {
	out := make(map[domain.ActionType]int, len(s.limits))
	for k, v := range s.limits {
		out[k] = v
	}
	return out
}
