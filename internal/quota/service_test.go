package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/berningb/dream-speak-sub000/internal/adapters/storage/memory"
	"github.com/berningb/dream-speak-sub000/internal/domain"
)

func authedCtx(user string) context.Context {
	return domain.WithUser(context.Background(), domain.UserID(user))
}

func newTestService(limits map[domain.ActionType]int) *Service {
	svc := NewService(memory.NewUsageStore(), limits, nil)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCheckAndConsumeRequiresUser(t *testing.T) {
	svc := newTestService(nil)

	err := svc.CheckAndConsume(context.Background(), domain.ActionChat)
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCheckAndConsumeUnknownAction(t *testing.T) {
	svc := newTestService(nil)

	err := svc.CheckAndConsume(authedCtx("alice"), domain.ActionType("teleport"))
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestQuotaCeiling(t *testing.T) {
	svc := newTestService(map[domain.ActionType]int{domain.ActionImage: 5})
	ctx := authedCtx("alice")

	// Calls 1-5 succeed, 6 and 7 fail with current==limit==5.
	for i := 1; i <= 5; i++ {
		if err := svc.CheckAndConsume(ctx, domain.ActionImage); err != nil {
			t.Fatalf("call %d: unexpected error %v", i, err)
		}
	}

	for i := 6; i <= 7; i++ {
		err := svc.CheckAndConsume(ctx, domain.ActionImage)
		var limitErr *domain.LimitExceededError
		if !errors.As(err, &limitErr) {
			t.Fatalf("call %d: expected LimitExceededError, got %v", i, err)
		}
		if limitErr.Current != 5 || limitErr.Limit != 5 {
			t.Fatalf("call %d: expected {current:5, limit:5}, got {current:%d, limit:%d}",
				i, limitErr.Current, limitErr.Limit)
		}
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage[domain.ActionImage] != 5 {
		t.Fatalf("count advanced past the limit: %d", usage[domain.ActionImage])
	}
}

func TestQuotaDayIsolation(t *testing.T) {
	store := memory.NewUsageStore()
	svc := NewService(store, map[domain.ActionType]int{domain.ActionChat: 1}, nil)

	day := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }

	ctx := authedCtx("alice")
	if err := svc.CheckAndConsume(ctx, domain.ActionChat); err != nil {
		t.Fatalf("day D call 1: %v", err)
	}
	if err := svc.CheckAndConsume(ctx, domain.ActionChat); err == nil {
		t.Fatalf("day D call 2 should hit the limit")
	}

	// Day rolls over: new key, counts start at zero.
	day = day.Add(2 * time.Minute)
	if err := svc.CheckAndConsume(ctx, domain.ActionChat); err != nil {
		t.Fatalf("day D+1 call 1: %v", err)
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage[domain.ActionChat] != 1 {
		t.Fatalf("expected fresh count 1 on the new day, got %d", usage[domain.ActionChat])
	}
}

func TestQuotaActionIsolation(t *testing.T) {
	svc := newTestService(map[domain.ActionType]int{
		domain.ActionChat:    1,
		domain.ActionExtract: 1,
	})
	ctx := authedCtx("alice")

	if err := svc.CheckAndConsume(ctx, domain.ActionChat); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if err := svc.CheckAndConsume(ctx, domain.ActionExtract); err != nil {
		t.Fatalf("extract must have its own counter: %v", err)
	}
}

func TestQuotaUserIsolation(t *testing.T) {
	svc := newTestService(map[domain.ActionType]int{domain.ActionChat: 1})

	if err := svc.CheckAndConsume(authedCtx("alice"), domain.ActionChat); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := svc.CheckAndConsume(authedCtx("bob"), domain.ActionChat); err != nil {
		t.Fatalf("bob must not be affected by alice's usage: %v", err)
	}
}

func TestConcurrentCheckAndConsume(t *testing.T) {
	const limit = 20
	svc := newTestService(map[domain.ActionType]int{domain.ActionChat: limit})
	ctx := authedCtx("alice")

	var wg sync.WaitGroup
	results := make(chan error, limit+5)

	for i := 0; i < limit+5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.CheckAndConsume(ctx, domain.ActionChat)
		}()
	}
	wg.Wait()
	close(results)

	var successes, denials int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var limitErr *domain.LimitExceededError
			if !errors.As(err, &limitErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			denials++
		}
	}

	if successes != limit || denials != 5 {
		t.Fatalf("expected exactly %d successes and 5 denials, got %d/%d", limit, successes, denials)
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage[domain.ActionChat] != limit {
		t.Fatalf("count must never pass the limit, got %d", usage[domain.ActionChat])
	}
}

type failingUsageStore struct{}

func (failingUsageStore) IncrementIfUnder(context.Context, domain.UserID, string, domain.ActionType, int) (int, error) {
	return 0, errors.New("store unavailable")
}

func (failingUsageStore) GetUsage(context.Context, domain.UserID, string) (map[domain.ActionType]int, error) {
	return nil, errors.New("store unavailable")
}

func TestFailsClosedOnStoreError(t *testing.T) {
	svc := NewService(failingUsageStore{}, nil, nil)

	err := svc.CheckAndConsume(authedCtx("alice"), domain.ActionChat)
	if err == nil {
		t.Fatalf("a store failure must block the action")
	}
	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		t.Fatalf("store failure must not masquerade as a quota denial")
	}
}

func TestUsageZeroWithoutRecord(t *testing.T) {
	svc := newTestService(nil)

	usage, err := svc.Usage(authedCtx("alice"))
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	for _, action := range domain.ActionTypes() {
		if usage[action] != 0 {
			t.Fatalf("expected zero count for %s, got %d", action, usage[action])
		}
	}
}

func TestLimitsAreCopied(t *testing.T) {
	svc := newTestService(nil)

	limits := svc.Limits()
	limits[domain.ActionImage] = 9999

	if svc.Limits()[domain.ActionImage] == 9999 {
		t.Fatalf("Limits must return a copy")
	}
	if got := svc.Limits()[domain.ActionImage]; got != 5 {
		t.Fatalf("expected default image limit 5, got %d", got)
	}
}
