package dreams_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/berningb/dream-speak-sub000/internal/adapters/storage/memory"
	"github.com/berningb/dream-speak-sub000/internal/app/dreams"
	"github.com/berningb/dream-speak-sub000/internal/cache"
	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// countingDreamStore counts reads so tests can tell cache hits from
// store round trips.
type countingDreamStore struct {
	*memory.DreamStore
	gets    atomic.Int64
	queries atomic.Int64
}

func (s *countingDreamStore) GetDream(ctx context.Context, id domain.DreamID) (*domain.Dream, error) {
	s.gets.Add(1)
	return s.DreamStore.GetDream(ctx, id)
}

func (s *countingDreamStore) QueryDreams(ctx context.Context, q domain.DreamQuery) (*domain.DreamPage, error) {
	s.queries.Add(1)
	return s.DreamStore.QueryDreams(ctx, q)
}

func newTestService() (*dreams.Service, *countingDreamStore, *cache.Cache) {
	store := &countingDreamStore{DreamStore: memory.NewDreamStore()}
	c := cache.New(0, 0, nil)
	svc := dreams.NewService(store, memory.NewUserStore(), c)
	return svc, store, c
}

func asUser(user string) context.Context {
	return domain.WithUser(context.Background(), domain.UserID(user))
}

func TestCreateAndGetDream(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := asUser("alice")

	created, err := svc.CreateDream(ctx, dreams.CreateDreamInput{
		Title:       "Flying over water",
		Description: "I was gliding above a calm sea.",
		Tags:        []string{"flying", "water"},
	})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	// Create populated the cache, so this read must not hit the store.
	got, err := svc.GetDream(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDream: %v", err)
	}
	if got.Title != created.Title {
		t.Fatalf("unexpected dream: %+v", got)
	}
	if n := store.gets.Load(); n != 0 {
		t.Fatalf("expected cached read, store was hit %d times", n)
	}
}

func TestGetDreamReadThrough(t *testing.T) {
	svc, store, c := newTestService()
	ctx := asUser("alice")

	created, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "t"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	c.InvalidateDream(created.ID)

	if _, err := svc.GetDream(ctx, created.ID); err != nil {
		t.Fatalf("GetDream after invalidation: %v", err)
	}
	if n := store.gets.Load(); n != 1 {
		t.Fatalf("expected exactly one store read, got %d", n)
	}

	// Second read comes from the freshly populated cache.
	if _, err := svc.GetDream(ctx, created.ID); err != nil {
		t.Fatalf("GetDream: %v", err)
	}
	if n := store.gets.Load(); n != 1 {
		t.Fatalf("expected cache hit on second read, store reads=%d", n)
	}
}

func TestPrivateDreamForbidden(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateDream(asUser("alice"), dreams.CreateDreamInput{Title: "secret"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	if _, err := svc.GetDream(asUser("bob"), created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetDream(context.Background(), created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("anonymous read of a private dream must fail, got %v", err)
	}
}

func TestPublicDreamVisibleToOthers(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateDream(asUser("alice"), dreams.CreateDreamInput{Title: "shared", Public: true})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	if _, err := svc.GetDream(asUser("bob"), created.ID); err != nil {
		t.Fatalf("public dream should be readable: %v", err)
	}
}

func TestUpdateDreamRefreshesCache(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := asUser("alice")

	created, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "before"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	title := "after"
	if _, err := svc.UpdateDream(ctx, created.ID, dreams.UpdateDreamInput{Title: &title}); err != nil {
		t.Fatalf("UpdateDream: %v", err)
	}

	got, err := svc.GetDream(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDream: %v", err)
	}
	if got.Title != "after" {
		t.Fatalf("cache served a stale dream: %q", got.Title)
	}
}

func TestUpdateDreamOwnership(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateDream(asUser("alice"), dreams.CreateDreamInput{Title: "mine", Public: true})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	title := "stolen"
	if _, err := svc.UpdateDream(asUser("bob"), created.ID, dreams.UpdateDreamInput{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteDreamInvalidates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := asUser("alice")

	created, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "gone soon"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	if err := svc.DeleteDream(ctx, created.ID); err != nil {
		t.Fatalf("DeleteDream: %v", err)
	}

	if _, err := svc.GetDream(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListDreamsCachesPage(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := asUser("alice")

	if _, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "one", Public: true}); err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	q := domain.DreamQuery{Kind: domain.ListPublic, PageSize: 10}
	page1, err := svc.ListDreams(ctx, q)
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if len(page1.Dreams) != 1 {
		t.Fatalf("expected 1 dream, got %d", len(page1.Dreams))
	}

	if _, err := svc.ListDreams(ctx, q); err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if n := store.queries.Load(); n != 1 {
		t.Fatalf("second list should be cached, store queries=%d", n)
	}
}

func TestListMineScopesToCaller(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.CreateDream(asUser("alice"), dreams.CreateDreamInput{Title: "alice's"}); err != nil {
		t.Fatalf("CreateDream: %v", err)
	}
	if _, err := svc.CreateDream(asUser("bob"), dreams.CreateDreamInput{Title: "bob's"}); err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	page, err := svc.ListDreams(asUser("alice"), domain.DreamQuery{Kind: domain.ListMine, PageSize: 10})
	if err != nil {
		t.Fatalf("ListDreams: %v", err)
	}
	if len(page.Dreams) != 1 || page.Dreams[0].UserID != "alice" {
		t.Fatalf("mine listing leaked other users' dreams: %+v", page.Dreams)
	}

	if _, err := svc.ListDreams(context.Background(), domain.DreamQuery{Kind: domain.ListMine}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestListAllMineWriteThrough(t *testing.T) {
	svc, store, c := newTestService()
	ctx := asUser("alice")

	created, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "t"})
	if err != nil {
		t.Fatalf("CreateDream: %v", err)
	}

	c.Reset()

	all, err := svc.ListAllMine(ctx)
	if err != nil {
		t.Fatalf("ListAllMine: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 dream, got %d", len(all))
	}

	// The full list seeded the per-dream slot, so this is a cache hit.
	if _, err := svc.GetDream(ctx, created.ID); err != nil {
		t.Fatalf("GetDream: %v", err)
	}
	if n := store.gets.Load(); n != 0 {
		t.Fatalf("expected write-through hit, store reads=%d", n)
	}
}

func TestListPagination(t *testing.T) {
	svc, _, c := newTestService()
	ctx := asUser("alice")

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateDream(ctx, dreams.CreateDreamInput{Title: "d", Public: true}); err != nil {
			t.Fatalf("CreateDream: %v", err)
		}
	}
	c.Reset()

	page1, err := svc.ListDreams(ctx, domain.DreamQuery{Kind: domain.ListPublic, PageSize: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Dreams) != 2 || !page1.HasMore || page1.Cursor == "" {
		t.Fatalf("unexpected page 1: len=%d hasMore=%v", len(page1.Dreams), page1.HasMore)
	}

	page2, err := svc.ListDreams(ctx, domain.DreamQuery{Kind: domain.ListPublic, PageSize: 2, Cursor: page1.Cursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Dreams) != 2 || !page2.HasMore {
		t.Fatalf("unexpected page 2: len=%d hasMore=%v", len(page2.Dreams), page2.HasMore)
	}

	page3, err := svc.ListDreams(ctx, domain.DreamQuery{Kind: domain.ListPublic, PageSize: 2, Cursor: page2.Cursor})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3.Dreams) != 1 || page3.HasMore {
		t.Fatalf("unexpected page 3: len=%d hasMore=%v", len(page3.Dreams), page3.HasMore)
	}
}
