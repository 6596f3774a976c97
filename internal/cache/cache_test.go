package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	c := New(DefaultDreamTTL, DefaultListTTL, nil)
	c.now = clock.Now
	return c, clock
}

func dream(id, user string) *domain.Dream {
	return &domain.Dream{
		ID:     domain.DreamID(id),
		UserID: domain.UserID(user),
		Title:  "dream " + id,
	}
}

func TestDreamTTL(t *testing.T) {
	c, clock := newTestCache()

	c.PutDream(dream("d1", "alice"))

	clock.Advance(DefaultDreamTTL - time.Second)
	if got, ok := c.GetDream("d1"); !ok || got.ID != "d1" {
		t.Fatalf("expected hit just under TTL, got ok=%v", ok)
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.GetDream("d1"); ok {
		t.Fatalf("expected miss just over TTL")
	}
}

func TestPutDreamNoopOnEmptyID(t *testing.T) {
	c, _ := newTestCache()

	c.PutDream(nil)
	c.PutDream(&domain.Dream{})

	if _, ok := c.GetDream(""); ok {
		t.Fatalf("empty-id put must not cache anything")
	}
}

func TestListTTLShorterThanDreamTTL(t *testing.T) {
	c, clock := newTestCache()

	q := domain.DreamQuery{Kind: domain.ListPublic, PageSize: 10}
	c.PutList(q, &domain.DreamPage{Dreams: []*domain.Dream{dream("d1", "alice")}, HasMore: false})

	clock.Advance(DefaultListTTL - time.Second)
	if _, ok := c.GetList(q); !ok {
		t.Fatalf("expected list hit just under list TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.GetList(q); ok {
		t.Fatalf("expected list miss just over list TTL")
	}
}

func TestListKeyIsolation(t *testing.T) {
	c, _ := newTestCache()

	base := domain.DreamQuery{Kind: domain.ListMine, UserID: "alice", Tags: []string{"x"}, PageSize: 10}
	c.PutList(base, &domain.DreamPage{Dreams: []*domain.Dream{dream("d1", "alice")}})

	cases := []struct {
		name string
		q    domain.DreamQuery
	}{
		{"other user", domain.DreamQuery{Kind: domain.ListMine, UserID: "bob", Tags: []string{"x"}, PageSize: 10}},
		{"other tags", domain.DreamQuery{Kind: domain.ListMine, UserID: "alice", Tags: []string{"y"}, PageSize: 10}},
		{"other kind", domain.DreamQuery{Kind: domain.ListPublic, UserID: "alice", Tags: []string{"x"}, PageSize: 10}},
		{"other page size", domain.DreamQuery{Kind: domain.ListMine, UserID: "alice", Tags: []string{"x"}, PageSize: 20}},
		{"other cursor", domain.DreamQuery{Kind: domain.ListMine, UserID: "alice", Tags: []string{"x"}, PageSize: 10, Cursor: "c2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := c.GetList(tc.q); ok {
				t.Fatalf("query %+v must not hit alice's entry", tc.q)
			}
		})
	}

	if _, ok := c.GetList(base); !ok {
		t.Fatalf("original query must still hit")
	}
}

func TestFilterOrderIndependence(t *testing.T) {
	c, _ := newTestCache()

	stored := domain.DreamQuery{Kind: domain.ListPublic, Tags: []string{"a", "b"}, PageSize: 10}
	c.PutList(stored, &domain.DreamPage{Dreams: []*domain.Dream{dream("d1", "alice")}})

	reordered := domain.DreamQuery{Kind: domain.ListPublic, Tags: []string{"b", "a"}, PageSize: 10}
	page, ok := c.GetList(reordered)
	if !ok {
		t.Fatalf("tag order must not change the cache key")
	}
	if len(page.Dreams) != 1 || page.Dreams[0].ID != "d1" {
		t.Fatalf("unexpected page contents: %+v", page)
	}
}

func TestFullListWriteThrough(t *testing.T) {
	c, _ := newTestCache()

	d1 := dream("d1", "alice")
	d2 := dream("d2", "alice")
	c.PutFullList(domain.ListMine, "alice", []*domain.Dream{d1, d2})

	got, ok := c.GetDream("d1")
	if !ok {
		t.Fatalf("expected d1 in the dream cache after PutFullList")
	}
	if got != d1 {
		t.Fatalf("expected the same dream back, got %+v", got)
	}

	all, ok := c.GetFullList(domain.ListMine, "alice")
	if !ok || len(all) != 2 {
		t.Fatalf("expected full list of 2, got ok=%v len=%d", ok, len(all))
	}

	if _, ok := c.GetFullList(domain.ListMine, "bob"); ok {
		t.Fatalf("full list must be scoped to its user")
	}
}

func TestResetClearsEverything(t *testing.T) {
	c, _ := newTestCache()

	q := domain.DreamQuery{Kind: domain.ListMine, UserID: "alice", PageSize: 10}
	c.PutDream(dream("d1", "alice"))
	c.PutList(q, &domain.DreamPage{Dreams: []*domain.Dream{dream("d2", "alice")}})
	c.PutFullList(domain.ListMine, "alice", []*domain.Dream{dream("d3", "alice")})

	c.Reset()

	if _, ok := c.GetDream("d1"); ok {
		t.Fatalf("dream survived reset")
	}
	if _, ok := c.GetDream("d3"); ok {
		t.Fatalf("write-through dream survived reset")
	}
	if _, ok := c.GetList(q); ok {
		t.Fatalf("list survived reset")
	}
	if _, ok := c.GetFullList(domain.ListMine, "alice"); ok {
		t.Fatalf("full list survived reset")
	}
}

func TestResetSafeUnderConcurrentWrites(t *testing.T) {
	c := New(DefaultDreamTTL, DefaultListTTL, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			id := "d" + strconv.Itoa(i%8)
			c.PutDream(dream(id, "alice"))
			c.PutFullList(domain.ListMine, "alice", []*domain.Dream{dream(id, "alice")})
		}
	}()

	for i := 0; i < 500; i++ {
		c.Reset()
	}
	close(stop)
	wg.Wait()

	c.Reset()
	for i := 0; i < 8; i++ {
		if _, ok := c.GetDream(domain.DreamID("d" + strconv.Itoa(i))); ok {
			t.Fatalf("dream d%d survived final reset", i)
		}
	}
	if _, ok := c.GetFullList(domain.ListMine, "alice"); ok {
		t.Fatalf("full list survived final reset")
	}
}

func TestInvalidateDreamIsSingleEntry(t *testing.T) {
	c, _ := newTestCache()

	c.PutDream(dream("d1", "alice"))
	c.PutDream(dream("d2", "alice"))

	c.InvalidateDream("d1")

	if _, ok := c.GetDream("d1"); ok {
		t.Fatalf("d1 should be gone")
	}
	if _, ok := c.GetDream("d2"); !ok {
		t.Fatalf("d2 should survive")
	}
}

func TestOverwriteRefreshesTimestamp(t *testing.T) {
	c, clock := newTestCache()

	c.PutDream(dream("d1", "alice"))
	clock.Advance(DefaultDreamTTL + time.Second)

	if _, ok := c.GetDream("d1"); ok {
		t.Fatalf("expected stale miss before overwrite")
	}

	c.PutDream(dream("d1", "alice"))
	if _, ok := c.GetDream("d1"); !ok {
		t.Fatalf("overwrite must refresh the entry")
	}
}
