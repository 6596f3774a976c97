package firestore

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/iterator"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

func sliceNext(dreams []*domain.Dream) func() (*domain.Dream, error) {
	i := 0
	return func() (*domain.Dream, error) {
		if i >= len(dreams) {
			return nil, iterator.Done
		}
		d := dreams[i]
		i++
		return d, nil
	}
}

func numberedDreams(n int) []*domain.Dream {
	out := make([]*domain.Dream, n)
	for i := range out {
		out[i] = &domain.Dream{ID: domain.DreamID(fmt.Sprintf("d%d", i+1)), UserID: "alice"}
	}
	return out
}

func TestCollectPageTrimsAndSetsCursor(t *testing.T) {
	page, err := collectPage(3, sliceNext(numberedDreams(5)))
	if err != nil {
		t.Fatalf("collectPage: %v", err)
	}
	if len(page.Dreams) != 3 {
		t.Fatalf("expected 3 dreams, got %d", len(page.Dreams))
	}
	if !page.HasMore {
		t.Fatalf("expected HasMore with 5 dreams and page size 3")
	}
	if page.Cursor != "d3" {
		t.Fatalf("expected cursor d3, got %q", page.Cursor)
	}
}

func TestCollectPageExactFitHasNoMore(t *testing.T) {
	page, err := collectPage(3, sliceNext(numberedDreams(3)))
	if err != nil {
		t.Fatalf("collectPage: %v", err)
	}
	if len(page.Dreams) != 3 || page.HasMore || page.Cursor != "" {
		t.Fatalf("exact fit must return everything without a cursor: %+v", page)
	}
}

func TestCollectPageEmptySource(t *testing.T) {
	page, err := collectPage(3, sliceNext(nil))
	if err != nil {
		t.Fatalf("collectPage: %v", err)
	}
	if len(page.Dreams) != 0 || page.HasMore || page.Cursor != "" {
		t.Fatalf("empty source must yield an empty page: %+v", page)
	}
}

func TestCollectPagePropagatesErrors(t *testing.T) {
	boom := errors.New("deadline exceeded")
	i := 0
	next := func() (*domain.Dream, error) {
		i++
		if i > 2 {
			return nil, boom
		}
		return &domain.Dream{ID: domain.DreamID(fmt.Sprintf("d%d", i))}, nil
	}

	if _, err := collectPage(5, next); !errors.Is(err, boom) {
		t.Fatalf("expected the source error back, got %v", err)
	}
}

// A source that drops non-matching rows (multi-tag queries filter
// after decode) must still fill the page and report HasMore from the
// match count, not the raw row count.
func TestCollectPageWithSparseMatches(t *testing.T) {
	var raw []*domain.Dream
	for i := 1; i <= 12; i++ {
		d := &domain.Dream{ID: domain.DreamID(fmt.Sprintf("d%d", i)), UserID: "alice", Tags: []string{"flying"}}
		if i%4 == 0 {
			d.Tags = append(d.Tags, "lucid")
		}
		raw = append(raw, d)
	}

	want := []string{"lucid"}
	underlying := sliceNext(raw)
	next := func() (*domain.Dream, error) {
		for {
			d, err := underlying()
			if err != nil {
				return nil, err
			}
			if !hasAllTags(d.Tags, want) {
				continue
			}
			return d, nil
		}
	}

	page, err := collectPage(2, next)
	if err != nil {
		t.Fatalf("collectPage: %v", err)
	}
	if len(page.Dreams) != 2 {
		t.Fatalf("expected a full page of 2 matches, got %d", len(page.Dreams))
	}
	if page.Dreams[0].ID != "d4" || page.Dreams[1].ID != "d8" {
		t.Fatalf("unexpected matches: %s, %s", page.Dreams[0].ID, page.Dreams[1].ID)
	}
	if !page.HasMore {
		t.Fatalf("d12 also matches, so HasMore must be true")
	}
	if page.Cursor != "d8" {
		t.Fatalf("cursor must be the last returned match, got %q", page.Cursor)
	}
}

func TestHasAllTags(t *testing.T) {
	cases := []struct {
		name string
		have []string
		want []string
		ok   bool
	}{
		{"no filter", []string{"a"}, nil, true},
		{"subset", []string{"a", "b", "c"}, []string{"b", "c"}, true},
		{"missing one", []string{"a", "b"}, []string{"b", "c"}, false},
		{"empty dream tags", nil, []string{"a"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasAllTags(tc.have, tc.want); got != tc.ok {
				t.Fatalf("hasAllTags(%v, %v) = %v, want %v", tc.have, tc.want, got, tc.ok)
			}
		})
	}
}
