package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/internal/repository"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestInsert_RejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	r := NewPasteRepository()
	if err := r.Insert(ctx, domain.Paste{ID: "a", Content: "one"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := r.Insert(ctx, domain.Paste{ID: "a", Content: "two"}); !errors.Is(err, repository.ErrDuplicateID) {
		t.Fatalf("want ErrDuplicateID, got %v", err)
	}
	got, err := r.Consume(ctx, "a", time.Now())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.Content != "one" {
		t.Fatalf("original paste was overwritten: %q", got.Content)
	}
}

func TestConsume_NotFound(t *testing.T) {
	r := NewPasteRepository()
	if _, err := r.Consume(context.Background(), "missing", time.Now()); !errors.Is(err, domain.ErrPasteNotFound) {
		t.Fatalf("want ErrPasteNotFound, got %v", err)
	}
}

func TestConsume_ViewLimit(t *testing.T) {
	ctx := context.Background()
	const n = 3
	r := NewPasteRepository(WithItems(domain.Paste{ID: "v", Content: "x", MaxViews: intPtr(n)}))
	now := time.UnixMilli(1000)
	for k := 1; k <= n; k++ {
		got, err := r.Consume(ctx, "v", now)
		if err != nil {
			t.Fatalf("consume %d: %v", k, err)
		}
		if got.RemainingViews == nil || *got.RemainingViews != n-k {
			t.Fatalf("consume %d: want remaining %d, got %v", k, n-k, got.RemainingViews)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := r.Consume(ctx, "v", now); !errors.Is(err, domain.ErrViewLimitExceeded) {
			t.Fatalf("want ErrViewLimitExceeded, got %v", err)
		}
	}
	if views, _ := r.Views("v"); views != n {
		t.Fatalf("failed consumes changed views: %d", views)
	}
}

func TestConsume_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	created := time.UnixMilli(1000)
	exp := created.Add(60 * time.Second)
	r := NewPasteRepository(WithItems(domain.Paste{ID: "t", Content: "x", CreatedAt: created, ExpiresAt: timePtr(exp)}))

	got, err := r.Consume(ctx, "t", exp)
	if err != nil {
		t.Fatalf("consume at boundary: %v", err)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("expires_at mismatch: %v", got.ExpiresAt)
	}
	if got.RemainingViews != nil {
		t.Fatalf("unlimited paste reported remaining views: %v", *got.RemainingViews)
	}
	if _, err := r.Consume(ctx, "t", exp.Add(time.Millisecond)); !errors.Is(err, domain.ErrPasteExpired) {
		t.Fatalf("want ErrPasteExpired, got %v", err)
	}
	if _, err := r.Consume(ctx, "t", exp.Add(time.Hour)); !errors.Is(err, domain.ErrPasteExpired) {
		t.Fatalf("want ErrPasteExpired later too, got %v", err)
	}
	if views, _ := r.Views("t"); views != 1 {
		t.Fatalf("want 1 view, got %d", views)
	}
}

func TestConsume_ConcurrentSingleView(t *testing.T) {
	ctx := context.Background()
	r := NewPasteRepository(WithItems(domain.Paste{ID: "once", Content: "secret", MaxViews: intPtr(1)}))
	now := time.Now()

	const readers = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		limited   int
	)
	start := make(chan struct{})
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.Consume(ctx, "once", now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrViewLimitExceeded):
				limited++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || limited != readers-1 {
		t.Fatalf("want 1 success and %d limited, got %d and %d", readers-1, successes, limited)
	}
	if views, _ := r.Views("once"); views != 1 {
		t.Fatalf("want views 1, got %d", views)
	}
}

func TestInsert_CopiesInput(t *testing.T) {
	ctx := context.Background()
	r := NewPasteRepository()
	mv := 1
	if err := r.Insert(ctx, domain.Paste{ID: "c", Content: "x", MaxViews: &mv}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	mv = 10
	if _, err := r.Consume(ctx, "c", time.Now()); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := r.Consume(ctx, "c", time.Now()); !errors.Is(err, domain.ErrViewLimitExceeded) {
		t.Fatalf("caller mutation leaked into store, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(100_000)
	r := NewPasteRepository(WithItems(
		domain.Paste{ID: "live", Content: "x"},
		domain.Paste{ID: "expired", Content: "x", ExpiresAt: timePtr(now.Add(-time.Second))},
		domain.Paste{ID: "used", Content: "x", MaxViews: intPtr(1), Views: 1},
		domain.Paste{ID: "boundary", Content: "x", ExpiresAt: timePtr(now)},
	))
	n, err := r.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 removed, got %d", n)
	}
	if r.Len() != 2 {
		t.Fatalf("want 2 left, got %d", r.Len())
	}
	if _, err := r.Consume(ctx, "expired", now); !errors.Is(err, domain.ErrPasteNotFound) {
		t.Fatalf("swept paste should be gone, got %v", err)
	}
	if _, err := r.Consume(ctx, "boundary", now); err != nil {
		t.Fatalf("boundary paste should survive sweep: %v", err)
	}
}
