package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestPaste_Readable(t *testing.T) {
	created := time.UnixMilli(1000)
	exp := created.Add(60 * time.Second)

	tests := []struct {
		name  string
		paste Paste
		now   time.Time
		want  error
	}{
		{"no limits", Paste{CreatedAt: created}, created.Add(24 * time.Hour), nil},
		{"at expiry boundary", Paste{ExpiresAt: &exp}, exp, nil},
		{"one millisecond past expiry", Paste{ExpiresAt: &exp}, exp.Add(time.Millisecond), ErrPasteExpired},
		{"views left", Paste{MaxViews: intPtr(2), Views: 1}, created, nil},
		{"views exhausted", Paste{MaxViews: intPtr(2), Views: 2}, created, ErrViewLimitExceeded},
		{"expiry checked before views", Paste{ExpiresAt: &exp, MaxViews: intPtr(1), Views: 1}, exp.Add(time.Second), ErrPasteExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.paste.Readable(tt.now); !errors.Is(got, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPaste_Snapshot(t *testing.T) {
	exp := time.UnixMilli(61000)
	p := Paste{Content: "hello", ExpiresAt: &exp, MaxViews: intPtr(2), Views: 1}
	s := p.Snapshot()
	if s.Content != "hello" {
		t.Fatalf("content mismatch: %q", s.Content)
	}
	if s.RemainingViews == nil || *s.RemainingViews != 1 {
		t.Fatalf("remaining views mismatch: %v", s.RemainingViews)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(exp) {
		t.Fatalf("expires_at mismatch: %v", s.ExpiresAt)
	}

	unlimited := Paste{Content: "x"}.Snapshot()
	if unlimited.RemainingViews != nil || unlimited.ExpiresAt != nil {
		t.Fatalf("expected nil limits, got %+v", unlimited)
	}
}

func TestIsGone(t *testing.T) {
	for _, err := range []error{ErrPasteNotFound, ErrPasteExpired, ErrViewLimitExceeded, fmt.Errorf("consume: %w", ErrPasteExpired)} {
		if !IsGone(err) {
			t.Fatalf("expected %v to be gone", err)
		}
	}
	for _, err := range []error{nil, ErrInvalidContent, errors.New("boom")} {
		if IsGone(err) {
			t.Fatalf("did not expect %v to be gone", err)
		}
	}
}

func TestPaste_CloneDetachesPointers(t *testing.T) {
	exp := time.UnixMilli(5000)
	orig := Paste{ID: "a", ExpiresAt: &exp, MaxViews: intPtr(3)}
	c := orig.Clone()
	*orig.MaxViews = 99
	*orig.ExpiresAt = time.UnixMilli(0)
	if *c.MaxViews != 3 {
		t.Fatalf("clone shares max views pointer")
	}
	if !c.ExpiresAt.Equal(time.UnixMilli(5000)) {
		t.Fatalf("clone shares expires_at pointer")
	}
}
