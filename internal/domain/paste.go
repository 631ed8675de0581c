// Package domain contains domain models for the application.
package domain

import (
	"errors"
	"time"
)

// CreatePasteRequestDTO represents the expected request body for creating a paste.
// Limits are pointers so that an absent field means "unlimited" while an
// explicit zero is still rejected by validation.
type CreatePasteRequestDTO struct {
	Content    string `json:"content"`
	TTLSeconds *int   `json:"ttl_seconds"`
	MaxViews   *int   `json:"max_views"`
}

// CreatePasteResponseDTO is returned after a paste is stored.
type CreatePasteResponseDTO struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PasteResponseDTO is returned by a successful consume.
type PasteResponseDTO struct {
	Content        string  `json:"content"`
	RemainingViews *int    `json:"remaining_views"`
	ExpiresAt      *string `json:"expires_at"`
}

// Paste is a stored text submission with its expiry and view-limit metadata.
type Paste struct {
	ID        string
	Content   string
	CreatedAt time.Time
	// ExpiresAt is nil when the paste never expires by time.
	ExpiresAt *time.Time
	// MaxViews is nil when reads are unlimited.
	MaxViews *int
	Views    int
}

// Clone returns a copy of p that shares no pointers with it.
func (p Paste) Clone() Paste {
	if p.ExpiresAt != nil {
		exp := *p.ExpiresAt
		p.ExpiresAt = &exp
	}
	if p.MaxViews != nil {
		mv := *p.MaxViews
		p.MaxViews = &mv
	}
	return p
}

// Readable reports whether a consume at now would succeed, and if not, why.
// It does not mutate p; stores call it inside their critical section.
func (p Paste) Readable(now time.Time) error {
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return ErrPasteExpired
	}
	if p.MaxViews != nil && p.Views >= *p.MaxViews {
		return ErrViewLimitExceeded
	}
	return nil
}

// Snapshot returns the read-only view handed to readers.
func (p Paste) Snapshot() ConsumedPaste {
	c := ConsumedPaste{Content: p.Content}
	if p.MaxViews != nil {
		remaining := *p.MaxViews - p.Views
		c.RemainingViews = &remaining
	}
	if p.ExpiresAt != nil {
		exp := *p.ExpiresAt
		c.ExpiresAt = &exp
	}
	return c
}

// ConsumedPaste is the state of a paste right after a successful read.
type ConsumedPaste struct {
	Content        string
	RemainingViews *int
	ExpiresAt      *time.Time
}

var (
	// ErrInvalidContent is returned when paste content is empty.
	ErrInvalidContent = errors.New("invalid content")
	// ErrInvalidTTL is returned when ttl_seconds is present and below 1.
	ErrInvalidTTL = errors.New("invalid ttl_seconds")
	// ErrInvalidMaxViews is returned when max_views is present and below 1.
	ErrInvalidMaxViews = errors.New("invalid max_views")

	// ErrPasteNotFound is returned when no paste has the requested id.
	ErrPasteNotFound = errors.New("paste not found")
	// ErrPasteExpired is returned when the paste outlived its ttl.
	ErrPasteExpired = errors.New("paste expired")
	// ErrViewLimitExceeded is returned when the paste has no views left.
	ErrViewLimitExceeded = errors.New("view limit exceeded")
)

// IsGone reports whether err is one of the terminal consume failures.
// Callers outside the service must not be able to tell them apart.
func IsGone(err error) bool {
	return errors.Is(err, ErrPasteNotFound) ||
		errors.Is(err, ErrPasteExpired) ||
		errors.Is(err, ErrViewLimitExceeded)
}
