// Package service contains business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/internal/metrics"
	"github.com/roguepikachu/vanish/internal/repository"
)

// maxInsertAttempts bounds retries when a generated id is already taken.
const maxInsertAttempts = 3

// maxExpiry is the latest expiry a paste may have. expires_at is rendered as a
// four-digit-year ISO timestamp, and every store can hold it.
var maxExpiry = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// expiryAfter returns now plus ttlSeconds whole seconds. It avoids
// time.Duration, which overflows past roughly 292 years.
func expiryAfter(now time.Time, ttlSeconds int) (time.Time, error) {
	if int64(ttlSeconds) > maxExpiry.Unix()-now.Unix() {
		return time.Time{}, domain.ErrInvalidTTL
	}
	return time.Unix(now.Unix()+int64(ttlSeconds), int64(now.Nanosecond())).In(now.Location()), nil
}

// Service provides paste-related business logic.
type Service struct {
	repo  repository.PasteRepository
	clock Clock
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides id generation. Production ids must stay
// unguessable; this exists for tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a new Service with the given PasteRepository and Clock.
func NewService(repo repository.PasteRepository, clock Clock) *Service {
	return NewServiceWithOptions(repo, clock)
}

// NewServiceWithOptions is NewService with functional options applied.
func NewServiceWithOptions(repo repository.PasteRepository, clock Clock, opts ...Option) *Service {
	s := &Service{repo: repo, clock: clock, newID: generateID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateID returns a random UUIDv4. The uuid package reads crypto/rand, so
// ids cannot be enumerated.
func generateID() string {
	return uuid.NewString()
}

func validate(content string, ttlSeconds, maxViews *int) error {
	if content == "" {
		return domain.ErrInvalidContent
	}
	if ttlSeconds != nil && *ttlSeconds < 1 {
		return domain.ErrInvalidTTL
	}
	if maxViews != nil && *maxViews < 1 {
		return domain.ErrInvalidMaxViews
	}
	return nil
}

// CreatePaste validates the input and stores a new paste. A nil ttlSeconds or
// maxViews means unlimited along that dimension; zero is rejected.
func (s *Service) CreatePaste(ctx context.Context, content string, ttlSeconds, maxViews *int) (domain.Paste, error) {
	if err := validate(content, ttlSeconds, maxViews); err != nil {
		return domain.Paste{}, err
	}
	now := nowFor(ctx, s.clock)
	p := domain.Paste{
		Content:   content,
		CreatedAt: now,
	}
	if ttlSeconds != nil {
		exp, err := expiryAfter(now, *ttlSeconds)
		if err != nil {
			return domain.Paste{}, err
		}
		p.ExpiresAt = &exp
	}
	if maxViews != nil {
		mv := *maxViews
		p.MaxViews = &mv
	}

	for attempt := 1; ; attempt++ {
		p.ID = s.newID()
		err := s.repo.Insert(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt == maxInsertAttempts {
			return domain.Paste{}, fmt.Errorf("insert paste: %w", err)
		}
	}
	metrics.PastesCreated.Inc()
	return p, nil
}

// ConsumePaste reads a paste, counting one view. Expiry is evaluated at the
// time pinned on ctx, if any, otherwise at the service clock.
func (s *Service) ConsumePaste(ctx context.Context, id string) (domain.ConsumedPaste, error) {
	now := nowFor(ctx, s.clock)
	got, err := s.repo.Consume(ctx, id, now)
	metrics.PasteConsumes.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if domain.IsGone(err) {
			return domain.ConsumedPaste{}, err
		}
		return domain.ConsumedPaste{}, fmt.Errorf("consume paste: %w", err)
	}
	return got, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrPasteNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrPasteExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, domain.ErrViewLimitExceeded):
		return metrics.OutcomeViewLimit
	default:
		return metrics.OutcomeError
	}
}
