// Package memory provides the in-process paste store used by default.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/internal/repository"
)

// PasteRepository implements repository.PasteRepository with a map guarded
// by a single mutex. Every operation is O(1) and holds the lock briefly.
type PasteRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Paste
}

// Option configures the repository.
type Option func(*PasteRepository)

// WithItems seeds the repository with the provided pastes (by ID).
func WithItems(items ...domain.Paste) Option {
	return func(r *PasteRepository) {
		for _, p := range items {
			c := p.Clone()
			r.byID[c.ID] = &c
		}
	}
}

// NewPasteRepository creates a new empty in-memory store.
func NewPasteRepository(opts ...Option) *PasteRepository {
	r := &PasteRepository{byID: make(map[string]*domain.Paste)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores a copy of p so callers cannot mutate it afterwards.
func (r *PasteRepository) Insert(_ context.Context, p domain.Paste) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return repository.ErrDuplicateID
	}
	c := p.Clone()
	r.byID[c.ID] = &c
	return nil
}

// Consume checks eligibility at now and, if readable, counts one view.
func (r *PasteRepository) Consume(_ context.Context, id string, now time.Time) (domain.ConsumedPaste, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ConsumedPaste{}, domain.ErrPasteNotFound
	}
	if err := p.Readable(now); err != nil {
		return domain.ConsumedPaste{}, err
	}
	p.Views++
	return p.Snapshot(), nil
}

// Views returns the current view count of id, for inspection in tests and tooling.
func (r *PasteRepository) Views(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return 0, false
	}
	return p.Views, true
}

// Len returns the number of stored pastes, readable or not.
func (r *PasteRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Sweep drops pastes that can never be read again as of now and returns how
// many were removed.
func (r *PasteRepository) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, p := range r.byID {
		if p.Readable(now) != nil {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

var (
	_ repository.PasteRepository = (*PasteRepository)(nil)
	_ repository.Sweeper         = (*PasteRepository)(nil)
)
