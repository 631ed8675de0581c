// Package repository defines the paste store contract shared by all backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/roguepikachu/vanish/internal/domain"
)

// ErrDuplicateID is returned by Insert when the id is already taken.
var ErrDuplicateID = errors.New("paste id already exists")

// PasteRepository owns the id -> paste mapping.
//
// Consume must run lookup, eligibility check and view increment as one
// indivisible step per id: concurrent consumers of a paste with one view left
// must see exactly one success. Failed consumes never mutate the paste.
type PasteRepository interface {
	Insert(ctx context.Context, p domain.Paste) error
	Consume(ctx context.Context, id string, now time.Time) (domain.ConsumedPaste, error)
}

// Sweeper is implemented by stores that can drop pastes which are no longer
// readable at now. It returns the number of pastes removed.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}
