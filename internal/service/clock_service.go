package service

import (
	"context"
	"time"

	"github.com/roguepikachu/vanish/pkg/ctxutil"
)

// Clock is an interface for getting the current time. Useful for testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// nowFor returns the time pinned on ctx by the test clock middleware, or the
// clock reading when nothing is pinned.
func nowFor(ctx context.Context, clock Clock) time.Time {
	if t, ok := ctxutil.Now(ctx); ok {
		return t
	}
	return clock.Now()
}
