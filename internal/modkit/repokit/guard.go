package repokit

import (
	"context"
	"time"

	perr "kydu/internal/platform/errors"
)

// DefaultReadyTimeout bounds CheckReady when ctx carries no deadline
const DefaultReadyTimeout = 5 * time.Second

// Guarder pings the backends a process depends on
type Guarder interface {
	Guard(context.Context) error
}

// CheckReady asks g whether its backends answer before the process starts
// serving. A nil guarder or a failed ping comes back as Unavailable.
func CheckReady(ctx context.Context, g Guarder, timeout time.Duration) error {
	if g == nil {
		return perr.Unavailablef("no store to check")
	}
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "store not ready")
	}
	return nil
}
