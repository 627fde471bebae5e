package lock

import (
	"context"
	"time"

	"github.com/gofrs/flock"

	"github.com/bashhack/dirlock/internal/errors"
)

const (
	// guardSuffix names the sidecar file serializing removals of the lock file
	guardSuffix = ".break"

	guardWait       = 2 * time.Second
	guardRetryDelay = 10 * time.Millisecond
)

// errGuardBusy means another process is inside the removal section.
var errGuardBusy = errors.New("lock removal in progress by another process")

// breakGuard serializes every removal of the lock file (release and stale
// break) across processes, so a removal always re-checks the owner it is
// about to delete. Installs do not take the guard; they only ever succeed
// on an absent lock file.
type breakGuard struct {
	path string
}

func newBreakGuard(lockPath string) *breakGuard {
	return &breakGuard{path: lockPath + guardSuffix}
}

// acquire takes the guard, waiting up to guardWait or until ctx's deadline,
// whichever comes first. Running out of time yields errGuardBusy; a canceled
// ctx yields ctx's error. The returned function releases the guard.
func (g *breakGuard) acquire(ctx context.Context) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, guardWait)
	defer cancel()

	fl := flock.New(g.path)
	locked, err := fl.TryLockContext(waitCtx, guardRetryDelay)
	if err != nil || !locked {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, errGuardBusy
		}
		return nil, errors.Wrapf(err, "failed to lock %s", g.path)
	}

	return func() { _ = fl.Unlock() }, nil
}
