package lock

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/bashhack/dirlock/internal/common"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/metrics"
)

const (
	// DefaultTimeout is how long Lock waits for a busy lock
	DefaultTimeout = 5 * time.Second

	// DefaultLifetime is the age after which a lock is treated as abandoned.
	// A year effectively means a lock is only broken by hand.
	DefaultLifetime = 365 * 24 * time.Hour

	// DefaultRetryInterval is the base delay between attempts
	DefaultRetryInterval = 100 * time.Millisecond
)

// FailedToLockMessage returns the advisory shown when the lock stays busy
// for the whole timeout.
func FailedToLockMessage(lockPath string) string {
	return fmt.Sprintf("cannot perform the command because another dirlock process "+
		"seems to be running on this directory. If that is not the case, "+
		"manually remove `%s` and try again.", lockPath)
}

// Option configures a Lock.
type Option func(*Lock)

// WithScratchDir places claim files in dir under hashed names instead of
// next to the lock file. dir must be on the same filesystem as the lock.
func WithScratchDir(dir string) Option {
	return func(l *Lock) { l.scratchDir = dir }
}

// WithLifetime sets the age after which a lock is considered abandoned.
func WithLifetime(d time.Duration) Option {
	return func(l *Lock) { l.lifetime = d }
}

// WithTimeout sets how long Lock waits for a busy lock.
func WithTimeout(d time.Duration) Option {
	return func(l *Lock) { l.timeout = d }
}

// WithRetryInterval sets the base delay between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Lock) { l.interval = d }
}

// WithLogger sets the logger.
func WithLogger(logger common.Logger) Option {
	return func(l *Lock) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records lock activity on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(l *Lock) { l.metrics = c }
}

// WithHostname overrides the host name written into tokens.
func WithHostname(host string) Option {
	return func(l *Lock) { l.host = host }
}

// Lock is an exclusive, cross-process lock on one lock file. It is safe for
// concurrent use; at most one Lock(ctx) of an instance holds at a time.
type Lock struct {
	mu sync.Mutex

	lockPath   string
	scratchDir string
	timeout    time.Duration
	lifetime   time.Duration
	interval   time.Duration
	host       string
	logger     common.Logger
	metrics    *metrics.Collector

	store     *ClaimStore
	protocol  *Protocol
	scheduler *Scheduler

	claim *Claim
	owned bool
}

// New creates a Lock for the lock file at lockPath. Nothing is written until
// Lock is called, except for creating the scratch directory.
func New(lockPath string, opts ...Option) (*Lock, error) {
	l := &Lock{
		lockPath: lockPath,
		timeout:  DefaultTimeout,
		lifetime: DefaultLifetime,
		interval: DefaultRetryInterval,
		logger:   common.NopLogger{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if lockPath == "" {
		return nil, errors.NewConfigError("lock path", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "must not be empty"))
	}
	if l.timeout < 0 {
		return nil, errors.NewConfigError("timeout", l.timeout,
			errors.Wrap(errors.ErrInvalidConfiguration, "must not be negative"))
	}
	if l.lifetime <= 0 {
		return nil, errors.NewConfigError("lifetime", l.lifetime,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be positive"))
	}
	if l.interval <= 0 {
		return nil, errors.NewConfigError("retry interval", l.interval,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be positive"))
	}
	if l.host == "" {
		l.host = localHostname()
	}

	store, err := NewClaimStore(l.scratchDir, l.host)
	if err != nil {
		return nil, errors.NewLockError(lockPath, 0, err)
	}

	protocol := NewProtocol(lockPath, l.lifetime, l.host)
	protocol.logger = l.logger
	protocol.metrics = l.metrics
	protocol.claimPathFor = func(t Token) string {
		return store.PathFor(lockPath, t)
	}

	scheduler := NewScheduler(store, protocol, l.interval)
	scheduler.logger = l.logger
	scheduler.metrics = l.metrics

	l.store = store
	l.protocol = protocol
	l.scheduler = scheduler

	return l, nil
}

// LockFile returns the path of the lock file.
func (l *Lock) LockFile() string {
	return l.lockPath
}

// Files returns the paths this lock creates: the lock file and, if set, the
// scratch directory.
func (l *Lock) Files() []string {
	return lo.Compact([]string{l.lockPath, l.scratchDir})
}

// Lock acquires the lock, waiting up to the configured timeout. A lock that
// stays busy yields a *errors.LockError matching errors.ErrLockUnavailable.
func (l *Lock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owned {
		return errors.NewLockError(l.lockPath, os.Getpid(), errors.ErrAlreadyHeld)
	}

	claim, err := l.scheduler.AcquireWithTimeout(ctx, l.timeout)
	if err != nil {
		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) {
			l.logger.Debug("%v", timeoutErr)

			var host string
			var pid int
			if timeoutErr.Owner != nil {
				host, pid = timeoutErr.Owner.Token.Host, timeoutErr.Owner.Token.PID
			}
			return errors.NewLockUnavailableError(l.lockPath, host, pid, FailedToLockMessage(l.lockPath))
		}
		return err
	}

	l.claim = claim
	l.owned = true
	register(l)

	return nil
}

// Unlock releases the lock. It is a no-op when the lock is not held.
func (l *Lock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.owned {
		return nil
	}

	claim := l.claim
	l.claim = nil
	l.owned = false
	unregister(l)

	return l.protocol.Release(claim)
}

// Finalize releases the lock during teardown, ignoring every error.
func (l *Lock) Finalize() {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Debug("Ignoring panic while releasing %s: %v", l.lockPath, r)
		}
	}()

	if err := l.Unlock(); err != nil {
		l.logger.Debug("Ignoring error while releasing %s: %v", l.lockPath, err)
	}
}

// IsLocked reports whether this instance holds the lock and the lock file
// still carries its token.
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.owned {
		return false
	}
	owner, err := l.protocol.Owner()
	if err != nil || owner == nil {
		return false
	}
	return owner.Token.Equal(l.claim.Token)
}

// Owner returns the current holder of the lock file, or nil if it is free.
func (l *Lock) Owner() (*Owner, error) {
	return l.protocol.Owner()
}

// Break removes an expired lock file, or any lock file when force is set.
// A non-nil expected restricts the removal to that owner's lock file. It
// reports the owner found and whether the file was removed.
func (l *Lock) Break(expected *Owner, force bool) (*Owner, bool, error) {
	return l.protocol.Break(expected, force)
}

// Handle is a scoped acquisition returned by Acquire.
type Handle struct {
	lock *Lock
	once sync.Once
	err  error
}

// Acquire locks l and returns a Handle whose Release unlocks it.
func (l *Lock) Acquire(ctx context.Context) (*Handle, error) {
	if err := l.Lock(ctx); err != nil {
		return nil, err
	}
	return &Handle{lock: l}, nil
}

// Release unlocks the underlying lock. Only the first call has an effect.
func (h *Handle) Release() error {
	h.once.Do(func() {
		h.err = h.lock.Unlock()
	})
	return h.err
}

// WithLock runs fn while holding the lock and releases it afterwards, also
// when fn panics. The error of fn takes precedence over a release error.
func (l *Lock) WithLock(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	h, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := h.Release(); err == nil {
			err = releaseErr
		}
	}()

	return fn(ctx)
}
