package lock

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/bashhack/dirlock/internal/common"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/metrics"
)

// Result is the outcome of one TryAcquire call.
type Result int

const (
	// Acquired means the claim is now the lock file.
	Acquired Result = iota
	// Busy means a live (non-expired) owner holds the lock.
	Busy
	// Stale means an expired lock was found but could not be removed yet,
	// because another process is removing it or already replaced it.
	Stale
)

func (r Result) String() string {
	switch r {
	case Acquired:
		return "acquired"
	case Busy:
		return "busy"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Owner describes the current holder of a lock file.
type Owner struct {
	Token Token
	Age   time.Duration
	Stale bool

	// Alive is set only when the owner runs on this host. It is informational;
	// staleness is decided by age alone.
	Alive *bool

	// Corrupt is true when the lock file content could not be parsed; Age
	// then comes from the file's modification time.
	Corrupt bool
}

// Protocol is the install/break/release state machine around one lock file.
// It is the only code that creates or removes the lock file.
type Protocol struct {
	lockPath string
	lifetime time.Duration
	host     string
	guard    *breakGuard
	now      func() time.Time
	logger   common.Logger
	metrics  *metrics.Collector

	// claimPathFor locates the claim file behind a broken lock so it can be
	// cleaned up as well. Optional.
	claimPathFor func(Token) string
}

// NewProtocol creates a Protocol for the lock file at lockPath.
func NewProtocol(lockPath string, lifetime time.Duration, host string) *Protocol {
	if host == "" {
		host = localHostname()
	}
	return &Protocol{
		lockPath: lockPath,
		lifetime: lifetime,
		host:     host,
		guard:    newBreakGuard(lockPath),
		now:      time.Now,
		logger:   common.NopLogger{},
	}
}

// LockPath returns the path of the lock file.
func (p *Protocol) LockPath() string {
	return p.lockPath
}

// Lifetime returns the age after which a lock is considered abandoned.
func (p *Protocol) Lifetime() time.Duration {
	return p.lifetime
}

// TryAcquire attempts to install claim as the lock file once. An expired
// lock is broken and the install retried a single time. ctx bounds the wait
// for the removal guard; cancellation is returned as ctx's error.
func (p *Protocol) TryAcquire(ctx context.Context, claim *Claim) (Result, *Owner, error) {
	installed, err := p.install(claim)
	if err != nil {
		return Busy, nil, err
	}
	if installed {
		return Acquired, nil, nil
	}

	owner, err := p.Owner()
	if err != nil {
		return Busy, nil, err
	}
	if owner == nil {
		// Released between our link and our read
		return p.retryInstall(claim)
	}
	if !owner.Stale {
		return Busy, owner, nil
	}

	broken, err := p.breakLock(ctx, owner, false)
	if err != nil {
		return Busy, owner, err
	}
	if !broken {
		current, err := p.Owner()
		return Stale, current, err
	}

	p.logger.Info("Removed expired lock %s held by PID %d on %s (age %s)",
		p.lockPath, owner.Token.PID, owner.Token.Host, owner.Age.Round(time.Second))
	p.metrics.ObserveStaleBreak()

	return p.retryInstall(claim)
}

// retryInstall makes the single second install attempt. Losing it means
// another process got there first, which is reported as Busy.
func (p *Protocol) retryInstall(claim *Claim) (Result, *Owner, error) {
	installed, err := p.install(claim)
	if err != nil {
		return Busy, nil, err
	}
	if installed {
		return Acquired, nil, nil
	}
	current, err := p.Owner()
	return Busy, current, err
}

// install hard-links the claim to the lock path. The link either creates the
// lock file with the claim's complete content or fails because one exists.
func (p *Protocol) install(claim *Claim) (bool, error) {
	err := os.Link(claim.Path, p.lockPath)
	if err == nil {
		return true, nil
	}

	// Some NFS servers report a failure for a link that was in fact created
	// (a retransmitted request). Trust the inodes, not the error.
	if p.holds(claim) {
		return true, nil
	}

	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}

	return false, errors.NewLockError(p.lockPath, 0,
		errors.Wrap(err, "failed to install lock file"))
}

// sameFile reports whether the lock file is claim's file. A claim file that
// is already gone cannot be compared and counts as a match.
func (p *Protocol) sameFile(claim *Claim) bool {
	if _, err := os.Stat(claim.Path); err != nil {
		return true
	}
	return p.holds(claim)
}

// holds reports whether the lock file is the claim file itself.
func (p *Protocol) holds(claim *Claim) bool {
	lockInfo, err := os.Stat(p.lockPath)
	if err != nil {
		return false
	}
	claimInfo, err := os.Stat(claim.Path)
	if err != nil {
		return false
	}
	return os.SameFile(lockInfo, claimInfo)
}

// Owner reads the current lock file. It returns nil, nil when the lock is free.
func (p *Protocol) Owner() (*Owner, error) {
	data, err := os.ReadFile(p.lockPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewLockError(p.lockPath, 0,
			errors.Wrap(err, "failed to read lock file"))
	}

	now := p.now()

	token, parseErr := ParseToken(data)
	if parseErr != nil {
		info, err := os.Stat(p.lockPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.NewLockError(p.lockPath, 0,
				errors.Wrap(err, "failed to stat lock file"))
		}
		p.logger.Warning("Lock file %s is unreadable (%v), aging it by modification time", p.lockPath, parseErr)
		token = Token{CreatedAt: info.ModTime()}
		return &Owner{
			Token:   token,
			Age:     token.Age(now),
			Stale:   token.Expired(now, p.lifetime),
			Corrupt: true,
		}, nil
	}

	owner := &Owner{
		Token: token,
		Age:   token.Age(now),
		Stale: token.Expired(now, p.lifetime),
	}
	if token.Host == p.host {
		alive := processAlive(token.PID)
		owner.Alive = &alive
	}

	return owner, nil
}

// Release removes the lock file if and only if it still carries claim's
// token, then discards the claim file. Releasing a lock that is not held,
// or that another process has since taken over, is a no-op.
func (p *Protocol) Release(claim *Claim) error {
	if claim == nil {
		return nil
	}
	defer func() {
		if err := os.Remove(claim.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.logger.Warning("Failed to remove claim file %s: %v", claim.Path, err)
		}
	}()

	unlock := p.enterGuard()
	defer unlock()

	owner, err := p.Owner()
	if err != nil {
		return err
	}
	if owner == nil || owner.Corrupt || !owner.Token.Equal(claim.Token) || !p.sameFile(claim) {
		p.logger.Debug("Lock %s is not held by this claim, nothing to release", p.lockPath)
		return nil
	}

	if err := os.Remove(p.lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.NewLockError(p.lockPath, claim.Token.PID,
			errors.Wrap(err, "failed to remove lock file"))
	}

	p.metrics.ObserveRelease()
	return nil
}

// Break removes the current lock file if it is expired, or unconditionally
// when force is set. When expected is not nil the lock file is only removed
// while it still belongs to expected's token. It returns the owner found and
// whether it was removed.
func (p *Protocol) Break(expected *Owner, force bool) (*Owner, bool, error) {
	owner, err := p.Owner()
	if err != nil || owner == nil {
		return owner, false, err
	}
	if expected != nil && !sameOwner(owner, expected) {
		return owner, false, nil
	}
	if !force && !owner.Stale {
		return owner, false, nil
	}

	broken, err := p.breakLock(context.Background(), owner, force)
	if err != nil || !broken {
		return owner, false, err
	}

	p.logger.Info("Removed lock %s held by PID %d on %s (forced: %t)",
		p.lockPath, owner.Token.PID, owner.Token.Host, force)
	if !force {
		p.metrics.ObserveStaleBreak()
	}
	return owner, true, nil
}

// breakLock removes the lock file under the guard, provided it still holds
// the owner that was inspected (and, unless forced, that owner is expired).
func (p *Protocol) breakLock(ctx context.Context, expected *Owner, force bool) (bool, error) {
	release, err := p.guard.acquire(ctx)
	switch {
	case errors.Is(err, errGuardBusy):
		return false, nil
	case errors.Is(err, context.Canceled):
		return false, err
	case err != nil:
		p.logger.Warning("Proceeding without removal guard: %v", err)
		release = func() {}
	}
	defer release()

	current, err := p.Owner()
	if err != nil || current == nil {
		return false, err
	}
	if !sameOwner(current, expected) {
		return false, nil
	}
	if !force && !current.Stale {
		return false, nil
	}

	if err := os.Remove(p.lockPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.NewLockError(p.lockPath, current.Token.PID,
			errors.Wrap(err, "failed to remove expired lock file"))
	}

	if p.claimPathFor != nil && !current.Corrupt {
		_ = os.Remove(p.claimPathFor(current.Token))
	}

	return true, nil
}

// sameOwner reports whether a and b were read from the same lock file.
// Unreadable lock files have no token and are told apart by their age.
func sameOwner(a, b *Owner) bool {
	return a.Corrupt == b.Corrupt && a.Token.Equal(b.Token)
}

// enterGuard takes the removal guard for a release. When the guard cannot be
// used the release proceeds unguarded.
func (p *Protocol) enterGuard() func() {
	release, err := p.guard.acquire(context.Background())
	if err != nil {
		p.logger.Debug("Releasing %s without removal guard: %v", p.lockPath, err)
		return func() {}
	}
	return release
}
