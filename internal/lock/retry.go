package lock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bashhack/dirlock/internal/common"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/metrics"
)

// ErrTimedOut is returned by AcquireWithTimeout when the lock stayed busy
// for the whole timeout.
var ErrTimedOut = errors.New("timed out waiting for lock")

// TimeoutError carries the details of a timed out acquisition. It matches
// ErrTimedOut with errors.Is.
type TimeoutError struct {
	// Owner is the last owner observed, or nil if it was never readable.
	Owner    *Owner
	Attempts int
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%v after %s (%d attempts)", ErrTimedOut, e.Waited.Round(time.Millisecond), e.Attempts)
	if e.Owner != nil && e.Owner.Token.PID > 0 {
		msg += fmt.Sprintf(", held by PID %d on %s", e.Owner.Token.PID, e.Owner.Token.Host)
	}
	return msg
}

// Is reports whether target is ErrTimedOut.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimedOut
}

// Scheduler repeats install attempts with a fresh claim each time until one
// succeeds or the timeout elapses. It runs on the caller's goroutine.
type Scheduler struct {
	store    *ClaimStore
	protocol *Protocol
	interval time.Duration
	logger   common.Logger
	metrics  *metrics.Collector

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	rand  func() float64
}

// NewScheduler creates a Scheduler retrying every interval (with jitter).
func NewScheduler(store *ClaimStore, protocol *Protocol, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		protocol: protocol,
		interval: interval,
		logger:   common.NopLogger{},
		now:      time.Now,
		sleep:    sleepContext,
		rand:     rand.Float64,
	}
}

// AcquireWithTimeout returns the installed claim, a *TimeoutError once the
// timeout has elapsed, ctx.Err() on cancellation, or the first filesystem
// fault. Busy and Stale outcomes are retried; faults are not.
func (s *Scheduler) AcquireWithTimeout(ctx context.Context, timeout time.Duration) (*Claim, error) {
	start := s.now()
	deadline := start.Add(timeout)
	lockPath := s.protocol.LockPath()

	var (
		attempts int
		owner    *Owner
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		claim, err := s.store.Create(lockPath)
		if err != nil {
			s.metrics.ObserveAttempt("error")
			return nil, err
		}
		attempts++

		result, current, err := s.attempt(ctx, claim, deadline)
		if err != nil {
			s.metrics.ObserveAttempt("error")
			_ = s.store.Discard(claim)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		s.metrics.ObserveAttempt(result.String())

		if result == Acquired {
			waited := s.now().Sub(start)
			s.metrics.ObserveAcquired(waited)
			s.logger.Debug("Acquired lock %s after %d attempt(s) in %s", lockPath, attempts, waited)
			return claim, nil
		}

		if err := s.store.Discard(claim); err != nil {
			s.logger.Warning("%v", err)
		}
		if current != nil {
			owner = current
		}

		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			s.metrics.ObserveTimeout()
			return nil, &TimeoutError{
				Owner:    owner,
				Attempts: attempts,
				Waited:   s.now().Sub(start),
			}
		}

		wait := min(s.nextInterval(), remaining)
		if owner != nil {
			s.logger.Debug("Lock %s is %s (PID %d on %s), retrying in %s",
				lockPath, result, owner.Token.PID, owner.Token.Host, wait)
		}
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// attempt runs one install attempt. Waiting on another process's removal of
// an expired lock is bounded by the time left until deadline, but never less
// than one retry interval.
func (s *Scheduler) attempt(ctx context.Context, claim *Claim, deadline time.Time) (Result, *Owner, error) {
	ctx, cancel := context.WithTimeout(ctx, max(deadline.Sub(s.now()), s.interval))
	defer cancel()

	return s.protocol.TryAcquire(ctx, claim)
}

// nextInterval returns the base interval scaled by a random factor in
// [0.5, 1.5) so competing processes do not retry in lockstep.
func (s *Scheduler) nextInterval() time.Duration {
	return time.Duration(float64(s.interval) * (0.5 + s.rand()))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
