// Package lock provides an exclusive, cross-process lock on a directory,
// built only on filesystem primitives so it also works between hosts that
// share a network filesystem.
//
// # Protocol
//
// Every acquisition attempt writes a fresh claim file holding a Token (host,
// PID, random nonce, creation time). The claim is then hard-linked to the
// lock path. The link either creates the lock file with the complete token
// or fails because a lock file already exists, so a reader never sees a
// partial owner.
//
// When the lock file exists its token is read. A token older than the
// configured lifetime marks an abandoned lock: it is removed and the link
// retried once. Removals (stale breaks and releases) are serialized through
// a flock on a sidecar "<lock>.break" file and always re-check the token
// they are about to delete, so a process never removes a lock it does not
// own.
//
// # Core Components
//
//   - Token: identity of one attempt, JSON encoded in the claim file
//   - ClaimStore: writes claim files, optionally into a scratch directory
//     under fixed-length hashed names
//   - Protocol: install, inspect, break and release of the lock file
//   - Scheduler: bounded retry loop with jittered backoff
//   - Lock: the facade used by callers
//
// # Usage
//
//	l, err := lock.New("/srv/data/.dirlock/lock", lock.WithTimeout(10*time.Second))
//	if err != nil {
//	    return err
//	}
//
//	err = l.WithLock(ctx, func(ctx context.Context) error {
//	    // exclusive access to /srv/data
//	    return nil
//	})
//
// A lock that stays busy for the whole timeout returns an error matching
// errors.ErrLockUnavailable whose message tells the user which file to
// remove if no other process is running.
//
// # Teardown
//
// Held locks are tracked per process. FinalizeAll releases all of them and
// never fails, which makes it suitable for signal handlers.
package lock
