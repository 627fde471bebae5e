package lock

import (
	"sync"

	"github.com/samber/lo"
)

var held = struct {
	sync.Mutex
	locks map[*Lock]struct{}
}{locks: make(map[*Lock]struct{})}

func register(l *Lock) {
	held.Lock()
	defer held.Unlock()
	held.locks[l] = struct{}{}
}

func unregister(l *Lock) {
	held.Lock()
	defer held.Unlock()
	delete(held.locks, l)
}

// heldLocks returns the locks currently held by this process.
func heldLocks() []*Lock {
	held.Lock()
	defer held.Unlock()
	return lo.Keys(held.locks)
}

// FinalizeAll releases every lock still held by this process. It is meant
// for signal handlers and exit paths and never fails.
func FinalizeAll() {
	for _, l := range heldLocks() {
		l.Finalize()
	}
}
