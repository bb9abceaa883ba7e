package favorites

import "context"

// toggleLock admits one toggle at a time. Unlike sync.Mutex, waiting on it
// gives up when ctx is done.
type toggleLock chan struct{}

func newToggleLock() toggleLock {
	return make(toggleLock, 1)
}

// lock blocks until the lock is free or ctx is done.
func (l toggleLock) lock(ctx context.Context) (func(), error) {
	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
