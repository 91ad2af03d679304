package infrastructure

import (
	"context"
	"sync"
)

// LocalContestLocker serializes operations per contest inside one process
type LocalContestLocker struct {
	mu    sync.Mutex
	locks map[int64]*contestLock
}

type contestLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalContestLocker creates an in-process contest locker
func NewLocalContestLocker() *LocalContestLocker {
	return &LocalContestLocker{locks: make(map[int64]*contestLock)}
}

// Lock blocks until the contest is free or ctx is done
func (l *LocalContestLocker) Lock(ctx context.Context, contestID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[contestID]
	if !ok {
		lock = &contestLock{sem: make(chan struct{}, 1)}
		l.locks[contestID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(contestID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.release(contestID, lock)
		})
	}, nil
}

// release drops a reference and forgets idle locks
func (l *LocalContestLocker) release(contestID int64, lock *contestLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, contestID)
	}
}

// held returns the number of contests with waiters or holders
func (l *LocalContestLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
