package pkg

import "sync"

type HasLocker interface{ GetLocker() *sync.RWMutex }

// LockWrap runs f under the write lock and returns its result.
func LockWrap[T any](i HasLocker, f func() T) T {
	i.GetLocker().Lock()
	defer i.GetLocker().Unlock()
	return f()
}

// RLockWrap runs f under the read lock and returns its result.
func RLockWrap[T any](i HasLocker, f func() T) T {
	i.GetLocker().RLock()
	defer i.GetLocker().RUnlock()
	return f()
}
