package auth

import (
	"sync"
	"time"
)

const (
	// LockoutThreshold is the number of consecutive failed logins that
	// transitions an account into the locked state.
	LockoutThreshold = 5
	// LockDuration is how long a lockout lasts before it expires on its own.
	LockDuration = 15 * time.Minute
)

// lockActive reports whether the account is locked at the given instant.
// A locked account with a nil LockedUntil never expires on its own.
func lockActive(acc *Account, now time.Time) bool {
	if !acc.Locked {
		return false
	}
	return acc.LockedUntil == nil || now.Before(*acc.LockedUntil)
}

// recordFailure applies the failed-login transition and reports whether the
// account just crossed the threshold into the locked state.
func recordFailure(acc *Account, now time.Time) bool {
	acc.FailedAttempts++
	if acc.FailedAttempts >= LockoutThreshold {
		until := now.Add(LockDuration)
		acc.Locked = true
		acc.LockedUntil = &until
		acc.FailedAttempts = LockoutThreshold
		return true
	}
	return false
}

// recordSuccess applies the successful-login transition.
func recordSuccess(acc *Account, now time.Time) {
	acc.FailedAttempts = 0
	t := now
	acc.LastLoginAt = &t
}

// clearLock resets lockout state. Used both for the automatic expiry
// transition and for an administrative unlock.
func clearLock(acc *Account) {
	acc.Locked = false
	acc.FailedAttempts = 0
	acc.LockedUntil = nil
}

// keyedMutex serializes the lockout read-modify-write per account so two
// concurrent failed attempts cannot under-count toward the threshold.
// Entries are never evicted; the map is bounded by the number of distinct
// emails seen by this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
