package support

import "sync"

// MaxRetries is the attempt ceiling shared by the retrying operations.
const MaxRetries = 3

// RetryLedger tracks in-flight retry attempts per (operation, subject) key.
// It is injected into Service rather than being package state, so its scope
// is whatever the caller chooses; the session driver creates one per
// conversation. The mutex keeps a deliberately shared ledger safe.
type RetryLedger struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewRetryLedger creates an empty ledger.
func NewRetryLedger() *RetryLedger {
	return &RetryLedger{counts: make(map[string]int)}
}

// Increment bumps the attempt count for key and returns the new count.
func (l *RetryLedger) Increment(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key]
}

// Count returns the current attempt count for key, zero if untracked.
func (l *RetryLedger) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key]
}

// Reset removes the entry for key.
func (l *RetryLedger) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}
