package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"SupportChat/internal/session"
)

// Entry is a cached assistant reply.
type Entry struct {
	Reply     string
	Timestamp time.Time
}

// Cache stores assistant replies keyed on the transcript that produced them.
// Only the LLM-backed assistant uses it; the scripted assistant is already
// deterministic.
type Cache struct {
	store sync.Map
	ttl   time.Duration
}

// New creates a cache. A zero ttl disables expiry.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Key derives a cache key from an ordered message sequence.
func Key(messages []session.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte(msg.Content))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached reply for key, if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		return "", false
	}
	entry := val.(Entry)
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		c.store.Delete(key)
		return "", false
	}
	return entry.Reply, true
}

// Put stores a reply under key.
func (c *Cache) Put(key, reply string) {
	c.store.Store(key, Entry{Reply: reply, Timestamp: time.Now()})
}
