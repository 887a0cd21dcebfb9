package support

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TicketStore allocates support ticket identifiers.
type TicketStore interface {
	Create(ctx context.Context, userID, listingID, reason string) (string, error)
}

// SQLiteStore persists tickets in the application database. Display
// identifiers are monotonic (TICKET-<n>); a uuid serves as the surrogate key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialized database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a ticket row and returns its display identifier.
func (s *SQLiteStore) Create(ctx context.Context, userID, listingID, reason string) (string, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tickets (uuid, user_id, listing_id, reason, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), userID, listingID, reason, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert ticket: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to read ticket sequence: %w", err)
	}
	ticketID := fmt.Sprintf("TICKET-%d", seq)
	if _, err := s.db.ExecContext(ctx, "UPDATE tickets SET id = ? WHERE seq = ?", ticketID, seq); err != nil {
		return "", fmt.Errorf("failed to set ticket id: %w", err)
	}
	return ticketID, nil
}

// MemStore is an in-memory ticket allocator used by tests and by sessions
// running without a database.
type MemStore struct {
	mu   sync.Mutex
	next int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Create allocates the next sequential ticket identifier.
func (s *MemStore) Create(ctx context.Context, userID, listingID, reason string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("TICKET-%d", s.next), nil
}
