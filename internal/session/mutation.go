package session

import (
	"sync"

	"github.com/google/uuid"
)

// Mutation holds the per-session identifier stamped onto every outgoing
// write as LastModifiedBy. When that write's confirmation comes back through
// the change feed, the reconciler recognizes it as self-originated and skips
// re-applying it. The tag carries no authorization semantics; the server
// re-verifies permission on every write.
type Mutation struct {
	mu sync.RWMutex
	id uuid.UUID
}

// NewMutation generates a fresh tag for a new session (login).
func NewMutation() *Mutation {
	return &Mutation{id: uuid.New()}
}

// Current returns the tag. Stable for the session's lifetime.
func (m *Mutation) Current() uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// Reset replaces the tag with a fresh value, on logout.
func (m *Mutation) Reset() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = uuid.New()
	return m.id
}
