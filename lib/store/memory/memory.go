// Package memory implements the store interface in process memory. It backs the test suites and the "memory" dbtype
// used for local development, where no database daemon is available.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/util"
)

// Memory holds escrows and chat threads guarded by a single mutex, giving the same per-record atomicity the real
// stores provide.
type Memory struct {
	mu      sync.Mutex
	escrows map[string]store.Escrow
	threads map[string][]store.ChatMessage
}

// New returns an empty in-process store.
func New() *Memory {
	return &Memory{
		escrows: make(map[string]store.Escrow),
		threads: make(map[string][]store.ChatMessage),
	}
}

// CreateEscrow saves a new escrow record and returns the assigned id.
func (m *Memory) CreateEscrow(ctx context.Context, e store.Escrow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.NewString()
	m.escrows[e.ID] = e

	return e.ID, nil
}

// GetEscrow returns the escrow for the given id.
func (m *Memory) GetEscrow(ctx context.Context, id string) (store.Escrow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.escrows[id]
	if !ok {
		return store.Escrow{}, store.ErrNotFound
	}

	return e, nil
}

// UpdateStatus moves the escrow to newStatus, checking the current status against the permitted source set under the
// lock so racing transitions serialize.
func (m *Memory) UpdateStatus(ctx context.Context, id, newStatus string) (store.Escrow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.escrows[id]
	if !ok {
		return store.Escrow{}, store.ErrNotFound
	}

	if !util.In(store.SourceStatuses(newStatus), e.Status) {
		return store.Escrow{}, store.ErrInvalidTransition
	}

	e.Status = newStatus
	m.escrows[id] = e

	return e, nil
}

// AddMessage appends a chat message to the escrow thread, assigning its timestamp.
func (m *Memory) AddMessage(ctx context.Context, msg store.ChatMessage) (store.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.escrows[msg.EscrowID]; !ok {
		return store.ChatMessage{}, store.ErrNotFound
	}

	msg.Timestamp = time.Now().UTC()
	m.threads[msg.EscrowID] = append(m.threads[msg.EscrowID], msg)

	return msg, nil
}

// GetMessages returns the escrow's messages in insertion order.
func (m *Memory) GetMessages(ctx context.Context, escrowID string) ([]store.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]store.ChatMessage, len(m.threads[escrowID]))
	copy(msgs, m.threads[escrowID])

	return msgs, nil
}
