// Package store defines the interface for database implementations to the wallet service.
package store

import (
	"context"
	"errors"
)

// DB defines required methods for escrow and chat persistence.
type DB interface {
	// CreateEscrow persists a new escrow record and returns its assigned id.
	CreateEscrow(ctx context.Context, e Escrow) (string, error)
	// GetEscrow returns the escrow for the given id or ErrNotFound.
	GetEscrow(ctx context.Context, id string) (Escrow, error)
	// UpdateStatus moves the escrow to newStatus. The update is a compare-and-swap on the permitted source
	// statuses, so of two racing transitions exactly one succeeds and the loser gets ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id, newStatus string) (Escrow, error)
	// AddMessage appends a chat message to the escrow thread, assigning its timestamp.
	AddMessage(ctx context.Context, m ChatMessage) (ChatMessage, error)
	// GetMessages returns the escrow's messages in insertion order.
	GetMessages(ctx context.Context, escrowID string) ([]ChatMessage, error)
}

// Errors returned
var (
	ErrNotFound          = errors.New("escrow was not found in store")
	ErrInvalidTransition = errors.New("escrow status does not permit the requested transition")
)
