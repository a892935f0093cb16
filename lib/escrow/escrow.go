// Package escrow implements the escrow lifecycle service: creation with synchronous fraud decisioning, status
// transitions and the chat thread attached to each escrow.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/fraud"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/util"
)

// Errors returned to callers.
var (
	ErrValidation    = errors.New("bad escrow request")
	ErrFraudRejected = errors.New("escrow rejected by fraud check")
)

// CreateRequest contains the fields to open a new escrow. NewAddress and CountryMismatch are risk signals forwarded
// to the fraud scorer; callers that have no real signals leave them false.
type CreateRequest struct {
	ClientAddress     string
	FreelancerAddress string
	Amount            float64
	TokenSymbol       string
	NewAddress        bool
	CountryMismatch   bool
}

// Service orchestrates escrow operations over the store, the fraud scorer and the notification dispatcher. It holds
// no persistent state of its own.
type Service struct {
	db       store.DB
	scorer   *fraud.Scorer
	notifier *notify.Dispatcher
}

// New returns an escrow Service using the given collaborators.
func New(db store.DB, scorer *fraud.Scorer, notifier *notify.Dispatcher) *Service {
	return &Service{db: db, scorer: scorer, notifier: notifier}
}

// Create validates the request, scores it for fraud and persists the escrow with status pending. A "block" decision
// fails the call and nothing is stored. A best-effort notification is queued after the store write; its outcome never
// affects the result.
func (s *Service) Create(ctx context.Context, req CreateRequest) (store.Escrow, error) {
	if req.Amount <= 0 {
		return store.Escrow{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if req.ClientAddress == "" || req.FreelancerAddress == "" {
		return store.Escrow{}, fmt.Errorf("%w: client and freelancer addresses are required", ErrValidation)
	}

	if req.TokenSymbol == "" {
		return store.Escrow{}, fmt.Errorf("%w: token symbol is required", ErrValidation)
	}

	res := s.scorer.Score(fraud.Input{
		FromAddress:     req.ClientAddress,
		ToAddress:       req.FreelancerAddress,
		Amount:          req.Amount,
		NewAddress:      req.NewAddress,
		CountryMismatch: req.CountryMismatch,
	})
	if res.Decision == fraud.Block {
		return store.Escrow{}, fmt.Errorf("%w: score %.2f", ErrFraudRejected, res.Score)
	}

	e := store.Escrow{
		ClientAddress:     req.ClientAddress,
		FreelancerAddress: req.FreelancerAddress,
		Amount:            req.Amount,
		TokenSymbol:       req.TokenSymbol,
		Status:            store.StatusPending,
		RiskScore:         res.Score,
		CreatedAt:         time.Now().UTC(),
	}

	id, err := s.db.CreateEscrow(ctx, e)
	if err != nil {
		return store.Escrow{}, err
	}

	e.ID = id

	s.notifier.Enqueue(fmt.Sprintf("🔒 NEW ESCROW %s\n%s → %s\nAmount: %g %s (risk %.2f)",
		e.ID, e.ClientAddress, e.FreelancerAddress, e.Amount, e.TokenSymbol, e.RiskScore))

	return e, nil
}

// Get returns the escrow for the given id.
func (s *Service) Get(ctx context.Context, id string) (store.Escrow, error) {
	return s.db.GetEscrow(ctx, id)
}

// Transition moves the escrow to newStatus along the lifecycle state machine. The store serializes racing
// transitions; the loser gets store.ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id, newStatus string) (store.Escrow, error) {
	if !util.In(store.Statuses, newStatus) {
		return store.Escrow{}, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	e, err := s.db.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return store.Escrow{}, err
	}

	s.notifier.Enqueue(fmt.Sprintf("🔁 ESCROW %s is now %s", e.ID, e.Status))

	return e, nil
}

// AppendMessage stores a chat message on the escrow thread and returns it with its assigned timestamp.
func (s *Service) AppendMessage(ctx context.Context, escrowID, sender, message string) (store.ChatMessage, error) {
	if sender == "" || message == "" {
		return store.ChatMessage{}, fmt.Errorf("%w: sender and message are required", ErrValidation)
	}

	return s.db.AddMessage(ctx, store.ChatMessage{EscrowID: escrowID, Sender: sender, Message: message})
}

// Messages returns the escrow's chat thread in insertion order.
func (s *Service) Messages(ctx context.Context, escrowID string) ([]store.ChatMessage, error) {
	return s.db.GetMessages(ctx, escrowID)
}
