package store

import "time"

// Escrow status values.
const (
	StatusPending  = "pending"
	StatusFunded   = "funded"
	StatusReleased = "released"
	StatusDisputed = "disputed"
	StatusRefunded = "refunded"
	StatusRejected = "rejected"
)

// Statuses lists all valid escrow status values.
var Statuses = []string{StatusPending, StatusFunded, StatusReleased, StatusDisputed, StatusRefunded, StatusRejected}

// transitions maps a target status to the statuses an escrow may move from. Transitions are monotonic: there is no
// path back to pending and released, refunded and rejected are terminal.
var transitions = map[string][]string{
	StatusFunded:   {StatusPending},
	StatusReleased: {StatusFunded, StatusDisputed},
	StatusDisputed: {StatusFunded},
	StatusRefunded: {StatusDisputed},
	StatusRejected: {StatusPending},
}

// SourceStatuses returns the statuses from which an escrow is allowed to move to target. Store implementations use
// this set as the compare-and-swap filter so racing transitions serialize.
func SourceStatuses(target string) []string {
	return transitions[target]
}

// Escrow contains the fields of a held payment saved to DB. All fields except Status are immutable after creation.
type Escrow struct {
	ID                string    `json:"escrow_id" bson:"-"`
	ClientAddress     string    `json:"client_address" bson:"client_address"`
	FreelancerAddress string    `json:"freelancer_address" bson:"freelancer_address"`
	Amount            float64   `json:"amount" bson:"amount"`
	TokenSymbol       string    `json:"token_symbol" bson:"token_symbol"`
	Status            string    `json:"status" bson:"status"`
	RiskScore         float64   `json:"risk_score" bson:"risk_score"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// ChatMessage contains the fields of an append-only note attached to an escrow. Timestamp is assigned by the store.
type ChatMessage struct {
	EscrowID  string    `json:"escrow_id" bson:"escrow_id"`
	Sender    string    `json:"sender" bson:"sender"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
