// Package postgres implements the store interface for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
)

// Postgres implements a connection to a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS escrows (
	id TEXT PRIMARY KEY,
	client_address TEXT NOT NULL,
	freelancer_address TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	token_symbol TEXT NOT NULL,
	status TEXT NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	seq BIGSERIAL PRIMARY KEY,
	escrow_id TEXT NOT NULL REFERENCES escrows(id),
	sender TEXT NOT NULL,
	message TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL
);`

// New returns a postgres client connection to the specified database in 'connection' and makes sure the schema is in
// place.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("cannot set up DB schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// CreateEscrow inserts a new escrow row and returns the assigned id.
func (p *Postgres) CreateEscrow(ctx context.Context, e store.Escrow) (string, error) {
	id := uuid.NewString()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO escrows (id, client_address, freelancer_address, amount, token_symbol, status, risk_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.ClientAddress, e.FreelancerAddress, e.Amount, e.TokenSymbol, e.Status, e.RiskScore, e.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("could not insert escrow in db: %w", err)
	}

	return id, nil
}

// GetEscrow returns the escrow row for the given id.
func (p *Postgres) GetEscrow(ctx context.Context, id string) (store.Escrow, error) {
	var e store.Escrow

	err := p.db.QueryRowContext(ctx,
		`SELECT id, client_address, freelancer_address, amount, token_symbol, status, risk_score, created_at
		 FROM escrows WHERE id = $1`, id).
		Scan(&e.ID, &e.ClientAddress, &e.FreelancerAddress, &e.Amount, &e.TokenSymbol, &e.Status, &e.RiskScore,
			&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Escrow{}, store.ErrNotFound
	}

	if err != nil {
		return store.Escrow{}, fmt.Errorf("could not get escrow from db: %w", err)
	}

	return e, nil
}

// UpdateStatus moves the escrow to newStatus. The WHERE clause includes the permitted source statuses so two racing
// transitions cannot both succeed from the same source state.
func (p *Postgres) UpdateStatus(ctx context.Context, id, newStatus string) (store.Escrow, error) {
	sources := store.SourceStatuses(newStatus)
	if len(sources) == 0 {
		return store.Escrow{}, store.ErrInvalidTransition
	}

	var e store.Escrow

	err := p.db.QueryRowContext(ctx,
		`UPDATE escrows SET status = $1 WHERE id = $2 AND status = ANY($3)
		 RETURNING id, client_address, freelancer_address, amount, token_symbol, status, risk_score, created_at`,
		newStatus, id, pq.Array(sources)).
		Scan(&e.ID, &e.ClientAddress, &e.FreelancerAddress, &e.Amount, &e.TokenSymbol, &e.Status, &e.RiskScore,
			&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, errGet := p.GetEscrow(ctx, id); errGet != nil {
			return store.Escrow{}, errGet
		}

		return store.Escrow{}, store.ErrInvalidTransition
	}

	if err != nil {
		return store.Escrow{}, fmt.Errorf("could not update escrow status in db: %w", err)
	}

	return e, nil
}

// AddMessage appends a chat message to the escrow thread, assigning its timestamp.
func (p *Postgres) AddMessage(ctx context.Context, m store.ChatMessage) (store.ChatMessage, error) {
	if _, err := p.GetEscrow(ctx, m.EscrowID); err != nil {
		return store.ChatMessage{}, err
	}

	m.Timestamp = time.Now().UTC()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO messages (escrow_id, sender, message, ts) VALUES ($1, $2, $3, $4)`,
		m.EscrowID, m.Sender, m.Message, m.Timestamp)
	if err != nil {
		return store.ChatMessage{}, fmt.Errorf("could not insert message in db: %w", err)
	}

	return m, nil
}

// GetMessages returns the escrow's messages in insertion order.
func (p *Postgres) GetMessages(ctx context.Context, escrowID string) ([]store.ChatMessage, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT escrow_id, sender, message, ts FROM messages WHERE escrow_id = $1 ORDER BY seq`, escrowID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages from db: %w", err)
	}
	defer rows.Close()

	msgs := []store.ChatMessage{}

	for rows.Next() {
		var m store.ChatMessage
		if err = rows.Scan(&m.EscrowID, &m.Sender, &m.Message, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("could not decode message from db: %w", err)
		}

		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}
