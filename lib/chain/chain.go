// Package chain defines the interface required for the blockchain RPC connection.
package chain

import (
	"context"
	"errors"
	"math/big"
)

// Client is the narrow surface of the chain node the wallet service consumes. It has been kept small on purpose so
// tests can substitute it with a fake.
type Client interface {
	// GasPrice returns the node's current suggested gas price in wei.
	GasPrice(ctx context.Context) (*big.Int, error)
	Close()
}

// ErrUnavailable is returned when the RPC node is unreachable, times out or replies with malformed data. Calls are
// not retried; retry policy belongs to the caller.
var ErrUnavailable = errors.New("chain RPC unavailable")
