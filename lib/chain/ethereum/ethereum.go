// Package ethereum implements the chain interface for ethereum-type networks (QIE is EVM compatible).
package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/chain"
)

// Ethereum implements a connection to an ethereum-type chain node.
type Ethereum struct {
	c *ethclient.Client
}

// Dial returns a connection to the ethereum node at url.
func Dial(url string) (*Ethereum, error) {
	c, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to ethereum node in %s: %w", url, err)
	}

	return &Ethereum{c: c}, nil
}

// GasPrice returns the node's suggested gas price in wei.
func (e *Ethereum) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := e.c.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrUnavailable, err)
	}

	return price, nil
}

// Close ends the connection.
func (e *Ethereum) Close() {
	e.c.Close()
}
