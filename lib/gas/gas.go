// Package gas implements fee estimation for simple value transfers.
package gas

import (
	"context"
	"math/big"
	"time"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/chain"
)

// weiPerToken is the number of wei in one native token (18 decimals, as for ether).
var weiPerToken = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// Estimate contains the fee estimate for a transfer. TotalFee is GasLimit*GasPrice computed exactly: gas prices are
// wei amounts and routinely exceed 64 bits.
type Estimate struct {
	GasLimit uint64   `json:"gas"`
	GasPrice *big.Int `json:"gas_price"`
	TotalFee *big.Int `json:"total_fee"`
}

// Estimator queries the chain node for the current gas price and applies a fixed gas-limit heuristic appropriate to
// a simple value transfer.
type Estimator struct {
	c        chain.Client
	gasLimit uint64
	timeout  time.Duration
}

// New returns an Estimator using the given chain client, gas limit and upstream timeout.
func New(c chain.Client, gasLimit uint64, timeout time.Duration) *Estimator {
	return &Estimator{c: c, gasLimit: gasLimit, timeout: timeout}
}

// Estimate returns the fee estimate for transferring amountWei from fromAddress to toAddress. Errors from the node
// are propagated, not retried.
func (e *Estimator) Estimate(ctx context.Context, fromAddress, toAddress string, amountWei *big.Int) (Estimate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	price, err := e.c.GasPrice(ctx)
	if err != nil {
		return Estimate{}, err
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(e.gasLimit), price)

	return Estimate{GasLimit: e.gasLimit, GasPrice: price, TotalFee: fee}, nil
}

// ToWei converts a decimal amount of the native token to wei, truncating below one wei.
func ToWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), weiPerToken).Int(nil)

	return wei
}
