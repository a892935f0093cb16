package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/chain"
)

// fakeChain replies a fixed gas price or error.
type fakeChain struct {
	price *big.Int
	err   error
}

func (f *fakeChain) GasPrice(ctx context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}

	return new(big.Int).Set(f.price), nil
}

func (f *fakeChain) Close() {}

func TestEstimate(t *testing.T) {
	price := big.NewInt(20000000000) // 20 gwei
	e := New(&fakeChain{price: price}, 21000, time.Second)

	est, err := e.Estimate(context.Background(), "0xA", "0xB", ToWei(1))
	if err != nil {
		t.Fatalf("err:%v", err)
	}

	if est.GasLimit != 21000 {
		t.Errorf("gas limit:%d expected:21000", est.GasLimit)
	}
	if est.GasPrice.Cmp(price) != 0 {
		t.Errorf("gas price:%v expected:%v", est.GasPrice, price)
	}
	if want := big.NewInt(420000000000000); est.TotalFee.Cmp(want) != 0 {
		t.Errorf("total fee:%v expected:%v", est.TotalFee, want)
	}
}

// TestEstimateHugePrice checks the fee is exact for gas prices beyond 64 bits.
func TestEstimateHugePrice(t *testing.T) {
	price, _ := new(big.Int).SetString("36893488147419103232", 10) // 2^65
	e := New(&fakeChain{price: price}, 21000, time.Second)

	est, err := e.Estimate(context.Background(), "0xA", "0xB", big.NewInt(1))
	if err != nil {
		t.Fatalf("err:%v", err)
	}

	want := new(big.Int).Mul(big.NewInt(21000), price)
	if est.TotalFee.Cmp(want) != 0 {
		t.Errorf("total fee:%v expected:%v", est.TotalFee, want)
	}
}

func TestEstimateUnavailable(t *testing.T) {
	e := New(&fakeChain{err: chain.ErrUnavailable}, 21000, time.Second)

	if _, err := e.Estimate(context.Background(), "0xA", "0xB", big.NewInt(1)); !errors.Is(err, chain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got:%v", err)
	}
}

func TestToWei(t *testing.T) {
	cases := []struct {
		amount float64
		wei    string
	}{
		{1, "1000000000000000000"},
		{0.5, "500000000000000000"},
		{0, "0"},
	}

	for _, c := range cases {
		want, _ := new(big.Int).SetString(c.wei, 10)
		if got := ToWei(c.amount); got.Cmp(want) != 0 {
			t.Errorf("ToWei(%v):%v expected:%v", c.amount, got, want)
		}
	}
}
