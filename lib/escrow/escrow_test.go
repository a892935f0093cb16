package escrow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/fraud"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/notify"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/memory"
)

// captureSink records delivered alerts for inspection.
type captureSink struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (c *captureSink) Notify(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("sink down")
	}

	c.texts = append(c.texts, text)

	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) delivered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string{}, c.texts...)
}

func newService(sink notify.Sink) (*Service, *memory.Memory, *notify.Dispatcher) {
	m := memory.New()
	nd := notify.NewDispatcher(sink, 16, time.Second)

	return New(m, fraud.New(fraud.DefaultThresholds()), nd), m, nd
}

func TestCreateValidation(t *testing.T) {
	s, _, nd := newService(&captureSink{})
	defer nd.Close()

	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"zero_amount", CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 0, TokenSymbol: "QIE"}},
		{"negative_amount", CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: -5, TokenSymbol: "QIE"}},
		{"no_client", CreateRequest{FreelancerAddress: "0xB", Amount: 10, TokenSymbol: "QIE"}},
		{"no_freelancer", CreateRequest{ClientAddress: "0xA", Amount: 10, TokenSymbol: "QIE"}},
		{"no_token", CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 10}},
	}

	for _, c := range cases {
		if _, err := s.Create(ctx, c.req); !errors.Is(err, ErrValidation) {
			t.Errorf("[%s] expected ErrValidation, got:%v", c.name, err)
		}
	}
}

func TestCreateFraudRejected(t *testing.T) {
	sink := &captureSink{}
	s, m, nd := newService(sink)

	ctx := context.Background()

	// amount>1000 plus a new address crosses the block threshold (0.1+0.3+0.3)
	_, err := s.Create(ctx, CreateRequest{
		ClientAddress:     "0xA",
		FreelancerAddress: "0xB",
		Amount:            5000,
		TokenSymbol:       "QIE",
		NewAddress:        true,
	})
	if !errors.Is(err, ErrFraudRejected) {
		t.Fatalf("expected ErrFraudRejected, got:%v", err)
	}

	nd.Close()

	// nothing persisted, nothing notified
	if msgs, _ := m.GetMessages(ctx, "any"); len(msgs) != 0 {
		t.Errorf("expected empty store, got:%v", msgs)
	}
	if got := sink.delivered(); len(got) != 0 {
		t.Errorf("expected no alerts, got:%v", got)
	}
}

func TestCreateOK(t *testing.T) {
	sink := &captureSink{}
	s, m, nd := newService(sink)

	ctx := context.Background()

	e, err := s.Create(ctx, CreateRequest{
		ClientAddress:     "0xA",
		FreelancerAddress: "0xB",
		Amount:            100,
		TokenSymbol:       "QIE",
	})
	if err != nil {
		t.Fatalf("err:%v", err)
	}
	if e.ID == "" || e.Status != store.StatusPending || e.RiskScore != 0.1 {
		t.Fatalf("unexpected escrow:%+v", e)
	}

	// stored record matches the returned one
	got, err := m.GetEscrow(ctx, e.ID)
	if err != nil {
		t.Fatalf("err:%v", err)
	}
	if got != e {
		t.Errorf("stored escrow differs:\n got:%+v\nwant:%+v", got, e)
	}

	nd.Close()

	alerts := sink.delivered()
	if len(alerts) != 1 || !strings.Contains(alerts[0], e.ID) {
		t.Errorf("expected one alert naming the escrow, got:%v", alerts)
	}
}

// TestCreateSinkFailure checks a dead notification sink never fails escrow creation.
func TestCreateSinkFailure(t *testing.T) {
	s, m, nd := newService(&captureSink{fail: true})
	defer nd.Close()

	ctx := context.Background()

	e, err := s.Create(ctx, CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 1, TokenSymbol: "QIE"})
	if err != nil {
		t.Fatalf("err:%v", err)
	}
	if _, err = m.GetEscrow(ctx, e.ID); err != nil {
		t.Errorf("escrow not persisted:%v", err)
	}
}

func TestTransition(t *testing.T) {
	s, _, nd := newService(&captureSink{})
	defer nd.Close()

	ctx := context.Background()

	e, err := s.Create(ctx, CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 100, TokenSymbol: "QIE"})
	if err != nil {
		t.Fatalf("err:%v", err)
	}

	if _, err = s.Transition(ctx, e.ID, "done"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got:%v", err)
	}

	if got, err := s.Transition(ctx, e.ID, store.StatusFunded); err != nil || got.Status != store.StatusFunded {
		t.Fatalf("pending->funded: escrow:%+v err:%v", got, err)
	}
	if got, err := s.Transition(ctx, e.ID, store.StatusReleased); err != nil || got.Status != store.StatusReleased {
		t.Fatalf("funded->released: escrow:%+v err:%v", got, err)
	}
	if _, err = s.Transition(ctx, e.ID, store.StatusFunded); !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got:%v", err)
	}

	if _, err = s.Transition(ctx, "missing", store.StatusFunded); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got:%v", err)
	}
}

func TestDisputePath(t *testing.T) {
	s, _, nd := newService(&captureSink{})
	defer nd.Close()

	ctx := context.Background()

	e, _ := s.Create(ctx, CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 100, TokenSymbol: "QIE"})

	for _, status := range []string{store.StatusFunded, store.StatusDisputed, store.StatusRefunded} {
		if got, err := s.Transition(ctx, e.ID, status); err != nil || got.Status != status {
			t.Fatalf("->%s: escrow:%+v err:%v", status, got, err)
		}
	}

	// refunded is terminal
	if _, err := s.Transition(ctx, e.ID, store.StatusReleased); !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got:%v", err)
	}
}

func TestAppendMessage(t *testing.T) {
	s, _, nd := newService(&captureSink{})
	defer nd.Close()

	ctx := context.Background()

	e, _ := s.Create(ctx, CreateRequest{ClientAddress: "0xA", FreelancerAddress: "0xB", Amount: 100, TokenSymbol: "QIE"})

	if _, err := s.AppendMessage(ctx, e.ID, "0xA", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty message, got:%v", err)
	}
	if _, err := s.AppendMessage(ctx, "missing", "0xA", "hello"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got:%v", err)
	}

	m, err := s.AppendMessage(ctx, e.ID, "0xA", "hello")
	if err != nil {
		t.Fatalf("err:%v", err)
	}
	if m.Timestamp.IsZero() {
		t.Error("expected an assigned timestamp")
	}

	msgs, err := s.Messages(ctx, e.ID)
	if err != nil || len(msgs) != 1 || msgs[0].Message != "hello" {
		t.Errorf("msgs:%+v err:%v", msgs, err)
	}
}
