package fraud

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	s := New(DefaultThresholds())

	cases := []struct {
		name     string
		in       Input
		score    float64
		decision string
	}{
		{"base", Input{FromAddress: "0xA", ToAddress: "0xB", Amount: 100}, 0.1, Allow},
		{"boundary_amount", Input{Amount: 1000}, 0.1, Allow}, // strictly greater than 1000 only
		{"large_amount", Input{Amount: 1000.01}, 0.4, Review},
		{"new_address", Input{Amount: 50, NewAddress: true}, 0.4, Review},
		{"country_mismatch", Input{Amount: 50, CountryMismatch: true}, 0.3, Review},
		{"large_and_new", Input{Amount: 5000, NewAddress: true}, 0.7, Block},
		{"all_signals", Input{Amount: 1500, NewAddress: true, CountryMismatch: true}, 0.9, Block},
		{"zero_amount", Input{}, 0.1, Allow},
	}

	for _, c := range cases {
		r := s.Score(c.in)
		if math.Abs(r.Score-c.score) > 1e-9 {
			t.Errorf("[%s] score:%v expected:%v", c.name, r.Score, c.score)
		}
		if r.Decision != c.decision {
			t.Errorf("[%s] decision:%s expected:%s", c.name, r.Decision, c.decision)
		}
	}
}

// TestScoreClamped checks the clamp holds for adversarial inputs.
func TestScoreClamped(t *testing.T) {
	s := New(DefaultThresholds())

	for _, in := range []Input{
		{Amount: math.MaxFloat64, NewAddress: true, CountryMismatch: true},
		{Amount: math.Inf(1), NewAddress: true, CountryMismatch: true},
		{Amount: -1e18},
	} {
		r := s.Score(in)
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("score out of range for %+v: %v", in, r.Score)
		}
	}
}

// TestScoreDeterministic checks the scorer is a pure function of its input.
func TestScoreDeterministic(t *testing.T) {
	s := New(DefaultThresholds())
	in := Input{FromAddress: "0xA", ToAddress: "0xB", Amount: 1500, NewAddress: true}

	first := s.Score(in)
	for i := 0; i < 10; i++ {
		if got := s.Score(in); got != first {
			t.Errorf("score not deterministic: %+v vs %+v", got, first)
		}
	}
}

// TestCustomThresholds checks decisions follow the configured thresholds, not hardcoded constants.
func TestCustomThresholds(t *testing.T) {
	s := New(Thresholds{Low: 0.05, High: 0.2})

	if r := s.Score(Input{Amount: 1}); r.Decision != Review {
		t.Errorf("expected base score to review with a lowered threshold, got %s", r.Decision)
	}
	if r := s.Score(Input{Amount: 50, CountryMismatch: true}); r.Decision != Block {
		t.Errorf("expected 0.3 to block with a lowered threshold, got %s", r.Decision)
	}
}
