// Package fraud implements the transaction risk scoring heuristic.
package fraud

// Decision labels derived from a score for caller convenience.
const (
	Allow  = "allow"
	Review = "review"
	Block  = "block"
)

// Score weights of the heuristic. Each signal is independent and the sum is clamped to 1.0.
const (
	baseScore    = 0.1
	largeAmount  = 1000.0
	largeAmountW = 0.3
	newAddressW  = 0.3
	countryMismW = 0.2
)

// Thresholds separate the score range into the allow / review / block decisions.
type Thresholds struct {
	Low  float64 `json:"low"`  // score < Low -> allow
	High float64 `json:"high"` // score >= High -> block
}

// DefaultThresholds returns the standard decision thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.3, High: 0.7}
}

// Input contains the signals for a transaction-intent to be scored.
type Input struct {
	FromAddress     string  `json:"from_address"`
	ToAddress       string  `json:"to_address"`
	Amount          float64 `json:"amount"`
	NewAddress      bool    `json:"is_new_address"`
	CountryMismatch bool    `json:"country_mismatch"`
}

// Result carries the risk score in [0,1] and the derived decision label.
type Result struct {
	Score    float64 `json:"score"`
	Decision string  `json:"decision"`
}

// Scorer maps transaction-intents to risk scores. It is pure and never fails.
type Scorer struct {
	t Thresholds
}

// New returns a Scorer with the given decision thresholds.
func New(t Thresholds) *Scorer {
	return &Scorer{t: t}
}

// Score computes the additive risk heuristic for the given input.
func (s *Scorer) Score(in Input) Result {
	score := baseScore
	if in.Amount > largeAmount {
		score += largeAmountW
	}
	if in.NewAddress {
		score += newAddressW
	}
	if in.CountryMismatch {
		score += countryMismW
	}
	if score > 1.0 {
		score = 1.0
	}

	return Result{Score: score, Decision: s.decide(score)}
}

func (s *Scorer) decide(score float64) string {
	switch {
	case score < s.t.Low:
		return Allow
	case score < s.t.High:
		return Review
	default:
		return Block
	}
}
