// Package odds converts American prices into probabilities, expected value and stake sizes.
package odds

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice is returned for American prices strictly between -100 and +100.
var ErrInvalidPrice = errors.New("invalid american price")

// Side is the preferred bet side of an evaluation.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
	SidePass  Side = "pass"
)

// Validate rejects prices that do not describe a payout.
func Validate(price int) error {
	if price > -100 && price < 100 {
		return fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}
	return nil
}

// AmericanToDecimal returns the total payout multiplier for a $1 stake.
func AmericanToDecimal(price int) float64 {
	if price > 0 {
		return float64(price)/100 + 1
	}
	return 100/math.Abs(float64(price)) + 1
}

// ImpliedProbability is the break-even probability the price encodes, margin included.
func ImpliedProbability(price int) float64 {
	return 1 / AmericanToDecimal(price)
}

// Fair is a two-sided market with the bookmaker margin removed.
type Fair struct {
	Over      float64 `json:"over"`
	Under     float64 `json:"under"`
	MarginPct float64 `json:"marginPct"`
}

// NoVig normalizes both implied probabilities so they sum to exactly 1.
func NoVig(overPrice, underPrice int) Fair {
	over := ImpliedProbability(overPrice)
	under := ImpliedProbability(underPrice)
	total := over + under
	fairOver := over / total
	return Fair{
		Over:      fairOver,
		Under:     1 - fairOver,
		MarginPct: (total - 1) * 100,
	}
}

// Probability returns the fair probability for side. Pass yields zero.
func (f Fair) Probability(side Side) float64 {
	switch side {
	case SideOver:
		return f.Over
	case SideUnder:
		return f.Under
	default:
		return 0
	}
}

// ExpectedValue is the expected profit per $1 staked at price when the bet wins with probability p.
func ExpectedValue(p float64, price int) float64 {
	if !tradable(p) {
		return 0
	}
	return p*(AmericanToDecimal(price)-1) - (1 - p)
}

// Kelly returns the bankroll fraction (p*b - q)/b, floored at zero.
func Kelly(p float64, price int) float64 {
	if !tradable(p) {
		return 0
	}
	b := AmericanToDecimal(price) - 1
	if b <= 0 {
		return 0
	}
	return math.Max(0, (p*b-(1-p))/b)
}

// Evaluation is the EV comparison of both sides of a market.
type Evaluation struct {
	OverEV  float64 `json:"overEv"`
	UnderEV float64 `json:"underEv"`
	Best    Side    `json:"bestSide"`
	Kelly   float64 `json:"kellyFraction"`
}

// Evaluate prices both sides. Over wins when its EV is positive and above under;
// under wins when its EV is positive; otherwise pass. Kelly is the larger positive side.
func Evaluate(pOver, pUnder float64, overPrice, underPrice int) Evaluation {
	ev := Evaluation{
		OverEV:  ExpectedValue(pOver, overPrice),
		UnderEV: ExpectedValue(pUnder, underPrice),
		Best:    SidePass,
	}
	switch {
	case ev.OverEV > 0 && ev.OverEV > ev.UnderEV:
		ev.Best = SideOver
	case ev.UnderEV > 0:
		ev.Best = SideUnder
	}
	if ev.OverEV > 0 {
		ev.Kelly = Kelly(pOver, overPrice)
	}
	if ev.UnderEV > 0 {
		ev.Kelly = math.Max(ev.Kelly, Kelly(pUnder, underPrice))
	}
	return ev
}

func tradable(p float64) bool {
	return p > 0 && p < 1 && !math.IsNaN(p)
}
