package stats

import "time"

// DefaultMinMinutes is the participation floor for a qualifying observation.
const DefaultMinMinutes = 10.0

// Observation is one game's box score line for one player.
type Observation struct {
	PlayerID   string    `json:"playerId"`
	GameID     string    `json:"gameId"`
	TeamID     string    `json:"teamId"`
	OpponentID string    `json:"opponentId"`
	Date       time.Time `json:"date"`
	Minutes    float64   `json:"minutes"`
	Usage      *float64  `json:"usage,omitempty"`
	Points     float64   `json:"points"`
	Rebounds   float64   `json:"rebounds"`
	Assists    float64   `json:"assists"`
	Steals     float64   `json:"steals"`
	Blocks     float64   `json:"blocks"`
	Threes     float64   `json:"threes"`
}

// Qualifies reports whether the observation clears the minutes floor.
func (o Observation) Qualifies(minMinutes float64) bool {
	return o.Minutes >= minMinutes
}

// Value returns the recorded value for k, summing parts for composites.
func (o Observation) Value(k Kind) float64 {
	if k.IsComposite() {
		var total float64
		for _, p := range k.Parts() {
			total += o.Value(p)
		}
		return total
	}
	switch k {
	case Points:
		return o.Points
	case Rebounds:
		return o.Rebounds
	case Assists:
		return o.Assists
	case Steals:
		return o.Steals
	case Blocks:
		return o.Blocks
	case Threes:
		return o.Threes
	default:
		return 0
	}
}

// UsageValue returns the usage rate and whether one was recorded.
func (o Observation) UsageValue() (float64, bool) {
	if o.Usage == nil {
		return 0, false
	}
	return *o.Usage, true
}

// Values extracts k from observations, preserving order.
func Values(obs []Observation, k Kind) []float64 {
	out := make([]float64, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.Value(k))
	}
	return out
}
