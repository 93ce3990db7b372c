package stats

// UsageProfile summarizes a player's recent usage share and minutes.
type UsageProfile struct {
	PlayerID   string  `json:"playerId"`
	Usage      float64 `json:"usage"`
	Minutes    float64 `json:"minutes"`
	SampleSize int     `json:"sampleSize"`
}

// Known reports whether the profile carries any usage history.
func (u UsageProfile) Known() bool {
	return u.SampleSize > 0
}

// Weighted returns usage scaled by the share of a 48 minute game played.
func (u UsageProfile) Weighted() float64 {
	return u.Usage * (u.Minutes / 48.0)
}
