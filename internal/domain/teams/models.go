package teams

// Team is the normalized team shape shared by games, rosters and defensive profiles.
type Team struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FullName     string  `json:"fullName"`
	Abbreviation string  `json:"abbreviation"`
	City         string  `json:"city"`
	Conference   string  `json:"conference"`
	Division     string  `json:"division"`
	Ratings      Ratings `json:"ratings"`
}

// Ratings carries season-level team strength numbers. Zero means not recorded.
type Ratings struct {
	Pace            float64 `json:"pace"`
	DefensiveRating float64 `json:"defensiveRating"`
	ScoringMargin   float64 `json:"scoringMargin"`
	GamesPlayed     int     `json:"gamesPlayed"`
}

// HasPace reports whether a pace value was recorded for the team.
func (t Team) HasPace() bool {
	return t.Ratings.Pace > 0
}

// HasDefensiveRating reports whether a defensive rating was recorded.
func (t Team) HasDefensiveRating() bool {
	return t.Ratings.DefensiveRating > 0
}

// HasScoringMargin reports whether the team has enough games for a margin to mean anything.
func (t Team) HasScoringMargin() bool {
	return t.Ratings.GamesPlayed > 0
}

// Label returns the abbreviation when present, otherwise the name.
func (t Team) Label() string {
	if t.Abbreviation != "" {
		return t.Abbreviation
	}
	return t.Name
}
