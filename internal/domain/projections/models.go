package projections

import (
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

// Recommendation is the side the engine favors against a market line.
type Recommendation string

const (
	RecommendOver  Recommendation = "OVER"
	RecommendUnder Recommendation = "UNDER"
	RecommendPass  Recommendation = "PASS"
)

// BetResult classifies a graded recommendation.
type BetResult string

const (
	BetWin  BetResult = "win"
	BetLoss BetResult = "loss"
	BetPush BetResult = "push"
)

// Grade is a display label for a defensive rank.
type Grade string

const (
	GradeElite    Grade = "elite"
	GradeGood     Grade = "good"
	GradeNeutral  Grade = "neutral"
	GradeTough    Grade = "tough"
	GradeLockdown Grade = "lockdown"
	GradeUnknown  Grade = "unknown"
)

// BlowoutSource tags which strategy produced the game-script factor.
type BlowoutSource string

const (
	BlowoutSpread BlowoutSource = "spread"
	BlowoutRating BlowoutSource = "rating"
	BlowoutNone   BlowoutSource = "none"
)

// Matchup is the defensive context resolved for a projection.
type Matchup struct {
	Known       bool             `json:"known"`
	Reason      string           `json:"reason,omitempty"`
	Bucket      stats.RoleBucket `json:"bucket,omitempty"`
	OpponentID  string           `json:"opponentId,omitempty"`
	ConcededAvg float64          `json:"concededAvg"`
	LeagueAvg   float64          `json:"leagueAvg"`
	Rank        int              `json:"rank,omitempty"`
	Grade       Grade            `json:"grade"`
	RawMatchup  float64          `json:"rawMatchup"`
	RawPace     float64          `json:"rawPace"`
}

// Factors holds every multiplier applied to the baseline. 1.0 is neutral.
type Factors struct {
	Matchup          float64             `json:"matchup"`
	Pace             float64             `json:"pace"`
	Home             float64             `json:"home"`
	Rest             float64             `json:"rest"`
	Blowout          float64             `json:"blowout"`
	Injury           float64             `json:"injury"`
	Form             float64             `json:"form"`
	OpponentStrength float64             `json:"opponentStrength"`
	IsHome           bool                `json:"isHome"`
	IsBackToBack     bool                `json:"isBackToBack"`
	BlowoutSource    BlowoutSource       `json:"blowoutSource"`
	InjurySource     availability.Source `json:"injurySource"`
}

// NeutralFactors returns a Factors value with every multiplier at 1.0.
func NeutralFactors() Factors {
	return Factors{
		Matchup:          1,
		Pace:             1,
		Home:             1,
		Rest:             1,
		Blowout:          1,
		Injury:           1,
		Form:             1,
		OpponentStrength: 1,
		BlowoutSource:    BlowoutNone,
		InjurySource:     availability.SourceNone,
	}
}

// Ordered returns the multipliers in application order.
func (f Factors) Ordered() []float64 {
	return []float64{f.Matchup, f.Pace, f.Home, f.Rest, f.Blowout, f.Injury, f.Form, f.OpponentStrength}
}

// Market is an optional line attached to a projection.
type Market struct {
	Line       float64 `json:"line"`
	OverPrice  *int    `json:"overPrice,omitempty"`
	UnderPrice *int    `json:"underPrice,omitempty"`
	Sportsbook string  `json:"sportsbook,omitempty"`
}

// HasPrices reports whether both sides are priced.
func (m Market) HasPrices() bool {
	return m.OverPrice != nil && m.UnderPrice != nil
}

// Evaluation is the market comparison for a projection.
type Evaluation struct {
	EdgePct        float64        `json:"edgePct"`
	OverProb       float64        `json:"overProb"`
	UnderProb      float64        `json:"underProb"`
	Recommendation Recommendation `json:"recommendation"`
}

// Projection is the engine output for one player, stat and game.
type Projection struct {
	ID         string      `json:"id"`
	PlayerID   string      `json:"playerId"`
	PlayerName string      `json:"playerName,omitempty"`
	TeamID     string      `json:"teamId"`
	OpponentID string      `json:"opponentId,omitempty"`
	GameID     string      `json:"gameId,omitempty"`
	Stat       stats.Kind  `json:"stat"`
	CreatedAt  time.Time   `json:"createdAt"`
	SeasonAvg  float64     `json:"seasonAvg"`
	L5Avg      float64     `json:"l5Avg"`
	L10Avg     float64     `json:"l10Avg"`
	Games      int         `json:"games"`
	Baseline   float64     `json:"baseline"`
	Adjusted   float64     `json:"adjusted"`
	StdDev     float64     `json:"stdDev"`
	Floor      float64     `json:"floor"`
	Ceiling    float64     `json:"ceiling"`
	Matchup    Matchup     `json:"matchup"`
	Factors    Factors     `json:"factors"`
	Market     *Market     `json:"market,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Recommendation returns the evaluated side, PASS when no line was supplied.
func (p Projection) Recommendation() Recommendation {
	if p.Evaluation == nil {
		return RecommendPass
	}
	return p.Evaluation.Recommendation
}

// EdgePct returns the evaluated edge, zero without a line.
func (p Projection) EdgePct() float64 {
	if p.Evaluation == nil {
		return 0
	}
	return p.Evaluation.EdgePct
}

// Line is a market quote for one player prop.
type Line struct {
	PlayerID   string     `json:"playerId"`
	GameID     string     `json:"gameId"`
	Stat       stats.Kind `json:"stat"`
	Date       time.Time  `json:"date"`
	Line       float64    `json:"line"`
	OverPrice  *int       `json:"overPrice,omitempty"`
	UnderPrice *int       `json:"underPrice,omitempty"`
	Sportsbook string     `json:"sportsbook"`
}

// Market returns the line as a projection market.
func (l Line) Market() Market {
	return Market{Line: l.Line, OverPrice: l.OverPrice, UnderPrice: l.UnderPrice, Sportsbook: l.Sportsbook}
}

// GradedOutcome is a realized value matched to a stored projection. Never mutated.
type GradedOutcome struct {
	ID             string         `json:"id"`
	ProjectionID   string         `json:"projectionId"`
	PlayerID       string         `json:"playerId"`
	GameID         string         `json:"gameId"`
	GameDate       time.Time      `json:"gameDate"`
	Stat           stats.Kind     `json:"stat"`
	Projected      float64        `json:"projected"`
	Actual         float64        `json:"actual"`
	Error          float64        `json:"error"`
	AbsError       float64        `json:"absError"`
	PctError       float64        `json:"pctError"`
	Line           *float64       `json:"line,omitempty"`
	OverPrice      *int           `json:"overPrice,omitempty"`
	UnderPrice     *int           `json:"underPrice,omitempty"`
	OverProb       *float64       `json:"overProb,omitempty"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	BetResult      BetResult      `json:"betResult,omitempty"`
	EdgePct        float64        `json:"edgePct"`
	GradedAt       time.Time      `json:"gradedAt"`
}

// OverHit reports whether the realized value cleared the line. Nil without a line or on an exact push.
func (o GradedOutcome) OverHit() *bool {
	if o.Line == nil || o.Actual == *o.Line {
		return nil
	}
	hit := o.Actual > *o.Line
	return &hit
}

// IsBet reports whether the outcome carries a bet classification.
func (o GradedOutcome) IsBet() bool {
	return o.BetResult != ""
}

// Price returns a pointer to an American price, for literal construction.
func Price(v int) *int {
	return &v
}
