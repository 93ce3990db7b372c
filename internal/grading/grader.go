// Package grading scores stored projections against realized box scores and
// summarizes betting accuracy over the graded history.
package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// MinMinutes is the floor for a box score line to grade against.
const MinMinutes = 5.0

// ErrGameNotFinal is returned when grading a game without a final result.
var ErrGameNotFinal = errors.New("game not final")

// Source is the storage access the grader needs.
type Source interface {
	Player(ctx context.Context, id string) (players.Player, error)
	Team(ctx context.Context, id string) (teams.Team, error)
	Game(ctx context.Context, id string) (games.Game, error)
	GamesOnDate(ctx context.Context, date time.Time) ([]games.Game, error)
	GameObservations(ctx context.Context, gameID string) ([]stats.Observation, error)
	RecentObservations(ctx context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error)
	ProjectionsForGame(ctx context.Context, gameID string) ([]projections.Projection, error)
	store.OutcomeStore
}

// Summary reports one game's grading pass.
type Summary struct {
	GameID        string                      `json:"gameId"`
	Graded        int                         `json:"graded"`
	Skipped       int                         `json:"skipped"`
	AlreadyGraded int                         `json:"alreadyGraded"`
	Outcomes      []projections.GradedOutcome `json:"outcomes"`
}

// DaySummary reports grading across every final game on a date.
type DaySummary struct {
	Date      string    `json:"date"`
	Games     int       `json:"games"`
	Graded    int       `json:"graded"`
	Summaries []Summary `json:"summaries"`
}

// Grader appends graded outcomes. It never mutates projections.
type Grader struct {
	source  Source
	now     func() time.Time
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// New builds a grader. A nil now uses time.Now.
func New(source Source, now func() time.Time, rec *metrics.Recorder, logger *slog.Logger) *Grader {
	if now == nil {
		now = time.Now
	}
	return &Grader{source: source, now: now, metrics: rec, logger: logger}
}

// Grade scores every stored projection of a final game. Projections already graded
// are counted and skipped, so repeated runs are idempotent.
func (g *Grader) Grade(ctx context.Context, gameID string) (Summary, error) {
	game, err := g.source.Game(ctx, gameID)
	if err != nil {
		return Summary{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if !game.IsFinal() {
		return Summary{}, fmt.Errorf("%w: %s is %s", ErrGameNotFinal, game.ID, game.Status)
	}
	logger := g.log(ctx).With(slog.String(logging.FieldGame, game.ID))

	box, err := g.source.GameObservations(ctx, game.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("load box score %s: %w", game.ID, err)
	}
	played := make(map[string]stats.Observation, len(box))
	for _, o := range box {
		if o.Qualifies(MinMinutes) {
			played[o.PlayerID] = o
		}
	}

	stored, err := g.source.ProjectionsForGame(ctx, game.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("load projections %s: %w", game.ID, err)
	}

	summary := Summary{GameID: game.ID}
	for _, p := range stored {
		obs, ok := played[p.PlayerID]
		if !ok {
			summary.Skipped++
			g.metrics.RecordGrade("skipped")
			continue
		}
		outcome := Classify(p, obs.Value(p.Stat), game.Date, g.now())
		err := g.source.AppendOutcome(ctx, outcome)
		switch {
		case errors.Is(err, store.ErrConflict):
			summary.AlreadyGraded++
			g.metrics.RecordGrade("duplicate")
			continue
		case err != nil:
			return summary, fmt.Errorf("append outcome for %s: %w", p.ID, err)
		}
		summary.Graded++
		summary.Outcomes = append(summary.Outcomes, outcome)
		result := string(outcome.BetResult)
		if result == "" {
			result = "graded"
		}
		g.metrics.RecordGrade(result)
	}
	logger.Info("game graded",
		slog.Int("graded", summary.Graded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("already_graded", summary.AlreadyGraded))
	return summary, nil
}

// GradeDate grades every final game on day. Games that are not final are ignored.
func (g *Grader) GradeDate(ctx context.Context, day time.Time) (DaySummary, error) {
	list, err := g.source.GamesOnDate(ctx, day)
	if err != nil {
		return DaySummary{}, fmt.Errorf("load games on %s: %w", timeutil.FormatDate(day), err)
	}
	out := DaySummary{Date: timeutil.FormatDate(day)}
	for _, game := range list {
		if !game.IsFinal() {
			continue
		}
		s, err := g.Grade(ctx, game.ID)
		if err != nil {
			return out, err
		}
		out.Games++
		out.Graded += s.Graded
		out.Summaries = append(out.Summaries, s)
	}
	if out.Games == 0 {
		g.log(ctx).Info("no completed games to grade", slog.String(logging.FieldDate, out.Date))
	}
	return out, nil
}

// Classify builds the outcome for a projection given the realized value.
func Classify(p projections.Projection, actual float64, gameDate, gradedAt time.Time) projections.GradedOutcome {
	diff := actual - p.Adjusted
	o := projections.GradedOutcome{
		ID:           uuid.NewString(),
		ProjectionID: p.ID,
		PlayerID:     p.PlayerID,
		GameID:       p.GameID,
		GameDate:     timeutil.DateOnly(gameDate),
		Stat:         p.Stat,
		Projected:    p.Adjusted,
		Actual:       actual,
		Error:        diff,
		AbsError:     abs(diff),
		EdgePct:      p.EdgePct(),
		GradedAt:     gradedAt.UTC(),
	}
	if actual != 0 {
		o.PctError = diff / actual * 100
	}
	if p.Market == nil {
		return o
	}
	line := p.Market.Line
	o.Line = &line
	o.OverPrice = p.Market.OverPrice
	o.UnderPrice = p.Market.UnderPrice
	if p.Evaluation != nil {
		over := p.Evaluation.OverProb
		o.OverProb = &over
	}
	o.Recommendation = p.Recommendation()
	o.BetResult = BetResult(o.Recommendation, actual, line)
	return o
}

// BetResult classifies a recommendation against the realized value. PASS yields "".
func BetResult(rec projections.Recommendation, actual, line float64) projections.BetResult {
	var hit bool
	switch rec {
	case projections.RecommendOver:
		hit = actual > line
	case projections.RecommendUnder:
		hit = actual < line
	default:
		return ""
	}
	switch {
	case actual == line:
		return projections.BetPush
	case hit:
		return projections.BetWin
	default:
		return projections.BetLoss
	}
}

func (g *Grader) log(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx, g.logger)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String(logging.FieldComponent, "grading"))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
