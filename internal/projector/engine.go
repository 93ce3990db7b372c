// Package projector orchestrates baseline, matchup, injury and situational adjustments
// into a single projection, and compares it against a market line when one is supplied.
package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/nba-props-engine/internal/adjust"
	"github.com/preston-bernstein/nba-props-engine/internal/aggregate"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/projections"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/injury"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/matchup"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

// scheduleWindow bounds the lookup for an upcoming game against a named opponent.
const scheduleWindow = 7 * 24 * time.Hour

var (
	ErrInsufficientData = aggregate.ErrInsufficientData
	ErrUnsupportedStat  = stats.ErrUnknownStat
	ErrUnknownSubject   = errors.New("unknown player")
)

// Source is the storage access a projection needs.
type Source interface {
	aggregate.ObservationReader
	Player(ctx context.Context, id string) (players.Player, error)
	Team(ctx context.Context, id string) (teams.Team, error)
	Game(ctx context.Context, id string) (games.Game, error)
	ActiveRoster(ctx context.Context, teamID string) ([]players.Player, error)
	RecentTeamGames(ctx context.Context, teamID string, before time.Time, limit int) ([]games.Game, error)
	ScheduledGame(ctx context.Context, teamA, teamB string, from, to time.Time) (games.Game, error)
	Spread(ctx context.Context, gameID, teamID string) (float64, error)
}

// InjuryEstimator supplies the usage redistribution boost and a player's own status.
type InjuryEstimator interface {
	Estimate(ctx context.Context, player players.Player, day time.Time) injury.Impact
	Status(ctx context.Context, player players.Player, day time.Time) availability.Status
}

// Request identifies one projection. Opponent, game, threshold and prices are optional.
type Request struct {
	PlayerID   string
	Stat       stats.Kind
	OpponentID string
	GameID     string
	Date       time.Time
	Threshold  *float64
	OverPrice  *int
	UnderPrice *int
	Sportsbook string
}

// Config wires the shared, read-only collaborators.
type Config struct {
	Lookback   int
	MinMinutes float64
	Resolver   *matchup.Resolver
	Injury     InjuryEstimator
	Now        func() time.Time
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// Engine produces projections. Safe for concurrent use when its collaborators are.
type Engine struct {
	source     Source
	aggregator *aggregate.Aggregator
	cfg        Config
}

// New builds an engine over source.
func New(source Source, cfg Config) *Engine {
	if cfg.MinMinutes <= 0 {
		cfg.MinMinutes = stats.DefaultMinMinutes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		source:     source,
		aggregator: aggregate.New(source, cfg.Lookback, cfg.MinMinutes),
		cfg:        cfg,
	}
}

// With returns an engine sharing e's collaborators but reading from source.
func (e *Engine) With(source Source) *Engine {
	return New(source, e.cfg)
}

// Project builds one projection.
func (e *Engine) Project(ctx context.Context, req Request) (projections.Projection, error) {
	start := time.Now()
	proj, err := e.project(ctx, req)
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, ErrInsufficientData):
		outcome = metrics.OutcomeInsufficient
	case err != nil:
		outcome = metrics.OutcomeError
	}
	e.cfg.Metrics.RecordProjection(string(req.Stat), outcome, time.Since(start))
	return proj, err
}

func (e *Engine) project(ctx context.Context, req Request) (projections.Projection, error) {
	if !req.Stat.Valid() {
		return projections.Projection{}, fmt.Errorf("%w: %q", ErrUnsupportedStat, req.Stat)
	}
	player, err := e.source.Player(ctx, req.PlayerID)
	if errors.Is(err, store.ErrNotFound) {
		return projections.Projection{}, fmt.Errorf("%w: %s", ErrUnknownSubject, req.PlayerID)
	}
	if err != nil {
		return projections.Projection{}, fmt.Errorf("load player %s: %w", req.PlayerID, err)
	}
	logger := e.log(ctx).With(slog.String(logging.FieldPlayer, player.ID), slog.String(logging.FieldStat, string(req.Stat)))

	sample, err := e.aggregator.Load(ctx, player.ID, req.Stat)
	if err != nil {
		return projections.Projection{}, err
	}
	if !sample.Line.Sufficient() {
		return projections.Projection{}, fmt.Errorf("%w: %d qualifying games for %s", ErrInsufficientData, sample.Line.Games, player.ID)
	}

	game, hasGame := e.resolveGame(ctx, logger, player, req)
	opponentID := req.OpponentID
	if opponentID == "" && hasGame {
		if opp, ok := game.Opponent(player.TeamID); ok {
			opponentID = opp.ID
		}
	}
	day := e.referenceDay(req, game, hasGame)

	baseline := sample.Line.Baseline()
	proj := projections.Projection{
		ID:         uuid.NewString(),
		PlayerID:   player.ID,
		PlayerName: player.Name(),
		TeamID:     player.TeamID,
		OpponentID: opponentID,
		GameID:     game.ID,
		Stat:       req.Stat,
		CreatedAt:  e.cfg.Now().UTC(),
		SeasonAvg:  sample.Line.SeasonAvg,
		L5Avg:      sample.Line.L5Avg,
		L10Avg:     sample.Line.L10Avg,
		Games:      sample.Line.Games,
		Baseline:   baseline,
		Adjusted:   baseline,
		Factors:    projections.NeutralFactors(),
		Matchup: projections.Matchup{
			Reason:     matchup.ReasonUnknownOpponent,
			Grade:      projections.GradeUnknown,
			RawMatchup: 1,
			RawPace:    1,
		},
	}

	if opponentID != "" {
		opponent, err := e.source.Team(ctx, opponentID)
		missing := err != nil
		if missing {
			logger.Debug("opponent not found", slog.String(logging.FieldTeam, opponentID), slog.Any("err", err))
			opponent = teams.Team{ID: opponentID}
		}
		proj.Matchup = e.resolveMatchup(player, opponent, req.Stat)
		if missing && !proj.Matchup.Known {
			proj.Matchup.Reason = matchup.ReasonUnknownOpponent
		}
		if !proj.Matchup.Known {
			logger.Debug("matchup unknown", slog.String("reason", proj.Matchup.Reason))
		}
		proj.Factors = adjust.Build(e.adjustInputs(ctx, logger, player, opponent, game, hasGame, day, proj.Matchup, sample.Values))
		proj.Adjusted = adjust.Apply(baseline, proj.Factors)
	}

	proj.StdDev = aggregate.StdDev(sample.Values, aggregate.StdWindow)
	proj.Floor = proj.Adjusted - proj.StdDev
	proj.Ceiling = proj.Adjusted + proj.StdDev

	if req.Threshold != nil {
		proj.Market = &projections.Market{
			Line:       *req.Threshold,
			OverPrice:  req.OverPrice,
			UnderPrice: req.UnderPrice,
			Sportsbook: req.Sportsbook,
		}
		eval := Evaluate(proj.Adjusted, proj.StdDev, *req.Threshold)
		proj.Evaluation = &eval
	}
	return proj, nil
}

// resolveGame loads the requested game, or the next scheduled game against the named opponent.
func (e *Engine) resolveGame(ctx context.Context, logger *slog.Logger, player players.Player, req Request) (games.Game, bool) {
	if req.GameID != "" {
		g, err := e.source.Game(ctx, req.GameID)
		if err != nil {
			logger.Debug("game not found", slog.String(logging.FieldGame, req.GameID), slog.Any("err", err))
			return games.Game{}, false
		}
		return g, true
	}
	if req.OpponentID == "" {
		return games.Game{}, false
	}
	from := timeutil.DateOnly(e.dayOrNow(req.Date))
	g, err := e.source.ScheduledGame(ctx, player.TeamID, req.OpponentID, from, from.Add(scheduleWindow))
	if err != nil {
		return games.Game{}, false
	}
	return g, true
}

func (e *Engine) referenceDay(req Request, game games.Game, hasGame bool) time.Time {
	if hasGame {
		return timeutil.DateOnly(game.Date)
	}
	return timeutil.DateOnly(e.dayOrNow(req.Date))
}

func (e *Engine) dayOrNow(day time.Time) time.Time {
	if day.IsZero() {
		return e.cfg.Now()
	}
	return day
}

func (e *Engine) resolveMatchup(player players.Player, opponent teams.Team, kind stats.Kind) projections.Matchup {
	if e.cfg.Resolver == nil {
		return projections.Matchup{
			OpponentID: opponent.ID,
			Reason:     matchup.ReasonNoProfile,
			Grade:      projections.GradeUnknown,
			RawMatchup: 1,
			RawPace:    1,
		}
	}
	return e.cfg.Resolver.Resolve(player.Position, opponent, kind)
}

func (e *Engine) adjustInputs(ctx context.Context, logger *slog.Logger, player players.Player, opponent teams.Team, game games.Game, hasGame bool, day time.Time, m projections.Matchup, values []float64) adjust.Inputs {
	in := adjust.Inputs{
		RawMatchup:        m.RawMatchup,
		RawPace:           m.RawPace,
		IsHome:            hasGame && game.IsHome(player.TeamID),
		Injury:            1,
		InjurySource:      availability.SourceNone,
		FormValues:        values,
		OpponentDefRating: opponent.Ratings.DefensiveRating,
	}
	if e.cfg.Resolver != nil {
		in.LeagueDefRating = e.cfg.Resolver.LeagueDefensiveRating()
	}

	recent, err := e.source.RecentTeamGames(ctx, player.TeamID, day, 2)
	if err != nil {
		logger.Debug("recent games unavailable", slog.Any("err", err))
	}
	dates := make([]time.Time, 0, len(recent))
	for _, g := range recent {
		dates = append(dates, g.Date)
	}
	in.RestGapDays, in.RestKnown = adjust.RestGap(dates)

	if hasGame {
		if spread, err := e.source.Spread(ctx, game.ID, player.TeamID); err == nil {
			in.Blowout.Spread = &spread
		}
	}
	if team, err := e.source.Team(ctx, player.TeamID); err == nil && team.HasScoringMargin() && opponent.HasScoringMargin() {
		in.Blowout.TeamMargin = team.Ratings.ScoringMargin
		in.Blowout.OpponentMargin = opponent.Ratings.ScoringMargin
		in.Blowout.MarginsKnown = true
	}

	if e.cfg.Injury != nil {
		impact := e.cfg.Injury.Estimate(ctx, player, day)
		in.Injury = impact.Factor
		in.InjurySource = impact.Source
	}
	return in
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx, e.cfg.Logger)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String(logging.FieldComponent, "projector"))
}
