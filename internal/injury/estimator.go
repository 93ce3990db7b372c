// Package injury converts missing high-usage teammates into a usage redistribution multiplier.
package injury

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/adjust"
	"github.com/preston-bernstein/nba-props-engine/internal/cache"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/players"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/metrics"
	"github.com/preston-bernstein/nba-props-engine/internal/providers"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

const (
	// FeedWeight scales usage of a teammate the feed lists as unavailable.
	FeedWeight = 1.0
	// InferredWeight scales usage of a teammate inferred absent from the last box score.
	InferredWeight = 0.6
	// UsageToStat converts a usage share gain into a stat gain.
	UsageToStat = 0.85

	DefaultUsageTTL = 6 * time.Hour
	DefaultFeedTTL  = time.Hour
)

// Source is the storage access the estimator needs.
type Source interface {
	ObservationSource
	GameObservations(ctx context.Context, gameID string) ([]stats.Observation, error)
	ActiveRoster(ctx context.Context, teamID string) ([]players.Player, error)
	Team(ctx context.Context, id string) (teams.Team, error)
	RecentTeamGames(ctx context.Context, teamID string, before time.Time, limit int) ([]games.Game, error)
}

// ReportSource returns the availability report for a day.
type ReportSource interface {
	Fetch(ctx context.Context, day time.Time) (providers.Report, error)
}

// Absence is one teammate counted toward the missing usage pool.
type Absence struct {
	PlayerID string              `json:"playerId"`
	Name     string              `json:"name"`
	Source   availability.Source `json:"source"`
	Usage    float64             `json:"usage"`
	Weighted float64             `json:"weighted"`
}

// Impact is the estimator result for one player and date.
type Impact struct {
	Factor       float64             `json:"factor"`
	Source       availability.Source `json:"source"`
	MissingUsage float64             `json:"missingUsage"`
	Absent       []Absence           `json:"absent,omitempty"`
}

// Neutral is the no-effect impact.
func Neutral() Impact {
	return Impact{Factor: 1, Source: availability.SourceNone}
}

// Config tunes caching and inference.
type Config struct {
	UsageTTL   time.Duration
	FeedTTL    time.Duration
	MinMinutes float64
	Now        func() time.Time
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// Estimator computes injury impacts. Safe for concurrent use.
type Estimator struct {
	source     Source
	reports    ReportSource
	usage      *cache.TTL[string, stats.UsageProfile]
	feed       *cache.TTL[string, []availability.Record]
	minMinutes float64
	logger     *slog.Logger
}

// New builds an estimator. A nil reports source always falls back to inference.
func New(source Source, reports ReportSource, cfg Config) *Estimator {
	if cfg.UsageTTL == 0 {
		cfg.UsageTTL = DefaultUsageTTL
	}
	if cfg.FeedTTL == 0 {
		cfg.FeedTTL = DefaultFeedTTL
	}
	if cfg.MinMinutes <= 0 {
		cfg.MinMinutes = stats.DefaultMinMinutes
	}
	opts := []cache.Option{cache.WithClock(cfg.Now), cache.WithMetrics(cfg.Metrics)}
	return &Estimator{
		source:     source,
		reports:    reports,
		usage:      cache.New[string, stats.UsageProfile]("usage_profiles", cfg.UsageTTL, opts...),
		feed:       cache.New[string, []availability.Record]("availability_reports", cfg.FeedTTL, opts...),
		minMinutes: cfg.MinMinutes,
		logger:     cfg.Logger,
	}
}

// UsageProfile returns the cached usage profile for a player.
func (e *Estimator) UsageProfile(ctx context.Context, playerID string) (stats.UsageProfile, error) {
	return e.usage.Get(ctx, playerID, func(ctx context.Context) (stats.UsageProfile, error) {
		return loadUsageProfile(ctx, e.source, playerID)
	})
}

// Report returns the normalized availability rows for a day. Feed failures
// resolve to an empty report, which is cached like any other.
func (e *Estimator) Report(ctx context.Context, day time.Time) []availability.Record {
	key := timeutil.FormatDate(day)
	records, _ := e.feed.Get(ctx, key, func(ctx context.Context) ([]availability.Record, error) {
		if e.reports == nil {
			return []availability.Record{}, nil
		}
		report, err := e.reports.Fetch(ctx, day)
		if err != nil {
			e.log(ctx).Debug("availability feed unavailable", slog.String(logging.FieldDate, key), slog.Any("err", err))
			return []availability.Record{}, nil
		}
		return availability.NormalizeAll(report.Records), nil
	})
	return records
}

// Status resolves the player's feed status for a day. Ambiguous or missing rows are unknown.
func (e *Estimator) Status(ctx context.Context, player players.Player, day time.Time) availability.Status {
	team, err := e.source.Team(ctx, player.TeamID)
	if err != nil {
		team = teams.Team{ID: player.TeamID}
	}
	rec, _, ok := Match(player.Name(), team, e.Report(ctx, day))
	if !ok {
		return availability.StatusUnknown
	}
	return rec.Status
}

// Estimate returns the usage redistribution boost for player on day.
// Every missing input resolves to the neutral impact.
func (e *Estimator) Estimate(ctx context.Context, player players.Player, day time.Time) Impact {
	logger := e.log(ctx).With(slog.String(logging.FieldPlayer, player.ID))

	subject, err := e.UsageProfile(ctx, player.ID)
	if err != nil || !subject.Known() || subject.Weighted() <= 0 {
		return Neutral()
	}

	roster, err := e.source.ActiveRoster(ctx, player.TeamID)
	if err != nil {
		logger.Debug("roster unavailable", slog.Any("err", err))
		return Neutral()
	}
	teammates := make([]players.Player, 0, len(roster))
	for _, p := range roster {
		if p.ID != player.ID {
			teammates = append(teammates, p)
		}
	}
	if len(teammates) == 0 {
		return Neutral()
	}

	team, err := e.source.Team(ctx, player.TeamID)
	if err != nil {
		team = teams.Team{ID: player.TeamID}
	}

	absent, source := e.feedAbsences(ctx, logger, team, teammates, day)
	if source == availability.SourceNone {
		absent, source = e.inferredAbsences(ctx, logger, team.ID, teammates, day)
	}
	if len(absent) == 0 {
		return Neutral()
	}

	impact := Impact{Factor: 1, Source: availability.SourceNone}
	var healthy float64
	for _, tm := range teammates {
		profile, err := e.UsageProfile(ctx, tm.ID)
		if err != nil || !profile.Known() {
			continue
		}
		if _, out := absent[tm.ID]; !out {
			healthy += profile.Weighted()
			continue
		}
		if !IsCore(profile) {
			continue
		}
		weight := FeedWeight
		if source == availability.SourceInferred {
			weight = InferredWeight
		}
		contribution := profile.Weighted() * weight
		impact.MissingUsage += contribution
		impact.Absent = append(impact.Absent, Absence{
			PlayerID: tm.ID,
			Name:     tm.Name(),
			Source:   source,
			Usage:    profile.Usage,
			Weighted: contribution,
		})
	}
	if impact.MissingUsage == 0 || healthy <= 0 {
		return Neutral()
	}

	impact.Source = source
	impact.Factor = Factor(subject.Weighted(), healthy, impact.MissingUsage)
	if impact.Factor > 1.02 {
		logger.Info("injury boost applied",
			slog.Float64("factor", impact.Factor),
			slog.Float64("missing_usage", impact.MissingUsage),
			slog.String("source", string(source)))
	}
	return impact
}

// Factor turns the subject's share of healthy usage and the missing pool into a clamped boost.
func Factor(subjectWeighted, healthySum, missing float64) float64 {
	if subjectWeighted <= 0 || healthySum <= 0 || missing <= 0 {
		return 1
	}
	share := subjectWeighted / healthySum * missing
	return adjust.InjuryRange.Clamp(1 + (share/subjectWeighted)*UsageToStat)
}

// feedAbsences matches teammates against the day's report. SourceNone means
// the report had no usable rows for the team.
func (e *Estimator) feedAbsences(ctx context.Context, logger *slog.Logger, team teams.Team, teammates []players.Player, day time.Time) (map[string]struct{}, availability.Source) {
	var teamRows []availability.Record
	for _, rec := range e.Report(ctx, day) {
		if TeamMatches(rec.TeamLabel, team) {
			teamRows = append(teamRows, rec)
		}
	}
	if len(teamRows) == 0 {
		return nil, availability.SourceNone
	}

	absent := make(map[string]struct{})
	for _, tm := range teammates {
		rec, score, ok := Match(tm.Name(), team, teamRows)
		if !ok {
			logger.Debug("no confident feed match", slog.String("name", tm.Name()), slog.Float64("best", score))
			continue
		}
		if rec.Status.Unavailable() {
			absent[tm.ID] = struct{}{}
		}
	}
	return absent, availability.SourceFeed
}

// inferredAbsences treats active teammates who did not log qualifying minutes in
// the team's last completed game before day as absent.
func (e *Estimator) inferredAbsences(ctx context.Context, logger *slog.Logger, teamID string, teammates []players.Player, day time.Time) (map[string]struct{}, availability.Source) {
	recent, err := e.source.RecentTeamGames(ctx, teamID, timeutil.DateOnly(day), 1)
	if err != nil || len(recent) == 0 {
		return nil, availability.SourceNone
	}
	box, err := e.source.GameObservations(ctx, recent[0].ID)
	if err != nil || len(box) == 0 {
		logger.Debug("no box score for inference", slog.String(logging.FieldGame, recent[0].ID))
		return nil, availability.SourceNone
	}
	played := make(map[string]struct{}, len(box))
	for _, o := range box {
		if o.TeamID == teamID && o.Qualifies(e.minMinutes) {
			played[o.PlayerID] = struct{}{}
		}
	}
	absent := make(map[string]struct{})
	for _, tm := range teammates {
		if _, ok := played[tm.ID]; !ok {
			absent[tm.ID] = struct{}{}
		}
	}
	return absent, availability.SourceInferred
}

func (e *Estimator) log(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx, e.logger)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String(logging.FieldComponent, "injury"))
}
