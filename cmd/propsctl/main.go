// Command propsctl drives the projection engine: single projections, simulations,
// edge scans, grading runs, accuracy reports and matchup rankings.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/preston-bernstein/nba-props-engine/internal/config"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
	"github.com/preston-bernstein/nba-props-engine/internal/grading"
	"github.com/preston-bernstein/nba-props-engine/internal/logging"
	"github.com/preston-bernstein/nba-props-engine/internal/montecarlo"
	"github.com/preston-bernstein/nba-props-engine/internal/projector"
	"github.com/preston-bernstein/nba-props-engine/internal/scan"
	"github.com/preston-bernstein/nba-props-engine/internal/server"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
	"github.com/preston-bernstein/nba-props-engine/internal/timeutil"
)

const (
	appName    = "nba-props-engine"
	appVersion = "dev"

	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: propsctl <command> [flags]

commands:
  project    project one player stat, or every rotation player in a game
  simulate   sample a projection distribution and price a line
  edges      scan the day's market lines for edges
  grade      grade projections for a final game or a whole date
  report     summarize graded history
  rankings   rank teams by defense against a role and stat
  streak     hit streak against a line over recent games
  export     print a stored export
`

type command func(ctx context.Context, app *server.App, args []string, out io.Writer) error

var commands = map[string]command{
	"project":  runProject,
	"simulate": runSimulate,
	"edges":    runEdges,
	"grade":    runGrade,
	"report":   runReport,
	"rankings": runRankings,
	"streak":   runStreak,
	"export":   runExport,
}

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: appName,
		Version: appVersion,
		Output:  stderr,
	})
	ctx = logging.WithLogger(ctx, logger)

	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		logging.Error(logger, "startup failed", err)
		return exitError
	}
	app.StartMetrics()
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logging.Warn(logger, "shutdown incomplete", slog.Any("err", err))
		}
	}()

	if err := cmd(ctx, app, args[1:], stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return exitUsage
		}
		logging.Error(logger, args[0]+" failed", err)
		return exitError
	}
	return exitOK
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runProject(ctx context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("project")
	player := fs.String("player", "", "player id")
	stat := fs.String("stat", "pts", "stat kind")
	statList := fs.String("stats", "", "comma separated stat kinds for -game without -player")
	opponent := fs.String("opponent", "", "opponent team id")
	game := fs.String("game", "", "game id")
	date := fs.String("date", "", "game date (YYYY-MM-DD)")
	book := fs.String("book", "", "sportsbook label")
	var line optionalFloat
	var over, under optionalInt
	fs.Var(&line, "line", "prop line")
	fs.Var(&over, "over", "American over price")
	fs.Var(&under, "under", "American under price")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *player == "" {
		if *game == "" {
			return fmt.Errorf("%w: project needs -player or -game", errUsage)
		}
		kinds, err := parseKinds(*statList)
		if err != nil {
			return err
		}
		list, err := app.Engine.ProjectGame(ctx, *game, kinds)
		if err != nil {
			return err
		}
		return writeJSON(out, list)
	}

	kind, err := stats.Parse(*stat)
	if err != nil {
		return err
	}
	day, err := parseDay(*date)
	if err != nil {
		return err
	}
	proj, err := app.Engine.Project(ctx, projector.Request{
		PlayerID:   *player,
		Stat:       kind,
		OpponentID: *opponent,
		GameID:     *game,
		Date:       day,
		Threshold:  line.ptr(),
		OverPrice:  over.ptr(),
		UnderPrice: under.ptr(),
		Sportsbook: *book,
	})
	if errors.Is(err, projector.ErrInsufficientData) {
		return writeJSON(out, noProjection{PlayerID: *player, Stat: kind, Reason: statusInsufficient, Detail: err.Error()})
	}
	if err != nil {
		return err
	}
	return writeJSON(out, proj)
}

const statusInsufficient = "insufficient_data"

// noProjection is printed when a player has too few qualifying games to project.
type noProjection struct {
	PlayerID  string     `json:"playerId"`
	Stat      stats.Kind `json:"stat"`
	Projected bool       `json:"projected"`
	Reason    string     `json:"reason"`
	Detail    string     `json:"detail"`
}

func runSimulate(_ context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("simulate")
	mean := fs.Float64("mean", 0, "projected mean")
	std := fs.Float64("std", 0, "projected standard deviation")
	stat := fs.String("stat", "pts", "stat kind")
	samples := fs.Int("samples", 0, "override sample count")
	seed := fs.Uint64("seed", 0, "fixed seed for reproducible runs")
	var line, ceiling optionalFloat
	var over, under optionalInt
	fs.Var(&line, "line", "prop line")
	fs.Var(&ceiling, "ceiling", "upper clamp")
	fs.Var(&over, "over", "American over price")
	fs.Var(&under, "under", "American under price")
	if err := parse(fs, args); err != nil {
		return err
	}
	kind, err := stats.Parse(*stat)
	if err != nil {
		return err
	}

	sim := app.Simulator
	if *samples > 0 || *seed != 0 {
		sim = app.NewSimulator(*samples, *seed)
	}
	res, err := sim.Simulate(montecarlo.Input{
		Mean:       *mean,
		StdDev:     *std,
		Stat:       kind,
		Threshold:  line.ptr(),
		Ceiling:    ceiling.ptr(),
		OverPrice:  over.ptr(),
		UnderPrice: under.ptr(),
	})
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runEdges(ctx context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("edges")
	date := fs.String("date", "", "slate date (YYYY-MM-DD), defaults to today")
	statList := fs.String("stats", "", "comma separated stat kinds")
	book := fs.String("book", "", "sportsbook filter")
	save := fs.Bool("save", false, "persist projections for grading")
	export := fs.Bool("export", false, "write an edges export")
	if err := parse(fs, args); err != nil {
		return err
	}
	day, err := parseDay(*date)
	if err != nil {
		return err
	}
	kinds, err := parseKinds(*statList)
	if err != nil {
		return err
	}
	res, err := app.Edges(ctx, scan.Query{Date: day, Stats: kinds, Sportsbook: *book, Save: *save}, *export)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runGrade(ctx context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("grade")
	game := fs.String("game", "", "grade a single game")
	date := fs.String("date", "", "grade every final game on a date, defaults to today")
	export := fs.Bool("export", false, "write a grades export")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *game != "" {
		summary, err := app.Grader.Grade(ctx, *game)
		if err != nil {
			return err
		}
		return writeJSON(out, summary)
	}
	day, err := parseDay(*date)
	if err != nil {
		return err
	}
	if day.IsZero() {
		day = app.Today()
	}
	res, err := app.GradeDate(ctx, day, *export)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runReport(ctx context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("report")
	stat := fs.String("stat", "", "restrict to one stat kind")
	since := fs.String("since", "", "earliest game date (YYYY-MM-DD)")
	days := fs.Int("days", 0, "look back this many days")
	export := fs.Bool("export", false, "write a report export")
	var minEdge optionalFloat
	fs.Var(&minEdge, "min-edge", "minimum absolute edge percent")
	if err := parse(fs, args); err != nil {
		return err
	}
	f := grading.Filter{DaysBack: *days, MinEdge: minEdge.ptr()}
	if *stat != "" {
		kind, err := stats.Parse(*stat)
		if err != nil {
			return err
		}
		f.Stat = kind
	}
	day, err := parseDay(*since)
	if err != nil {
		return err
	}
	f.Since = day
	res, err := app.Report(ctx, f, *export)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runRankings(_ context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("rankings")
	role := fs.String("role", "G", "position or role bucket")
	stat := fs.String("stat", "pts", "stat kind")
	export := fs.Bool("export", false, "write a rankings export")
	if err := parse(fs, args); err != nil {
		return err
	}
	bucket, ok := stats.MapRole(*role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", errUsage, *role)
	}
	kind, err := stats.Parse(*stat)
	if err != nil {
		return err
	}
	list, err := app.Rankings(bucket, kind, *export)
	if err != nil {
		return err
	}
	return writeJSON(out, list)
}

func runStreak(ctx context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("streak")
	player := fs.String("player", "", "player id")
	stat := fs.String("stat", "pts", "stat kind")
	line := fs.Float64("line", 0, "threshold to beat")
	games := fs.Int("games", grading.DefaultStreakGames, "recent games to scan")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *player == "" {
		return fmt.Errorf("%w: streak needs -player", errUsage)
	}
	kind, err := stats.Parse(*stat)
	if err != nil {
		return err
	}
	res, err := app.Grader.PlayerStreak(ctx, *player, kind, *line, *games)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runExport(_ context.Context, app *server.App, args []string, out io.Writer) error {
	fs := newFlagSet("export")
	kind := fs.String("kind", string(snapshots.KindEdges), "export kind")
	date := fs.String("date", "", "export date, defaults to the latest")
	list := fs.Bool("list", false, "list stored dates instead")
	if err := parse(fs, args); err != nil {
		return err
	}
	k := snapshots.Kind(*kind)
	if !k.Valid() {
		return fmt.Errorf("%w: unknown export kind %q", errUsage, *kind)
	}
	if *list {
		dates, err := app.Archive.Dates(k)
		if err != nil {
			return err
		}
		return writeJSON(out, dates)
	}

	var payload json.RawMessage
	if *date == "" {
		if _, err := app.Archive.Latest(k, &payload); err != nil {
			return err
		}
	} else if err := app.Archive.Load(k, *date, &payload); err != nil {
		return err
	}
	return writeJSON(out, payload)
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", errUsage, raw)
	}
	return day, nil
}

func parseKinds(raw string) ([]stats.Kind, error) {
	if raw == "" {
		return nil, nil
	}
	var kinds []stats.Kind
	for _, part := range strings.Split(raw, ",") {
		k, err := stats.Parse(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
