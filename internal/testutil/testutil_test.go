package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/games"
	"github.com/preston-bernstein/nba-props-engine/internal/snapshots"
)

func TestNowAt(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
}

func TestLeagueFixture(t *testing.T) {
	l := NewLeague()
	if len(l.Games) != 11 || l.Upcoming.ID != UpcomingGameID {
		t.Fatalf("unexpected schedule %+v", l.Games)
	}
	if l.Upcoming.IsFinal() {
		t.Fatalf("expected upcoming game to be open")
	}

	l.Finish(UpcomingGameID, l.Box("brunson", UpcomingGameID, 35, 28, 4, 6))
	g, err := l.Store.Game(context.Background(), UpcomingGameID)
	if err != nil {
		t.Fatalf("game lookup: %v", err)
	}
	if g.Status != games.StatusFinal {
		t.Fatalf("expected finished game, got %s", g.Status)
	}
	obs, err := l.Store.GameObservations(context.Background(), UpcomingGameID)
	if err != nil || len(obs) != 1 || obs[0].OpponentID != "bos" {
		t.Fatalf("unexpected box score %+v err %v", obs, err)
	}
}

func TestSampleTeam(t *testing.T) {
	team := SampleTeam("t1")
	if team.ID != "t1" || team.FullName == "" || team.Ratings.Pace == 0 {
		t.Fatalf("unexpected team fixture %+v", team)
	}
}

func TestExportHelpers(t *testing.T) {
	w := NewTempWriter(t, 5, Day(21))
	if err := w.Write(snapshots.KindRankings, "2025-01-21", map[string]int{"count": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got map[string]int
	ReadExport(t, w.BasePath(), snapshots.KindRankings, "2025-01-21", &got)
	if got["count"] != 3 {
		t.Fatalf("unexpected export %+v", got)
	}
}

func TestBufferLogger(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered log output")
	}
}
