package injury

import (
	"testing"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Nikola Jokić", "nikola jokic"},
		{"Jackson Jr., Jaren", "jaren jackson"},
		{"Gilgeous-Alexander, Shai", "shai gilgeous alexander"},
		{"O'Neale, Royce", "royce oneale"},
		{"Kelly Oubre Jr.", "kelly oubre"},
		{"Robert Williams III", "robert williams"},
		{"  Luka   Dončić ", "luka doncic"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Luka Doncic", "Dončić, Luka"); got != 1 {
		t.Fatalf("expected exact match after normalization, got %v", got)
	}
	if got := Similarity("Jalen Brunson", "Jalen Brunsen"); got < MatchThreshold {
		t.Fatalf("expected one-letter typo to clear threshold, got %v", got)
	}
	if got := Similarity("Jalen Brunson", "Josh Hart"); got >= MatchThreshold {
		t.Fatalf("expected different names below threshold, got %v", got)
	}
	if got := Similarity("", "Josh Hart"); got != 0 {
		t.Fatalf("expected empty name to score 0, got %v", got)
	}
}

func TestTeamMatches(t *testing.T) {
	knicks := teams.Team{ID: "t1", Name: "Knicks", FullName: "New York Knicks", Abbreviation: "NYK"}
	cases := []struct {
		label string
		want  bool
	}{
		{"New York Knicks", true},
		{"NYK", true},
		{"knicks", true},
		{"Brooklyn Nets", false},
		{"", false},
	}
	for _, c := range cases {
		if got := TeamMatches(c.label, knicks); got != c.want {
			t.Fatalf("TeamMatches(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestMatchPrefersTeamRow(t *testing.T) {
	thunder := teams.Team{ID: "okc", Name: "Thunder", FullName: "Oklahoma City Thunder", Abbreviation: "OKC"}
	records := []availability.Record{
		{PlayerName: "Williams, Jalen", TeamLabel: "Denver Nuggets", Status: availability.StatusAvailable},
		{PlayerName: "Williams, Jalen", TeamLabel: "Oklahoma City Thunder", Status: availability.StatusUnavailable},
		{PlayerName: "Holmgren, Chet", TeamLabel: "Oklahoma City Thunder", Status: availability.StatusQuestionable},
	}

	rec, score, ok := Match("Jalen Williams", thunder, records)
	if !ok || score != 1 {
		t.Fatalf("expected confident match, got ok=%v score=%v", ok, score)
	}
	if rec.Status != availability.StatusUnavailable {
		t.Fatalf("expected team row to win, got %+v", rec)
	}

	if _, _, ok := Match("Shai Gilgeous-Alexander", thunder, records); ok {
		t.Fatalf("expected no match below threshold")
	}
}
