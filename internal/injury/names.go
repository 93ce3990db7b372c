package injury

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/availability"
	"github.com/preston-bernstein/nba-props-engine/internal/domain/teams"
)

// MatchThreshold is the minimum similarity for a feed row to name a player.
const MatchThreshold = 0.85

var suffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}, "v": {},
}

// NormalizeName folds accents, flips "Last, First", drops punctuation and
// generational suffixes, and lowercases.
func NormalizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	if last, first, ok := strings.Cut(folded, ","); ok {
		folded = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '-', unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, folded)

	tokens := strings.Fields(cleaned)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := suffixes[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Similarity returns a 0..1 Levenshtein ratio between normalized names.
func Similarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return strutil.Similarity(na, nb, metrics.NewLevenshtein())
}

// TeamMatches reports whether a free-form team label refers to team.
func TeamMatches(label string, team teams.Team) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return false
	}
	if team.Abbreviation != "" && label == strings.ToLower(team.Abbreviation) {
		return true
	}
	for _, part := range []string{team.FullName, team.Name} {
		if part != "" && strings.Contains(label, strings.ToLower(part)) {
			return true
		}
	}
	return false
}

// Match finds the feed row naming the player. When several rows clear the
// threshold, rows for the player's team win, then the higher score.
func Match(name string, team teams.Team, records []availability.Record) (availability.Record, float64, bool) {
	var (
		best      availability.Record
		bestScore float64
		bestTeam  bool
		found     bool
	)
	for _, rec := range records {
		score := Similarity(name, rec.PlayerName)
		if score < MatchThreshold {
			continue
		}
		onTeam := TeamMatches(rec.TeamLabel, team)
		better := !found ||
			(onTeam && !bestTeam) ||
			(onTeam == bestTeam && score > bestScore)
		if better {
			best, bestScore, bestTeam, found = rec, score, onTeam, true
		}
	}
	return best, bestScore, found
}
