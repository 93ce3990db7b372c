package availability

import (
	"fmt"
	"strings"
)

// Status is a normalized availability designation.
type Status string

const (
	StatusUnavailable  Status = "unavailable"
	StatusQuestionable Status = "questionable"
	StatusProbable     Status = "probable"
	StatusAvailable    Status = "available"
	StatusUnknown      Status = "unknown"
)

// Source tags where an absence signal came from.
type Source string

const (
	SourceFeed     Source = "feed"
	SourceInferred Source = "inferred"
	SourceNone     Source = "none"
)

// RawRecord is a feed row as decoded from the wire, keys and casing vary by report.
type RawRecord map[string]any

// Record is a feed row after normalization.
type Record struct {
	PlayerName string `json:"playerName"`
	TeamLabel  string `json:"teamLabel"`
	Status     Status `json:"status"`
	RawStatus  string `json:"rawStatus"`
	Reason     string `json:"reason,omitempty"`
	GameDate   string `json:"gameDate,omitempty"`
}

var (
	nameKeys   = []string{"playername", "player", "name", "player_name"}
	teamKeys   = []string{"team", "teamname", "team_name", "teamabbreviation", "team_abbr"}
	statusKeys = []string{"currentstatus", "current_status", "status", "injurystatus", "injury_status"}
	reasonKeys = []string{"reason", "injury", "description", "comment"}
	dateKeys   = []string{"gamedate", "game_date", "date"}
)

// Normalize turns a raw row into a Record. Rows without a player name are rejected.
func Normalize(raw RawRecord) (Record, bool) {
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		key = strings.ReplaceAll(key, " ", "")
		fields[key] = stringify(v)
	}

	name := firstOf(fields, nameKeys)
	if name == "" {
		return Record{}, false
	}
	rawStatus := firstOf(fields, statusKeys)
	return Record{
		PlayerName: name,
		TeamLabel:  firstOf(fields, teamKeys),
		Status:     ParseStatus(rawStatus),
		RawStatus:  rawStatus,
		Reason:     firstOf(fields, reasonKeys),
		GameDate:   firstOf(fields, dateKeys),
	}, true
}

// NormalizeAll normalizes rows, dropping the ones without a usable name.
func NormalizeAll(rows []RawRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if rec, ok := Normalize(row); ok {
			out = append(out, rec)
		}
	}
	return out
}

var statusKeywords = []struct {
	keyword string
	status  Status
}{
	{"out", StatusUnavailable},
	{"doubtful", StatusUnavailable},
	{"inactive", StatusUnavailable},
	{"suspended", StatusUnavailable},
	{"not with team", StatusUnavailable},
	{"g league", StatusUnavailable},
	{"questionable", StatusQuestionable},
	{"gtd", StatusQuestionable},
	{"game time", StatusQuestionable},
	{"day-to-day", StatusQuestionable},
	{"probable", StatusProbable},
	{"available", StatusAvailable},
	{"active", StatusAvailable},
}

// ParseStatus classifies free-form status text by keyword.
func ParseStatus(raw string) Status {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return StatusUnknown
	}
	for _, kw := range statusKeywords {
		if containsWord(text, kw.keyword) {
			return kw.status
		}
	}
	return StatusUnknown
}

// Unavailable reports whether the status removes the player from the rotation.
func (s Status) Unavailable() bool {
	return s == StatusUnavailable
}

func containsWord(text, keyword string) bool {
	idx := strings.Index(text, keyword)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		end := idx + len(keyword)
		after := end >= len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], keyword)
		if next < 0 {
			break
		}
		idx += next + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func firstOf(fields map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(fields[k]); v != "" {
			return v
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
