package stats

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a projectable stat. Composite kinds are sums of primitives.
type Kind string

const (
	Points   Kind = "points"
	Rebounds Kind = "rebounds"
	Assists  Kind = "assists"
	Steals   Kind = "steals"
	Blocks   Kind = "blocks"
	Threes   Kind = "threes"
	PRA      Kind = "pra"
	PR       Kind = "pr"
	PA       Kind = "pa"
	RA       Kind = "ra"
)

// ErrUnknownStat is returned when a stat label cannot be mapped to a Kind.
var ErrUnknownStat = errors.New("unknown stat kind")

var composites = map[Kind][]Kind{
	PRA: {Points, Rebounds, Assists},
	PR:  {Points, Rebounds},
	PA:  {Points, Assists},
	RA:  {Rebounds, Assists},
}

var aliases = map[string]Kind{
	"3pm":                 Threes,
	"3pt":                 Threes,
	"3ptm":                Threes,
	"three_pointers_made": Threes,
	"fg3m":                Threes,
	"r+a":                 RA,
	"p+r":                 PR,
	"p+a":                 PA,
	"p+r+a":               PRA,
	"pts":                 Points,
	"reb":                 Rebounds,
	"ast":                 Assists,
	"stl":                 Steals,
	"blk":                 Blocks,
}

// Primitives lists the directly recorded stat kinds in a stable order.
func Primitives() []Kind {
	return []Kind{Points, Rebounds, Assists, Steals, Blocks, Threes}
}

// All lists every supported kind, primitives first.
func All() []Kind {
	return append(Primitives(), PRA, PR, PA, RA)
}

// Parse maps a loosely formatted label to a Kind.
func Parse(raw string) (Kind, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if k, ok := aliases[label]; ok {
		return k, nil
	}
	k := Kind(label)
	if k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStat, raw)
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	if _, ok := composites[k]; ok {
		return true
	}
	for _, p := range Primitives() {
		if p == k {
			return true
		}
	}
	return false
}

// IsComposite reports whether k sums several primitives.
func (k Kind) IsComposite() bool {
	_, ok := composites[k]
	return ok
}

// Parts returns the primitives that make up k. A primitive returns itself.
func (k Kind) Parts() []Kind {
	if parts, ok := composites[k]; ok {
		out := make([]Kind, len(parts))
		copy(out, parts)
		return out
	}
	return []Kind{k}
}

// Variants returns the labels a stored record may carry for k.
func (k Kind) Variants() []string {
	out := []string{string(k)}
	for alias, target := range aliases {
		if target == k {
			out = append(out, alias)
		}
	}
	return out
}
