package players

import "strings"

// Player represents the normalized player shape.
type Player struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Position  string     `json:"position"`
	TeamID    string     `json:"teamId"`
	Active    bool       `json:"active"`
	Meta      PlayerMeta `json:"meta"`
}

// PlayerMeta holds upstream metadata.
type PlayerMeta struct {
	UpstreamPlayerID int    `json:"upstreamPlayerId"`
	JerseyNumber     string `json:"jerseyNumber"`
}

// Name returns the display name used when matching against external feeds.
func (p Player) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
