package injury

import (
	"context"

	"github.com/preston-bernstein/nba-props-engine/internal/domain/stats"
)

const (
	// UsageWindow is how many recent qualifying games feed a usage profile.
	UsageWindow = 10
	// UsageMinMinutes is the minutes floor for a game to count toward usage.
	UsageMinMinutes = 15.0
	// CoreUsage is the usage share above which a teammate is core rotation.
	CoreUsage = 20.0
	// usageLookback bounds how far back to scan for games carrying a usage value.
	usageLookback = 82
)

// ObservationSource is the box score access the usage profile needs.
type ObservationSource interface {
	RecentObservations(ctx context.Context, playerID string, limit int, minMinutes float64) ([]stats.Observation, error)
}

// BuildUsageProfile averages usage and minutes over the player's last
// UsageWindow games that cleared the minutes floor and recorded usage.
func BuildUsageProfile(playerID string, recent []stats.Observation) stats.UsageProfile {
	profile := stats.UsageProfile{PlayerID: playerID}
	var usageSum, minutesSum float64
	for _, o := range recent {
		if profile.SampleSize == UsageWindow {
			break
		}
		u, ok := o.UsageValue()
		if !ok || !o.Qualifies(UsageMinMinutes) {
			continue
		}
		usageSum += u
		minutesSum += o.Minutes
		profile.SampleSize++
	}
	if profile.SampleSize > 0 {
		n := float64(profile.SampleSize)
		profile.Usage = usageSum / n
		profile.Minutes = minutesSum / n
	}
	return profile
}

// IsCore reports whether the profile clears the core rotation floor.
func IsCore(p stats.UsageProfile) bool {
	return p.Known() && p.Usage > CoreUsage && p.Minutes >= UsageMinMinutes
}

func loadUsageProfile(ctx context.Context, src ObservationSource, playerID string) (stats.UsageProfile, error) {
	recent, err := src.RecentObservations(ctx, playerID, usageLookback, UsageMinMinutes)
	if err != nil {
		return stats.UsageProfile{}, err
	}
	return BuildUsageProfile(playerID, recent), nil
}
