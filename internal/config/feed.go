package config

import "time"

// FeedConfig controls how the availability feed is reached.
type FeedConfig struct {
	Provider        string        `koanf:"provider"`
	BaseURL         string        `koanf:"base_url"`
	APIKey          string        `koanf:"api_key"`
	Timeout         time.Duration `koanf:"timeout"`
	RetryAttempts   int           `koanf:"retry_attempts"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	MinInterval     time.Duration `koanf:"min_interval"`
	ReleaseHours    []int         `koanf:"release_hours"`
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
	FixturePath     string        `koanf:"fixture_path"`
}

func defaultFeed() FeedConfig {
	hours := make([]int, len(defaultReleaseHours))
	copy(hours, defaultReleaseHours)
	return FeedConfig{
		Provider:        "injuryreport",
		BaseURL:         defaultFeedBaseURL,
		Timeout:         defaultFeedTimeout,
		RetryAttempts:   defaultRetryAttempts,
		RetryBackoff:    defaultRetryBackoff,
		MinInterval:     defaultFeedInterval,
		ReleaseHours:    hours,
		BreakerFailures: defaultBreakerFails,
		BreakerTimeout:  defaultBreakerTimeout,
	}
}
