package metrics

// Common metric attribute keys and values to keep telemetry consistent/searchable.
const (
	AttrFeed    = "feed"
	AttrCache   = "cache"
	AttrStat    = "stat"
	AttrOutcome = "outcome"
	AttrResult  = "result"

	OutcomeHit          = "hit"
	OutcomeMiss         = "miss"
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient"
	OutcomeError        = "error"
)
