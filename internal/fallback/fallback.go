// Package fallback runs ordered strategy lists where each step reports success, skip or failure.
package fallback

import "context"

// Outcome tags the result of one strategy attempt.
type Outcome string

const (
	Success Outcome = "success"
	Skip    Outcome = "skip"
	Failed  Outcome = "failed"
)

// Attempt is the tagged result of a single strategy.
type Attempt[T any] struct {
	Strategy string
	Outcome  Outcome
	Value    T
	Err      error
}

// Strategy is one named step in a chain.
type Strategy[T any] struct {
	Name string
	Try  func(ctx context.Context) Attempt[T]
}

// Ok builds a success attempt.
func Ok[T any](v T) Attempt[T] {
	return Attempt[T]{Outcome: Success, Value: v}
}

// Skipped builds a skip attempt (strategy not applicable).
func Skipped[T any]() Attempt[T] {
	return Attempt[T]{Outcome: Skip}
}

// Fail builds a failed attempt.
func Fail[T any](err error) Attempt[T] {
	return Attempt[T]{Outcome: Failed, Err: err}
}

// Run tries strategies in order and stops at the first success.
// It returns the winning attempt (ok=true) plus every attempt made, in order.
func Run[T any](ctx context.Context, chain []Strategy[T]) (Attempt[T], bool, []Attempt[T]) {
	attempts := make([]Attempt[T], 0, len(chain))
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt[T]{Strategy: s.Name, Outcome: Failed, Err: err})
			break
		}
		a := s.Try(ctx)
		a.Strategy = s.Name
		if a.Outcome == "" {
			a.Outcome = Skip
		}
		attempts = append(attempts, a)
		if a.Outcome == Success {
			return a, true, attempts
		}
	}
	var zero Attempt[T]
	return zero, false, attempts
}
