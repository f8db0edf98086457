// Package strategy runs ordered fallback chains and reports which tier won.
//
// Several quoted capabilities (sector classification, item contextualization,
// embeddings, commercial copy) are served by an external provider with a
// deterministic local substitute behind it. Instead of nesting error
// handling at every call site, callers declare an ordered list of named
// strategies and TryInOrder executes them until one succeeds, recording the
// winning tier so audit metadata can expose which fallbacks fired.
package strategy

import (
	"context"
	"errors"
)

// ErrNoStrategies is returned when TryInOrder is called with an empty chain.
var ErrNoStrategies = errors.New("no strategies provided")

// Tier identifies which strategy in a chain produced a result.
type Tier string

// Common tiers used across the pipeline.
const (
	TierExternal Tier = "external"
	TierLocal    Tier = "local"
	TierNone     Tier = ""
)

// Strategy is one named attempt in a fallback chain.
type Strategy[T any] struct {
	// Tier names the strategy for audit metadata.
	Tier Tier

	// Run attempts to produce a result. A returned error moves the chain on
	// to the next strategy.
	Run func(ctx context.Context) (T, error)
}

// TryInOrder executes strategies in order until one succeeds.
//
// It returns the first successful result together with the tier that
// produced it. If every strategy fails, the zero value, TierNone and the
// joined errors are returned. Context cancellation stops the chain early.
func TryInOrder[T any](ctx context.Context, strategies ...Strategy[T]) (T, Tier, error) {
	var zero T
	if len(strategies) == 0 {
		return zero, TierNone, ErrNoStrategies
	}

	var errs []error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, TierNone, err
		}
		result, err := s.Run(ctx)
		if err == nil {
			return result, s.Tier, nil
		}
		errs = append(errs, err)
	}

	return zero, TierNone, errors.Join(errs...)
}
