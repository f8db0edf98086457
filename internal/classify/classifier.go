// Package classify maps free-text project descriptions to sector tags.
//
// Classification runs a two-tier strategy: an external text model asked
// for a single label, then a local keyword scan over the sector registry.
// The local tier cannot fail, so Classify always lands on a tag.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

const (
	classifyTemperature = 0.0
	classifyMaxTokens   = 16
)

const systemPrompt = "Eres un clasificador de proyectos. Responde únicamente con una de estas etiquetas, sin explicación: %s."

// Classifier resolves a sector tag for a description.
type Classifier struct {
	registry *sector.Registry
	client   llm.Client
	logger   *logging.Logger
}

// NewClassifier builds a classifier over the sector registry. client may
// be a disabled client, in which case only the keyword tier runs.
func NewClassifier(registry *sector.Registry, client llm.Client, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Classifier{registry: registry, client: client, logger: logger}
}

// Classify returns the sector tag for the description and the tier that
// produced it. An external label outside the known set degrades to Other
// rather than failing.
func (c *Classifier) Classify(ctx context.Context, description string) (sector.Tag, strategy.Tier) {
	tag, tier, err := strategy.TryInOrder(ctx,
		strategy.Strategy[sector.Tag]{
			Tier: strategy.TierExternal,
			Run: func(ctx context.Context) (sector.Tag, error) {
				return c.classifyExternal(ctx, description)
			},
		},
		strategy.Strategy[sector.Tag]{
			Tier: strategy.TierLocal,
			Run: func(_ context.Context) (sector.Tag, error) {
				return c.classifyKeywords(description), nil
			},
		},
	)
	if err != nil {
		// Only context cancellation gets here; the caller treats the
		// request as generic.
		return sector.Other, strategy.TierNone
	}
	if tier == strategy.TierLocal {
		c.logger.Debug(ctx, "sector classified by keyword scan")
	}
	return tag, tier
}

// classifyExternal asks the text model for one label from the closed set.
func (c *Classifier) classifyExternal(ctx context.Context, description string) (sector.Tag, error) {
	labels := make([]string, 0, len(sector.Tags()))
	for _, t := range sector.Tags() {
		labels = append(labels, string(t))
	}
	raw, err := c.client.Complete(ctx,
		fmt.Sprintf(systemPrompt, strings.Join(labels, ", ")),
		description, classifyTemperature, classifyMaxTokens)
	if err != nil {
		return "", err
	}
	label, ok := llm.ParseLabel(raw)
	if !ok {
		return "", fmt.Errorf("classify: unparseable label %q", raw)
	}
	tag, known := sector.ParseTag(label)
	if !known {
		return sector.Other, nil
	}
	return tag, nil
}

// classifyKeywords scans sectors in their declared order; the first one
// with a trigger keyword in the text wins.
func (c *Classifier) classifyKeywords(description string) sector.Tag {
	text := textnorm.Normalize(description)
	for _, tag := range sector.Tags() {
		if tag == sector.Other {
			continue
		}
		if c.registry.Profile(tag).MatchesKeyword(text) {
			return tag
		}
	}
	return sector.Other
}

// Plausible reports whether a description that classified as Other still
// reads like a real commissionable project.
func (c *Classifier) Plausible(description string) bool {
	return c.registry.Profile(sector.Other).MatchesPlausibility(textnorm.Normalize(description))
}
