package history

import (
	"context"

	"github.com/fyrsmithlabs/quoted/internal/embeddings"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
)

// Vectorizer turns quote text into an embedding for similarity search.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, strategy.Tier, error)
}

// ChainVectorizer tries the external embedding service first and falls
// back to the local bag-of-words vector. Both tiers produce L2-normalized
// vectors so cosine scores are comparable regardless of which tier
// produced each side.
type ChainVectorizer struct {
	embedder embeddings.Embedder
	logger   *logging.Logger
}

// NewChainVectorizer builds the embedding chain. A nil embedder means
// only the local tier runs.
func NewChainVectorizer(embedder embeddings.Embedder, logger *logging.Logger) *ChainVectorizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ChainVectorizer{embedder: embedder, logger: logger}
}

// Vectorize returns an embedding and the tier that produced it. The local
// tier cannot fail, so the only errors out of here are context
// cancellations.
func (v *ChainVectorizer) Vectorize(ctx context.Context, text string) ([]float32, strategy.Tier, error) {
	strategies := make([]strategy.Strategy[[]float32], 0, 2)
	if v.embedder != nil {
		strategies = append(strategies, strategy.Strategy[[]float32]{
			Tier: strategy.TierExternal,
			Run: func(ctx context.Context) ([]float32, error) {
				vec, err := v.embedder.EmbedQuery(ctx, text)
				if err != nil {
					return nil, err
				}
				return L2Normalize(vec), nil
			},
		})
	}
	strategies = append(strategies, strategy.Strategy[[]float32]{
		Tier: strategy.TierLocal,
		Run: func(ctx context.Context) ([]float32, error) {
			return BagOfWords(text), nil
		},
	})

	vec, tier, err := strategy.TryInOrder(ctx, strategies...)
	if err != nil {
		return nil, strategy.TierNone, err
	}
	if tier == strategy.TierLocal && v.embedder != nil {
		v.logger.Debug(ctx, "embedding service unavailable, using local vector")
	}
	return vec, tier, nil
}

var _ Vectorizer = (*ChainVectorizer)(nil)
