package history

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/sector"
)

// Config tunes similarity matching and blending.
type Config struct {
	// SimilarityCutoff discards matches scoring at or below this value.
	SimilarityCutoff float64 `koanf:"similarity_cutoff"`
	// TopK caps how many similar quotes feed the suggestion.
	TopK int `koanf:"top_k"`
	// Window caps how many recent entries are scored locally.
	Window int `koanf:"window"`
	// BlendRatio is the weight of the computed estimate when blending
	// with the historical suggestion. The remainder goes to history.
	BlendRatio float64 `koanf:"blend_ratio"`
}

// DefaultConfig returns the matching defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityCutoff: 0.15,
		TopK:             3,
		Window:           30,
		BlendRatio:       0.6,
	}
}

// Matcher records accepted quotes and suggests prices from similar past
// work. Both operations are best-effort: recording failures are logged
// and swallowed, and Suggest returns an empty suggestion rather than an
// error, so the pricing pipeline never stalls on history problems.
type Matcher struct {
	cfg        Config
	store      Store
	vectorizer Vectorizer
	logger     *logging.Logger
}

// NewMatcher wires a matcher over the given store and vectorizer.
func NewMatcher(cfg Config, store Store, vectorizer Vectorizer, logger *logging.Logger) *Matcher {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.BlendRatio <= 0 || cfg.BlendRatio > 1 {
		cfg.BlendRatio = DefaultConfig().BlendRatio
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{cfg: cfg, store: store, vectorizer: vectorizer, logger: logger}
}

// Record saves a generated quote into history. Neither errors nor
// backend panics propagate; a quote that fails to record is simply
// absent from future suggestions.
func (m *Matcher) Record(ctx context.Context, ownerID string, tag sector.Tag, title, description string, total float64, items []distribute.Item) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn(ctx, "history record: backend fault", zap.Any("fault", r))
		}
	}()

	entry := Entry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Sector:      tag,
		Title:       title,
		Description: description,
		TotalAmount: total,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}
	vec, _, err := m.vectorizer.Vectorize(ctx, description)
	if err != nil {
		m.logger.Warn(ctx, "history record: vectorize failed", zap.Error(err))
	} else {
		entry.Embedding = vec
	}
	if err := m.store.Append(ctx, entry); err != nil {
		m.logger.Warn(ctx, "history record: append failed", zap.Error(err))
	}
}

// Suggest returns a price suggestion from the owner's most similar past
// quotes. It never fails: any error along the way yields an empty
// suggestion.
func (m *Matcher) Suggest(ctx context.Context, ownerID string, tag sector.Tag, description string) PriceSuggestion {
	vec, _, err := m.vectorizer.Vectorize(ctx, description)
	if err != nil {
		m.logger.Warn(ctx, "history suggest: vectorize failed", zap.Error(err))
		return PriceSuggestion{}
	}

	scored, err := m.topMatches(ctx, ownerID, tag, vec)
	if err != nil {
		m.logger.Warn(ctx, "history suggest: search failed", zap.Error(err))
		return PriceSuggestion{}
	}
	if len(scored) == 0 {
		return PriceSuggestion{}
	}

	suggestion := PriceSuggestion{HasAverage: true}
	suggestion.Low = scored[0].Entry.TotalAmount
	suggestion.High = scored[0].Entry.TotalAmount
	var sum float64
	for _, s := range scored {
		amount := s.Entry.TotalAmount
		sum += amount
		if amount < suggestion.Low {
			suggestion.Low = amount
		}
		if amount > suggestion.High {
			suggestion.High = amount
		}
		suggestion.SimilarQuotes = append(suggestion.SimilarQuotes, SimilarQuote{
			ID:    s.Entry.ID,
			Score: s.Score,
		})
	}
	suggestion.SuggestedAverage = math.Round(sum / float64(len(scored)))
	return suggestion
}

// topMatches scores candidates against the query vector, preferring the
// backend's native search when available.
func (m *Matcher) topMatches(ctx context.Context, ownerID string, tag sector.Tag, vec []float32) ([]ScoredEntry, error) {
	var scored []ScoredEntry
	if searcher, ok := m.store.(Searcher); ok {
		results, err := searcher.Search(ctx, ownerID, tag, vec, m.cfg.TopK)
		if err != nil {
			return nil, err
		}
		scored = results
	} else {
		recent, err := m.store.Recent(ctx, ownerID, tag, m.cfg.Window)
		if err != nil {
			return nil, err
		}
		for _, e := range recent {
			scored = append(scored, ScoredEntry{Entry: e, Score: Cosine(vec, e.Embedding)})
		}
	}

	kept := scored[:0]
	for _, s := range scored {
		if s.Score > m.cfg.SimilarityCutoff {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > m.cfg.TopK {
		kept = kept[:m.cfg.TopK]
	}
	return kept, nil
}

// Blend mixes the computed estimate with the historical suggestion
// according to the configured ratio, rounding to whole pesos. Without an
// average, the computed value passes through unchanged.
func (m *Matcher) Blend(computed float64, suggestion PriceSuggestion) float64 {
	if !suggestion.HasAverage {
		return computed
	}
	return math.Round(m.cfg.BlendRatio*computed + (1-m.cfg.BlendRatio)*suggestion.SuggestedAverage)
}
