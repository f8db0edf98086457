package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/sector"
)

// ErrListingUnsupported is returned by backends that can only retrieve
// entries by similarity, never by recency.
var ErrListingUnsupported = errors.New("history: backend does not support listing entries")

// ScoredEntry pairs a history entry with its similarity to a query.
type ScoredEntry struct {
	Entry Entry
	Score float64
}

// Searcher is an optional Store capability for backends with native
// vector search. The matcher prefers it over Recent plus local scoring.
type Searcher interface {
	Search(ctx context.Context, ownerID string, sectorFilter sector.Tag, embedding []float32, topK int) ([]ScoredEntry, error)
}

// ChromemStore persists history in a chromem vector database, one
// collection per owner. Embeddings are computed by the caller and stored
// verbatim, so the collection's embedding function is never invoked.
type ChromemStore struct {
	db *chromem.DB
}

// NewChromemStore opens (or creates) a persistent chromem database at
// path.
func NewChromemStore(path string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("history: open chromem database: %w", err)
	}
	return &ChromemStore{db: db}, nil
}

func ownerCollection(ownerID string) string {
	return "quotes_" + ownerID
}

// precomputedOnly guards against documents arriving without an
// embedding; every entry must carry one.
func precomputedOnly(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("history: entry stored without a precomputed embedding")
}

// Append saves the entry in the owner's collection. Entries without an
// embedding are rejected because chromem can only retrieve by vector.
func (s *ChromemStore) Append(ctx context.Context, entry Entry) error {
	if len(entry.Embedding) == 0 {
		return errors.New("history: chromem backend requires an embedding")
	}
	col, err := s.db.GetOrCreateCollection(ownerCollection(entry.OwnerID), nil, precomputedOnly)
	if err != nil {
		return fmt.Errorf("history: open collection: %w", err)
	}

	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("history: encode items: %w", err)
	}
	doc := chromem.Document{
		ID:        entry.ID,
		Embedding: entry.Embedding,
		Content:   entry.Description,
		Metadata: map[string]string{
			"sector":       string(entry.Sector),
			"title":        entry.Title,
			"total_amount": strconv.FormatFloat(entry.TotalAmount, 'f', 2, 64),
			"created_at":   entry.CreatedAt.Format(time.RFC3339),
			"items":        string(itemsJSON),
		},
	}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("history: add document: %w", err)
	}
	return nil
}

// Recent is unsupported: chromem retrieves by similarity only. Callers
// should use Search instead.
func (s *ChromemStore) Recent(_ context.Context, _ string, _ sector.Tag, _ int) ([]Entry, error) {
	return nil, ErrListingUnsupported
}

// Search runs a vector query against the owner's collection.
func (s *ChromemStore) Search(ctx context.Context, ownerID string, sectorFilter sector.Tag, embedding []float32, topK int) ([]ScoredEntry, error) {
	col := s.db.GetCollection(ownerCollection(ownerID), precomputedOnly)
	if col == nil {
		return nil, nil
	}
	if count := col.Count(); count == 0 {
		return nil, nil
	} else if topK > count {
		topK = count
	}

	var where map[string]string
	if sectorFilter != "" {
		where = map[string]string{"sector": string(sectorFilter)}
	}
	results, err := col.QueryEmbedding(ctx, embedding, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("history: query collection: %w", err)
	}

	scored := make([]ScoredEntry, 0, len(results))
	for _, res := range results {
		scored = append(scored, ScoredEntry{
			Entry: entryFromResult(ownerID, res),
			Score: float64(res.Similarity),
		})
	}
	return scored, nil
}

func entryFromResult(ownerID string, res chromem.Result) Entry {
	entry := Entry{
		ID:          res.ID,
		OwnerID:     ownerID,
		Description: res.Content,
		Embedding:   res.Embedding,
		Sector:      sector.Tag(res.Metadata["sector"]),
		Title:       res.Metadata["title"],
	}
	if amount, err := strconv.ParseFloat(res.Metadata["total_amount"], 64); err == nil {
		entry.TotalAmount = amount
	}
	if ts, err := time.Parse(time.RFC3339, res.Metadata["created_at"]); err == nil {
		entry.CreatedAt = ts
	}
	if raw := res.Metadata["items"]; raw != "" {
		var items []distribute.Item
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			entry.Items = items
		}
	}
	return entry
}

var (
	_ Store    = (*ChromemStore)(nil)
	_ Searcher = (*ChromemStore)(nil)
)
