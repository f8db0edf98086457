package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

const (
	minItemChars     = 3
	itemsTemperature = 0.4
	itemsMaxTokens   = 600
)

const itemsSystemPrompt = "Eres un asistente de cotizaciones. Recibirás una lista de conceptos " +
	"genéricos y la descripción de un proyecto. Devuelve únicamente un arreglo JSON de cadenas, " +
	"con exactamente el mismo número de elementos, adaptando cada concepto al proyecto descrito. " +
	"Sin explicaciones, sin campos adicionales."

// sanitizeUserItems drops unusable caller items and floors quantities.
// The returned slice may be empty, in which case the generated-items
// path takes over.
func sanitizeUserItems(items []UserItem) []UserItem {
	kept := make([]UserItem, 0, len(items))
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if len([]rune(desc)) < minItemChars {
			continue
		}
		if isBlacklistedItem(desc) {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.UnitPrice < 0 {
			item.UnitPrice = 0
		}
		item.Description = desc
		kept = append(kept, item)
	}
	return kept
}

func isBlacklistedItem(desc string) bool {
	words := wordPattern.FindAllString(textnorm.Normalize(desc), -1)
	for _, w := range words {
		for _, token := range blacklist {
			if w == token {
				return true
			}
		}
	}
	return false
}

// priceUserItems turns sanitized user items into priced line items.
// Items that already carry a unit price keep it; the target total's
// remaining budget is split across the priceless ones. A single
// priceless item absorbs the whole remainder; several split it evenly
// per quantity unit.
func priceUserItems(items []UserItem, targetTotal float64) []distribute.Item {
	priced := make([]distribute.Item, len(items))
	var spent float64
	var pricelessUnits int
	for i, item := range items {
		priced[i] = distribute.Item{Description: item.Description, Quantity: item.Quantity}
		if item.UnitPrice > 0 {
			priced[i].UnitPrice = item.UnitPrice
			priced[i].Total = round2(item.UnitPrice * float64(item.Quantity))
			spent += priced[i].Total
		} else {
			pricelessUnits += item.Quantity
		}
	}
	if pricelessUnits == 0 {
		return priced
	}

	remaining := targetTotal - spent
	if remaining < 0 {
		remaining = 0
	}
	perUnit := round2(remaining / float64(pricelessUnits))
	for i := range priced {
		if priced[i].UnitPrice > 0 {
			continue
		}
		priced[i].UnitPrice = perUnit
		priced[i].Total = round2(perUnit * float64(priced[i].Quantity))
	}
	return priced
}

// generateItems produces line-item descriptions from the sector's
// concept templates, contextualized to the project. The external tier
// asks the text model to adapt every concept at once; the local tier
// rewrites each concept with the project's dominant keyword.
func (g *Generator) generateItems(ctx context.Context, profile *sector.Profile, description string) ([]distribute.ItemSpec, strategy.Tier) {
	templates := profile.Templates
	if len(templates) == 0 {
		templates = []string{"Análisis y planeación", "Ejecución del proyecto", "Entrega y cierre"}
	}

	descriptions, tier, err := strategy.TryInOrder(ctx,
		strategy.Strategy[[]string]{
			Tier: strategy.TierExternal,
			Run: func(ctx context.Context) ([]string, error) {
				return g.contextualizeExternal(ctx, templates, description)
			},
		},
		strategy.Strategy[[]string]{
			Tier: strategy.TierLocal,
			Run: func(_ context.Context) ([]string, error) {
				return contextualizeLocal(templates, description, profile), nil
			},
		},
	)
	if err != nil {
		// Context cancellation; the raw templates still make a quote.
		descriptions, tier = templates, strategy.TierLocal
	}

	specs := make([]distribute.ItemSpec, len(descriptions))
	for i, d := range descriptions {
		specs[i] = distribute.ItemSpec{Description: d, Quantity: 1}
	}
	return specs, tier
}

func (g *Generator) contextualizeExternal(ctx context.Context, templates []string, description string) ([]string, error) {
	concepts, err := json.Marshal(templates)
	if err != nil {
		return nil, err
	}
	userPrompt := fmt.Sprintf("Proyecto: %s\nConceptos: %s", description, concepts)
	raw, err := g.llm.Complete(ctx, itemsSystemPrompt, userPrompt, itemsTemperature, itemsMaxTokens)
	if err != nil {
		return nil, err
	}
	result := llm.ParseStringArray(raw, len(templates))
	if !result.OK {
		return nil, fmt.Errorf("quote: malformed item list: %.80s", result.Raw)
	}
	return result.Items, nil
}

// contextualizeLocal suffixes each concept with the strongest sector
// keyword found in the description so generated items reference the
// actual project instead of reading like a bare template.
func contextualizeLocal(templates []string, description string, profile *sector.Profile) []string {
	subject := dominantKeyword(profile, textnorm.Normalize(description))
	out := make([]string, len(templates))
	for i, concept := range templates {
		if subject == "" || strings.Contains(textnorm.Normalize(concept), subject) {
			out[i] = concept
		} else {
			out[i] = concept + " para " + subject
		}
	}
	return out
}

// round2 rounds currency values to 2 decimals via decimal arithmetic.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// dominantKeyword returns the longest profile keyword present in the
// normalized text, ties broken lexicographically.
func dominantKeyword(profile *sector.Profile, text string) string {
	var best string
	for _, kw := range profile.Keywords {
		if !strings.Contains(text, kw) {
			continue
		}
		if len(kw) > len(best) || (len(kw) == len(best) && kw < best) {
			best = kw
		}
	}
	return best
}
