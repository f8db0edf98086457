package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/signals"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
)

const (
	copyTemperature = 0.6
	copyMaxTokens   = 500
)

const copySystemPrompt = "Eres un redactor comercial. Recibirás la descripción de un proyecto y su sector. " +
	"Devuelve únicamente un objeto JSON con los campos title, summary, terms y timeline, en español, " +
	"breves y profesionales. Sin texto fuera del JSON."

// quoteCopy is the commercial text of a quote. Every field has a local
// template fallback, applied per field so a partially useful external
// response still contributes.
type quoteCopy struct {
	Title    string
	Summary  string
	Terms    string
	Timeline string
}

var sectorTitles = map[sector.Tag]string{
	sector.Software:      "Propuesta de desarrollo de software",
	sector.Marketing:     "Propuesta de servicios de marketing",
	sector.Construction:  "Presupuesto de obra",
	sector.Events:        "Propuesta de producción de evento",
	sector.Consulting:    "Propuesta de consultoría",
	sector.Commerce:      "Propuesta comercial",
	sector.Manufacturing: "Cotización de manufactura",
	sector.Training:      "Propuesta de capacitación",
	sector.Other:         "Propuesta de servicios profesionales",
}

const localTerms = "Precios en MXN más IVA cuando aplique. Anticipo del 50% para iniciar; " +
	"el resto contra entrega. Vigencia de 30 días naturales a partir de la fecha de emisión. " +
	"Cualquier trabajo adicional se cotiza por separado."

// buildCopy assembles the commercial text, trying the text model once
// and filling every missing field from local templates.
func (g *Generator) buildCopy(ctx context.Context, req Request, tag sector.Tag, pctx signals.ProjectContext) (quoteCopy, strategy.Tier) {
	local := localCopy(req, tag, pctx)

	parsed, tier, err := strategy.TryInOrder(ctx,
		strategy.Strategy[llm.CopyFields]{
			Tier: strategy.TierExternal,
			Run: func(ctx context.Context) (llm.CopyFields, error) {
				return g.copyExternal(ctx, req.Description, tag)
			},
		},
		strategy.Strategy[llm.CopyFields]{
			Tier: strategy.TierLocal,
			Run: func(_ context.Context) (llm.CopyFields, error) {
				return llm.CopyFields{}, nil
			},
		},
	)
	if err != nil || tier != strategy.TierExternal {
		return local, strategy.TierLocal
	}

	merged := local
	if parsed.Title != "" {
		merged.Title = parsed.Title
	}
	if parsed.Summary != "" {
		merged.Summary = parsed.Summary
	}
	if parsed.Terms != "" {
		merged.Terms = parsed.Terms
	}
	if parsed.Timeline != "" {
		merged.Timeline = parsed.Timeline
	}
	return merged, strategy.TierExternal
}

func (g *Generator) copyExternal(ctx context.Context, description string, tag sector.Tag) (llm.CopyFields, error) {
	userPrompt := fmt.Sprintf("Sector: %s\nProyecto: %s", tag, description)
	raw, err := g.llm.Complete(ctx, copySystemPrompt, userPrompt, copyTemperature, copyMaxTokens)
	if err != nil {
		return llm.CopyFields{}, err
	}
	result := llm.ParseCopy(raw)
	if !result.OK {
		return llm.CopyFields{}, fmt.Errorf("quote: malformed copy response: %.80s", result.Raw)
	}
	return result.Fields, nil
}

// localCopy renders the deterministic templates.
func localCopy(req Request, tag sector.Tag, pctx signals.ProjectContext) quoteCopy {
	title := sectorTitles[tag]
	if title == "" {
		title = sectorTitles[sector.Other]
	}
	if req.ClientName != "" {
		title = title + " — " + req.ClientName
	}

	summary := fmt.Sprintf("Cotización elaborada a partir de la solicitud: %s. "+
		"Incluye los conceptos desglosados en la tabla de partidas, con precios "+
		"calculados según el alcance descrito.", shorten(req.Description, 160))

	return quoteCopy{
		Title:    title,
		Summary:  summary,
		Terms:    localTerms,
		Timeline: localTimeline(pctx),
	}
}

// localTimeline prefers the requester's own horizon when one was
// detected, otherwise gives the urgency-aware generic estimate.
func localTimeline(pctx signals.ProjectContext) string {
	switch {
	case pctx.TimelineWeeks > 0:
		return fmt.Sprintf("Entrega estimada en %d semanas a partir de la confirmación.", pctx.TimelineWeeks)
	case pctx.UrgencyMultiplier > 1:
		return "Entrega prioritaria; el plan de trabajo detallado se confirma al inicio del proyecto."
	default:
		return "Entrega estimada entre 4 y 8 semanas, sujeta al plan de trabajo acordado."
	}
}

func shorten(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
