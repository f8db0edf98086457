package quote

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/quoted/internal/classify"
	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/estimate"
	"github.com/fyrsmithlabs/quoted/internal/history"
	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/signals"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

// Config tunes the pipeline surface.
type Config struct {
	// TaxPercent is the default tax rate when the request omits one.
	TaxPercent float64 `koanf:"tax_percent"`

	// ValidityDays is the quote validity window.
	ValidityDays int `koanf:"validity_days"`
}

// DefaultConfig returns the pipeline defaults (Mexican IVA, 30-day
// validity).
func DefaultConfig() Config {
	return Config{TaxPercent: 16, ValidityDays: 30}
}

// qualityOffsets maps quality levels to margin offsets.
var qualityOffsets = map[QualityLevel]float64{
	QualityEconomy:  -0.05,
	QualityStandard: 0,
	QualityPremium:  0.08,
}

// Generator runs the full quote pipeline.
type Generator struct {
	cfg         Config
	registry    *sector.Registry
	classifier  *classify.Classifier
	extractor   *signals.Extractor
	estimator   *estimate.Estimator
	distributor *distribute.Distributor
	matcher     *history.Matcher
	llm         llm.Client
	logger      *logging.Logger
}

// NewGenerator wires the pipeline. matcher may be nil when history is
// not configured; client may be a disabled client.
func NewGenerator(cfg Config, registry *sector.Registry, classifier *classify.Classifier,
	extractor *signals.Extractor, estimator *estimate.Estimator, distributor *distribute.Distributor,
	matcher *history.Matcher, client llm.Client, logger *logging.Logger) *Generator {
	if cfg.TaxPercent <= 0 {
		cfg.TaxPercent = DefaultConfig().TaxPercent
	}
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = DefaultConfig().ValidityDays
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		cfg:         cfg,
		registry:    registry,
		classifier:  classifier,
		extractor:   extractor,
		estimator:   estimator,
		distributor: distributor,
		matcher:     matcher,
		llm:         client,
		logger:      logger,
	}
}

// Generate runs the pipeline for one request. The only error it returns
// is *RejectedError; every infrastructure failure past validation is
// absorbed by a fallback tier or, as a last resort, by re-entering the
// fully local path.
func (g *Generator) Generate(ctx context.Context, req Request) (*Quote, error) {
	if rejected := validate(req.Description); rejected != nil {
		RejectedTotal.WithLabelValues(rejected.Reason).Inc()
		g.logger.Info(ctx, "quote rejected",
			zap.String("reason", rejected.Reason))
		return nil, rejected
	}

	tag, sectorTier, rejected := g.resolveSector(ctx, req)
	if rejected != nil {
		RejectedTotal.WithLabelValues(rejected.Reason).Inc()
		g.logger.Info(ctx, "quote rejected",
			zap.String("reason", rejected.Reason))
		return nil, rejected
	}
	if sectorTier != "" {
		FallbackTotal.WithLabelValues("sector", string(sectorTier)).Inc()
	}

	pctx := g.extractor.Extract(req.Description, req.PriceRange, req.Location, tag)

	quote, recovered := g.runRecovering(ctx, req, tag, pctx)
	quote.Audit.SectorTier = sectorTier
	quote.Audit.Recovered = recovered
	if recovered {
		RecoveredTotal.Inc()
	}

	GeneratedTotal.WithLabelValues(string(tag)).Inc()
	FallbackTotal.WithLabelValues("copy", string(quote.Audit.CopyTier)).Inc()
	if quote.Audit.ItemsTier != "" {
		FallbackTotal.WithLabelValues("items", string(quote.Audit.ItemsTier)).Inc()
	}

	if g.matcher != nil && req.OwnerID != "" {
		g.matcher.Record(ctx, req.OwnerID, tag, quote.Title, req.Description, quote.Total, quote.Items)
	}
	g.logger.Info(ctx, "quote generated",
		zap.String("quote_id", quote.ID),
		zap.String("sector", string(tag)),
		zap.Float64("total", quote.Total))
	return quote, nil
}

// resolveSector trusts a caller-supplied sector; otherwise classifies.
// The returned tier is empty for caller-supplied sectors.
func (g *Generator) resolveSector(ctx context.Context, req Request) (sector.Tag, strategy.Tier, *RejectedError) {
	if req.SectorHint != "" {
		if tag, ok := sector.ParseTag(req.SectorHint); ok {
			return tag, "", nil
		}
	}
	tag, tier := g.classifier.Classify(ctx, req.Description)
	if tag == sector.Other && !g.classifier.Plausible(req.Description) {
		return "", "", &RejectedError{
			Reason:  ReasonNoSector,
			Message: "no se identifica un giro profesional en la descripción; indica el tipo de proyecto",
		}
	}
	return tag, tier, nil
}

// runRecovering executes the pricing pipeline and, if anything past
// sector resolution panics, re-enters it on the fully local path. The
// local path only touches deterministic code, so a second fault cannot
// occur in practice; if it somehow does, the panic propagates.
func (g *Generator) runRecovering(ctx context.Context, req Request, tag sector.Tag, pctx signals.ProjectContext) (quote *Quote, recovered bool) {
	quote, fault := g.tryRun(ctx, req, tag, pctx, false)
	if fault == nil {
		return quote, false
	}
	g.logger.Error(ctx, "pipeline fault, re-entering local path",
		zap.Any("fault", fault))
	return g.run(ctx, req, tag, pctx, true), true
}

func (g *Generator) tryRun(ctx context.Context, req Request, tag sector.Tag, pctx signals.ProjectContext, localOnly bool) (quote *Quote, fault any) {
	defer func() {
		if r := recover(); r != nil {
			quote, fault = nil, r
		}
	}()
	return g.run(ctx, req, tag, pctx, localOnly), nil
}

// run is the linear pipeline: estimate, blend, items, distribute,
// package. localOnly forces every capability chain onto its local tier.
func (g *Generator) run(ctx context.Context, req Request, tag sector.Tag, pctx signals.ProjectContext, localOnly bool) *Quote {
	gen := g
	if localOnly {
		clone := *g
		clone.llm = llm.Disabled()
		clone.matcher = nil
		gen = &clone
	}

	est := gen.estimator.Estimate(estimate.Input{
		Sector:        tag,
		Context:       pctx,
		PriceRange:    req.PriceRange,
		ClientProfile: req.ClientProfile,
		ProjectType:   req.ProjectType,
		Region:        req.Region,
	})

	audit := Audit{Estimate: est, FluctuationWarning: pctx.FluctuationWarning}
	target := est.TargetTotal
	if gen.matcher != nil && req.OwnerID != "" {
		suggestion := gen.matcher.Suggest(ctx, req.OwnerID, tag, req.Description)
		if suggestion.HasAverage {
			audit.Blended = true
			audit.BlendedFrom = target
			audit.History = suggestion
			target = gen.matcher.Blend(target, suggestion)
		}
	}

	taxPercent := req.TaxPercent
	if taxPercent <= 0 {
		taxPercent = gen.cfg.TaxPercent
	}

	var items []distribute.Item
	userItems := sanitizeUserItems(req.Items)
	if len(userItems) > 0 {
		items = priceUserItems(userItems, target)
	} else {
		profile := gen.registry.Profile(tag)
		specs, itemsTier := gen.generateItems(ctx, profile, req.Description)
		dist := gen.distributor.Distribute(distribute.Input{
			Items:            specs,
			TargetTotal:      target,
			Sector:           tag,
			TaxPercent:       taxPercent,
			MarginOffset:     qualityOffsets[req.Quality],
			ArchitectureMode: architectureMode(tag, req.Description),
		})
		items = dist.Items
		audit.ItemsTier = itemsTier
		audit.Weights = dist.Weights
		audit.AestheticAdjusted = dist.AestheticAdjusted
	}

	copyText, copyTier := gen.buildCopy(ctx, req, tag, pctx)
	audit.CopyTier = copyTier

	var subtotal float64
	for _, item := range items {
		subtotal += item.Total
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * taxPercent / 100)

	now := time.Now().UTC()
	return &Quote{
		ID:         uuid.NewString(),
		Title:      copyText.Title,
		Client:     req.ClientName,
		Sector:     tag,
		Items:      items,
		Subtotal:   subtotal,
		TaxPercent: taxPercent,
		Tax:        tax,
		Total:      round2(subtotal + tax),
		ValidUntil: now.AddDate(0, 0, gen.cfg.ValidityDays),
		Terms:      copyText.Terms,
		Timeline:   copyText.Timeline,
		Summary:    copyText.Summary,
		CreatedAt:  now,
		Audit:      audit,
	}
}

// architectureMode switches the distributor to positional weights for
// architecture-practice work, where deliverables follow a fixed phase
// order rather than keyword-weighted concepts.
func architectureMode(tag sector.Tag, description string) bool {
	if tag != sector.Construction {
		return false
	}
	text := textnorm.Normalize(description)
	return strings.Contains(text, "anteproyecto") || strings.Contains(text, "arquitectonico") ||
		strings.Contains(text, "despacho de arquitectura")
}
