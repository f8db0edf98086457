package quote

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/quoted/internal/classify"
	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/estimate"
	"github.com/fyrsmithlabs/quoted/internal/history"
	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/signals"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
)

func newTestGenerator(t *testing.T, store history.Store) *Generator {
	t.Helper()
	registry, err := sector.NewRegistry()
	require.NoError(t, err)

	client := llm.Disabled()
	var matcher *history.Matcher
	if store != nil {
		matcher = history.NewMatcher(history.DefaultConfig(), store, history.NewChainVectorizer(nil, nil), nil)
	}
	return NewGenerator(DefaultConfig(), registry,
		classify.NewClassifier(registry, client, nil),
		signals.NewExtractor(registry),
		estimate.NewEstimator(registry, estimate.Config{}),
		distribute.NewDistributor(registry, distribute.Config{BaseMargin: 0.25, OverheadPercent: 0.10}),
		matcher, client, nil)
}

func TestGenerate_RejectsBlacklistedInput(t *testing.T) {
	g := newTestGenerator(t, nil)
	_, err := g.Generate(context.Background(), Request{Description: "xd jaja mi proyecto"})
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, ReasonBlacklisted, rejected.Reason)
}

func TestGenerate_RejectsUnclassifiableInput(t *testing.T) {
	g := newTestGenerator(t, nil)
	_, err := g.Generate(context.Background(), Request{
		Description: "quiero algo bonito para regalar a mi familia pronto",
	})
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, ReasonNoSector, rejected.Reason)
}

func TestGenerate_FullLocalPath(t *testing.T) {
	g := newTestGenerator(t, nil)
	quote, err := g.Generate(context.Background(), Request{
		Description: "Necesito una página web con tienda en línea para mi negocio",
		ClientName:  "Comercial del Valle",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, sector.Software, quote.Sector)
	assert.NotEmpty(t, quote.Title)
	assert.NotEmpty(t, quote.Terms)
	assert.NotEmpty(t, quote.Timeline)
	assert.NotEmpty(t, quote.Summary)
	require.NotEmpty(t, quote.Items)
	for _, item := range quote.Items {
		assert.NotEmpty(t, item.Description)
		assert.GreaterOrEqual(t, item.Quantity, 1)
		assert.GreaterOrEqual(t, item.UnitPrice, 0.0)
	}

	// With the text capability disabled, every fallback-capable stage
	// must report the local tier.
	assert.Equal(t, strategy.TierLocal, quote.Audit.SectorTier)
	assert.Equal(t, strategy.TierLocal, quote.Audit.ItemsTier)
	assert.Equal(t, strategy.TierLocal, quote.Audit.CopyTier)
	assert.False(t, quote.Audit.Recovered)

	// Totals are internally consistent.
	var subtotal float64
	for _, item := range quote.Items {
		subtotal += item.Total
	}
	assert.InDelta(t, subtotal, quote.Subtotal, 0.01)
	assert.InDelta(t, quote.Subtotal*quote.TaxPercent/100, quote.Tax, 0.01)
	assert.InDelta(t, quote.Subtotal+quote.Tax, quote.Total, 0.01)
	assert.Equal(t, 16.0, quote.TaxPercent)
	assert.True(t, quote.ValidUntil.After(quote.CreatedAt))

	// The estimate stayed inside its validated band.
	band := quote.Audit.Estimate.Range.Band
	assert.GreaterOrEqual(t, quote.Audit.Estimate.TargetTotal, band.Min)
	assert.LessOrEqual(t, quote.Audit.Estimate.TargetTotal, band.Max)
}

func TestGenerate_TrustsSectorHint(t *testing.T) {
	g := newTestGenerator(t, nil)
	quote, err := g.Generate(context.Background(), Request{
		Description: "Necesito apoyo con un proyecto importante para mi empresa",
		SectorHint:  "events",
	})
	require.NoError(t, err)
	assert.Equal(t, sector.Events, quote.Sector)
	assert.Empty(t, quote.Audit.SectorTier)
}

func TestGenerate_UserItemsPath(t *testing.T) {
	g := newTestGenerator(t, nil)
	quote, err := g.Generate(context.Background(), Request{
		Description: "Desarrollo de plataforma web para gestión de inventario",
		Items: []UserItem{
			{Description: "Licencias de software", Quantity: 2, UnitPrice: 3000},
			{Description: "Desarrollo a la medida", Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 2)
	assert.Equal(t, 3000.0, quote.Items[0].UnitPrice)
	assert.Equal(t, 6000.0, quote.Items[0].Total)
	assert.Greater(t, quote.Items[1].UnitPrice, 0.0)
	// User-item requests never run the weighted distributor.
	assert.Empty(t, quote.Audit.Weights)
	assert.Empty(t, quote.Audit.ItemsTier)
}

func TestGenerate_BlendsWithHistory(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	g := newTestGenerator(t, store)

	// Seed the owner's history with a few similar quotes.
	for i := 0; i < 3; i++ {
		_, err := g.Generate(ctx, Request{
			Description: "Desarrollo de tienda en línea con catálogo de productos",
			OwnerID:     "owner-1",
		})
		require.NoError(t, err)
	}

	quote, err := g.Generate(ctx, Request{
		Description: "Necesito una tienda en línea con catálogo y carrito",
		OwnerID:     "owner-1",
	})
	require.NoError(t, err)
	assert.True(t, quote.Audit.Blended)
	assert.True(t, quote.Audit.History.HasAverage)
	assert.Greater(t, quote.Audit.BlendedFrom, 0.0)
}

func TestGenerate_RecoversFromPipelineFault(t *testing.T) {
	g := newTestGenerator(t, panickyStore{})
	quote, err := g.Generate(context.Background(), Request{
		Description: "Desarrollo de sitio web corporativo para la empresa",
		OwnerID:     "owner-1",
	})
	require.NoError(t, err)
	assert.True(t, quote.Audit.Recovered)
	assert.NotEmpty(t, quote.Items)
	assert.Greater(t, quote.Total, 0.0)
}

func TestGenerate_SurvivesRecordingFault(t *testing.T) {
	g := newTestGenerator(t, appendPanickyStore{})
	var quote *Quote
	var err error
	require.NotPanics(t, func() {
		quote, err = g.Generate(context.Background(), Request{
			Description: "Desarrollo de sitio web corporativo para la empresa",
			OwnerID:     "owner-1",
		})
	})
	require.NoError(t, err)
	// The pipeline itself succeeded; only the recording write faulted.
	assert.False(t, quote.Audit.Recovered)
	assert.Greater(t, quote.Total, 0.0)
}

func TestGenerate_TotalTracksEstimateTarget(t *testing.T) {
	g := newTestGenerator(t, nil)
	quote, err := g.Generate(context.Background(), Request{
		Description: "Necesito una página web con tienda en línea para mi negocio",
	})
	require.NoError(t, err)

	// Without history the target is the estimate itself. The distributor
	// either reproduces it within one unit or reports the aesthetic shift
	// in the audit.
	target := quote.Audit.Estimate.TargetTotal
	if quote.Audit.AestheticAdjusted {
		assert.InDelta(t, target, quote.Total, 12)
		cents := int64(math.Round(quote.Total * 100))
		assert.NotZero(t, cents%5000, "adjusted total no longer ends in 00/50")
	} else {
		assert.InDelta(t, target, quote.Total, 1.0)
	}
}

func TestGenerate_ArchitectureModeWeights(t *testing.T) {
	g := newTestGenerator(t, nil)
	quote, err := g.Generate(context.Background(), Request{
		Description: "Necesito un anteproyecto de vivienda de 500 m2",
	})
	require.NoError(t, err)
	assert.Equal(t, sector.Construction, quote.Sector)
	assert.Equal(t, sector.ScaleEnterprise, quote.Audit.Estimate.Scale)

	// Positional weights decrease monotonically in architecture mode.
	weights := quote.Audit.Weights
	require.NotEmpty(t, weights)
	for i := 1; i < len(weights); i++ {
		assert.LessOrEqual(t, weights[i], weights[i-1])
	}
}

// appendPanickyStore faults on writes; recording must absorb it.
type appendPanickyStore struct{}

func (appendPanickyStore) Append(context.Context, history.Entry) error {
	panic("history backend corrupted")
}

func (appendPanickyStore) Recent(context.Context, string, sector.Tag, int) ([]history.Entry, error) {
	return nil, nil
}

// panickyStore faults on reads to exercise the recovery path.
type panickyStore struct{}

func (panickyStore) Append(context.Context, history.Entry) error { return nil }

func (panickyStore) Recent(context.Context, string, sector.Tag, int) ([]history.Entry, error) {
	panic("history backend corrupted")
}
