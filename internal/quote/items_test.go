package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/quoted/internal/sector"
)

func TestSanitizeUserItems(t *testing.T) {
	items := []UserItem{
		{Description: "Desarrollo del sitio", Quantity: 0, UnitPrice: -5},
		{Description: "ab", Quantity: 1},
		{Description: "xd", Quantity: 1},
		{Description: "jaja contenido", Quantity: 2},
		{Description: "  Hosting anual  ", Quantity: 3, UnitPrice: 1200},
	}
	got := sanitizeUserItems(items)
	require.Len(t, got, 2)
	assert.Equal(t, "Desarrollo del sitio", got[0].Description)
	assert.Equal(t, 1, got[0].Quantity)
	assert.Equal(t, 0.0, got[0].UnitPrice)
	assert.Equal(t, "Hosting anual", got[1].Description)
	assert.Equal(t, 3, got[1].Quantity)
}

func TestPriceUserItems(t *testing.T) {
	t.Run("single priceless item absorbs remainder", func(t *testing.T) {
		got := priceUserItems([]UserItem{
			{Description: "Hosting", Quantity: 1, UnitPrice: 5000},
			{Description: "Desarrollo", Quantity: 1},
		}, 50000)
		assert.Equal(t, 5000.0, got[0].Total)
		assert.Equal(t, 45000.0, got[1].UnitPrice)
		assert.Equal(t, 45000.0, got[1].Total)
	})

	t.Run("several priceless items split per quantity unit", func(t *testing.T) {
		got := priceUserItems([]UserItem{
			{Description: "Diseño", Quantity: 1},
			{Description: "Desarrollo", Quantity: 3},
		}, 40000)
		assert.Equal(t, 10000.0, got[0].UnitPrice)
		assert.Equal(t, 10000.0, got[0].Total)
		assert.Equal(t, 10000.0, got[1].UnitPrice)
		assert.Equal(t, 30000.0, got[1].Total)
	})

	t.Run("all priced leaves prices untouched", func(t *testing.T) {
		got := priceUserItems([]UserItem{
			{Description: "Licencia", Quantity: 2, UnitPrice: 750.50},
		}, 99999)
		assert.Equal(t, 750.50, got[0].UnitPrice)
		assert.Equal(t, 1501.0, got[0].Total)
	})

	t.Run("overspent budget floors priceless items at zero", func(t *testing.T) {
		got := priceUserItems([]UserItem{
			{Description: "Equipo", Quantity: 1, UnitPrice: 60000},
			{Description: "Instalación", Quantity: 1},
		}, 50000)
		assert.Equal(t, 0.0, got[1].UnitPrice)
		assert.Equal(t, 0.0, got[1].Total)
	})
}

func TestContextualizeLocal(t *testing.T) {
	registry, err := sector.NewRegistry()
	require.NoError(t, err)
	profile := registry.Profile(sector.Software)

	t.Run("suffixes dominant keyword", func(t *testing.T) {
		got := contextualizeLocal([]string{"Análisis y levantamiento de requerimientos"},
			"Necesito una tienda en línea para mi marca", profile)
		require.Len(t, got, 1)
		assert.Equal(t, "Análisis y levantamiento de requerimientos para tienda en linea", got[0])
	})

	t.Run("no keyword leaves concept untouched", func(t *testing.T) {
		got := contextualizeLocal([]string{"Análisis inicial"}, "algo sin pistas claras", profile)
		assert.Equal(t, []string{"Análisis inicial"}, got)
	})

	t.Run("skips suffix when concept already mentions it", func(t *testing.T) {
		got := contextualizeLocal([]string{"Diseño de tienda en línea"},
			"Necesito una tienda en línea", profile)
		assert.Equal(t, []string{"Diseño de tienda en línea"}, got)
	})
}
