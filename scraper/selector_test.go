package scraper

import (
	"testing"

	"dealpulse/config"
	"dealpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector() *Selector {
	return NewSelector(config.AllOutOfStockMarkers(), nil)
}

func textCandidate(value float64) models.PriceCandidate {
	return models.PriceCandidate{Value: value, Source: models.SourceTextSuffix}
}

func TestSelectOutOfStockWinsOverCandidates(t *testing.T) {
	selector := newTestSelector()

	candidates := []models.PriceCandidate{
		{Value: 999, Source: models.SourceStructuredData},
		textCandidate(4990),
	}

	tests := []struct {
		name        string
		visibleText string
	}{
		{"hebrew marker", "מבצע מטורף! אזל מהמלאי - חזרו בקרוב. רק 4,990 ₪"},
		{"english marker", "Great deal! Out of stock, check back soon. Only 4,990 ₪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := selector.Select("https://shop/item/1", candidates, tt.visibleText)

			require.Error(t, err)
			assert.True(t, models.IsOutOfStock(err))
			assert.False(t, models.IsNoPriceFound(err))
		})
	}
}

func TestSelectStructuredDataBeatsLargerTextPrice(t *testing.T) {
	selector := newTestSelector()

	candidates := []models.PriceCandidate{
		textCandidate(1999),
		{Value: 999, Source: models.SourceStructuredData},
	}

	price, err := selector.Select("https://shop/item/1", candidates, "999 ₪ או 1,999 ₪")

	require.NoError(t, err)
	assert.Equal(t, 999.0, price)
}

func TestSelectFirstStructuredCandidateWins(t *testing.T) {
	selector := newTestSelector()

	candidates := []models.PriceCandidate{
		{Value: 3499, Source: models.SourceStructuredData},
		{Value: 3299, Source: models.SourceStructuredData},
	}

	price, err := selector.Select("https://shop/item/1", candidates, "")

	require.NoError(t, err)
	assert.Equal(t, 3499.0, price)
}

func TestSelectMaximumTextCandidate(t *testing.T) {
	selector := newTestSelector()

	candidates := []models.PriceCandidate{
		textCandidate(150),
		textCandidate(4990),
		{Value: 75, Source: models.SourceAccessibleLabel},
	}

	price, err := selector.Select("https://shop/item/1", candidates, "")

	require.NoError(t, err)
	assert.Equal(t, 4990.0, price)
}

func TestSelectNoCandidates(t *testing.T) {
	selector := newTestSelector()

	_, err := selector.Select("https://shop/item/1", nil, "דף מוצר ללא מחיר")

	require.Error(t, err)
	assert.True(t, models.IsNoPriceFound(err))
	assert.False(t, models.IsOutOfStock(err))
}

func TestSelectCustomTextStrategy(t *testing.T) {
	// The selection policy is injectable; a replacement strategy must be
	// honored without touching the rest of the pipeline
	firstCandidate := func(candidates []models.PriceCandidate) (models.PriceCandidate, bool) {
		if len(candidates) == 0 {
			return models.PriceCandidate{}, false
		}
		return candidates[0], true
	}

	selector := NewSelector(config.AllOutOfStockMarkers(), firstCandidate)

	candidates := []models.PriceCandidate{
		textCandidate(150),
		textCandidate(4990),
	}

	price, err := selector.Select("https://shop/item/1", candidates, "")

	require.NoError(t, err)
	assert.Equal(t, 150.0, price)
}

func TestExtractPrefersStructuredName(t *testing.T) {
	parser := NewCandidateParser(config.DefaultBand, config.DefaultCurrencySymbol)
	extractor := NewExtractor(parser, newTestSelector())

	content := &models.RawPageContent{
		URL:   "https://shop/item/1",
		Title: "החנות הכי זולה ברשת - עמוד מוצר",
		StructuredBlocks: []string{
			`{"@type":"Product","name":"Apple iPhone 15 Pro","offers":{"price":3499}}`,
		},
		VisibleText: "מחיר: 3,499 ₪",
	}

	name, price, err := extractor.Extract(content)

	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 15 Pro", name)
	assert.Equal(t, 3499.0, price)
}

func TestExtractFallsBackToPageTitle(t *testing.T) {
	parser := NewCandidateParser(config.DefaultBand, config.DefaultCurrencySymbol)
	extractor := NewExtractor(parser, newTestSelector())

	content := &models.RawPageContent{
		URL:         "https://shop/item/2",
		Title:       "Logitech MX Keys",
		VisibleText: "מקלדת אלחוטית 399 ₪",
	}

	name, price, err := extractor.Extract(content)

	require.NoError(t, err)
	assert.Equal(t, "Logitech MX Keys", name)
	assert.Equal(t, 399.0, price)
}

func TestExtractReturnsNameEvenOnFailure(t *testing.T) {
	parser := NewCandidateParser(config.DefaultBand, config.DefaultCurrencySymbol)
	extractor := NewExtractor(parser, newTestSelector())

	content := &models.RawPageContent{
		URL:         "https://shop/item/3",
		Title:       "Samsung Galaxy S24",
		VisibleText: "המוצר אזל מהמלאי",
	}

	name, _, err := extractor.Extract(content)

	require.Error(t, err)
	assert.True(t, models.IsOutOfStock(err))
	assert.Equal(t, "Samsung Galaxy S24", name)
}
