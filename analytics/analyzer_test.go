package analytics

import (
	"testing"
	"time"

	"dealpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewNormalizer())
}

func obs(name string, price float64, url string, capturedAt time.Time) models.Observation {
	return models.Observation{Name: name, Price: price, URL: url, CapturedAt: capturedAt}
}

func TestAnalyzeDiscount(t *testing.T) {
	a := newTestAnalyzer()
	base := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	history := []models.Observation{
		obs("Galaxy S24", 1000, "https://shop/item/1", base),
		obs("Galaxy S24", 1200, "https://shop/item/1", base.AddDate(0, 0, 1)),
		obs("Galaxy S24", 800, "https://shop/item/1", base.AddDate(0, 0, 2)),
	}

	metric := a.Analyze(history)

	assert.Equal(t, 800.0, metric.LatestPrice)
	assert.InDelta(t, 1000.0, metric.AvgPrice, 0.001)
	assert.Equal(t, 800.0, metric.MinPrice)
	assert.Equal(t, 1200.0, metric.MaxPrice)
	assert.InDelta(t, 200.0, metric.DiscountAmount, 0.001)
	assert.InDelta(t, 20.0, metric.DiscountPct, 0.001)
	assert.Equal(t, 3, metric.Observations)
	assert.Equal(t, "Samsung", metric.Brand)
}

func TestAnalyzeSingleObservationHasZeroDiscount(t *testing.T) {
	a := newTestAnalyzer()

	metric := a.Analyze([]models.Observation{
		obs("Pixel 8", 2500, "https://shop/item/2", time.Now()),
	})

	assert.Equal(t, 2500.0, metric.LatestPrice)
	assert.Equal(t, 2500.0, metric.AvgPrice)
	assert.InDelta(t, 0.0, metric.DiscountPct, 0.001)
}

func TestAnalyzePriceIncreaseYieldsNegativeDiscount(t *testing.T) {
	a := newTestAnalyzer()
	base := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	metric := a.Analyze([]models.Observation{
		obs("Pixel 8", 1000, "https://shop/item/2", base),
		obs("Pixel 8", 1200, "https://shop/item/2", base.AddDate(0, 0, 1)),
	})

	assert.Equal(t, 1200.0, metric.LatestPrice)
	assert.InDelta(t, -100.0, metric.DiscountAmount, 0.001)
	assert.True(t, metric.DiscountPct < 0)
}

func TestAnalyzeTimestampTieLaterInSequenceWins(t *testing.T) {
	a := newTestAnalyzer()
	ts := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	metric := a.Analyze([]models.Observation{
		obs("Pixel 8", 1000, "https://shop/item/2", ts),
		obs("Pixel 8", 900, "https://shop/item/2", ts),
	})

	assert.Equal(t, 900.0, metric.LatestPrice)
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	a := newTestAnalyzer()

	metric := a.Analyze(nil)

	assert.Equal(t, models.DealMetric{}, metric)
}

func TestGroupByIdentityJoinsColorVariants(t *testing.T) {
	a := newTestAnalyzer()
	now := time.Now()

	groups := a.GroupByIdentity([]models.Observation{
		obs("Apple iPhone 15 Black", 3500, "https://shop/item/1", now),
		obs("Apple iPhone 15 White", 3400, "https://shop/item/2", now),
		obs("Logitech MX Keys", 400, "https://shop/item/3", now),
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups["Apple iPhone 15"], 2)
	assert.Len(t, groups["Logitech MX Keys"], 1)
}

func TestBuildDealReportJoinsIdentityStatsAcrossURLs(t *testing.T) {
	a := newTestAnalyzer()
	base := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	// Two listings of the same model share one identity history
	observations := []models.Observation{
		obs("Pixel 8 Black", 1000, "https://shop/item/1", base),
		obs("Pixel 8 White", 1100, "https://shop/item/2", base.AddDate(0, 0, 1)),
		obs("Pixel 8 Black", 900, "https://shop/item/1", base.AddDate(0, 0, 2)),
	}

	report := a.BuildDealReport(observations)

	require.Len(t, report, 2)

	// Best discount first
	assert.Equal(t, "https://shop/item/1", report[0].URL)
	assert.Equal(t, 900.0, report[0].LatestPrice)
	assert.InDelta(t, 1000.0, report[0].AvgPrice, 0.001)
	assert.InDelta(t, 10.0, report[0].DiscountPct, 0.001)
	assert.Equal(t, 3, report[0].Observations)

	assert.Equal(t, "https://shop/item/2", report[1].URL)
	assert.InDelta(t, -10.0, report[1].DiscountPct, 0.001)
}

func TestBuildDealReportEmptyInput(t *testing.T) {
	a := newTestAnalyzer()

	assert.Empty(t, a.BuildDealReport(nil))
}

func TestFilterDeals(t *testing.T) {
	deals := []models.DealMetric{
		{Brand: "Apple", LatestPrice: 3500},
		{Brand: "Samsung", LatestPrice: 1200},
		{Brand: "Other", LatestPrice: 80},
	}

	t.Run("min price", func(t *testing.T) {
		filtered := FilterDeals(deals, 1000, "")
		assert.Len(t, filtered, 2)
	})

	t.Run("brand", func(t *testing.T) {
		filtered := FilterDeals(deals, 0, "Samsung")
		require.Len(t, filtered, 1)
		assert.Equal(t, "Samsung", filtered[0].Brand)
	})

	t.Run("brand All matches everything", func(t *testing.T) {
		assert.Len(t, FilterDeals(deals, 0, "All"), 3)
	})

	t.Run("combined", func(t *testing.T) {
		assert.Empty(t, FilterDeals(deals, 2000, "Samsung"))
	})
}

func TestDayOfWeekAverages(t *testing.T) {
	sunday1 := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	sunday2 := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	// Deliberately out of calendar order
	observations := []models.Observation{
		obs("A", 300, "https://shop/item/1", monday),
		obs("B", 100, "https://shop/item/2", sunday1),
		obs("C", 200, "https://shop/item/3", sunday2),
	}

	buckets := DayOfWeekAverages(observations)

	require.Len(t, buckets, 2)
	assert.Equal(t, "Sunday", buckets[0].Day)
	assert.InDelta(t, 150.0, buckets[0].AvgPrice, 0.001)
	assert.Equal(t, 2, buckets[0].Observations)
	assert.Equal(t, "Monday", buckets[1].Day)
	assert.InDelta(t, 300.0, buckets[1].AvgPrice, 0.001)
}

func TestDayOfWeekAveragesEmpty(t *testing.T) {
	assert.Empty(t, DayOfWeekAverages(nil))
}
