package analytics

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"dealpulse/config"
	"dealpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHistoryShape(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	latest := []models.Observation{
		obs("Galaxy S24", 5000, "https://shop/item/1", time.Now()),
	}

	history := GenerateHistory(latest, 10, config.DefaultBand, rng)

	require.Len(t, history, 10)
	for _, h := range history {
		assert.Equal(t, "Galaxy S24", h.Name)
		assert.Equal(t, "https://shop/item/1", h.URL)
		assert.True(t, h.CapturedAt.Before(time.Now()))

		// Fluctuation range is -5% to +30% of the current price, rounded
		// to the nearest 10
		assert.GreaterOrEqual(t, h.Price, 4750.0)
		assert.LessOrEqual(t, h.Price, 6500.0)
		assert.InDelta(t, 0.0, math.Mod(h.Price, 10), 0.001)
	}
}

func TestGenerateHistoryKeepsPricesInsideBand(t *testing.T) {
	// A price near the band ceiling could be inflated past it by the
	// simulated-drop branch; such rows must never be emitted
	latest := []models.Observation{
		obs("Workstation", 95000, "https://shop/item/9", time.Now()),
	}

	for seed := int64(0); seed < 20; seed++ {
		history := GenerateHistory(latest, 30, config.DefaultBand, rand.New(rand.NewSource(seed)))

		require.Len(t, history, 30)
		for _, h := range history {
			assert.True(t, config.DefaultBand.Contains(h.Price),
				"seed %d produced out-of-band price %v", seed, h.Price)
		}
	}
}

func TestGenerateHistoryDefaultDays(t *testing.T) {
	latest := []models.Observation{
		obs("Pixel 8", 2500, "https://shop/item/2", time.Now()),
	}

	history := GenerateHistory(latest, 0, config.DefaultBand, rand.New(rand.NewSource(1)))

	assert.Len(t, history, DefaultBackfillDays)
}

func TestGenerateHistoryDeduplicatesByName(t *testing.T) {
	now := time.Now()
	latest := []models.Observation{
		obs("Galaxy S24", 1000, "https://shop/item/1", now.Add(-time.Hour)),
		obs("Galaxy S24", 2000, "https://shop/item/1", now),
	}

	history := GenerateHistory(latest, 5, config.DefaultBand, rand.New(rand.NewSource(7)))

	require.Len(t, history, 5)
	// The later entry's price is the basis; values derived from 1000 could
	// never reach this range
	for _, h := range history {
		assert.Greater(t, h.Price, 1500.0)
	}
}

func TestGenerateHistoryCheapItemsKeepCurrentPrice(t *testing.T) {
	latest := []models.Observation{
		obs("Cable", 60, "https://shop/item/3", time.Now()),
	}

	history := GenerateHistory(latest, 10, config.DefaultBand, rand.New(rand.NewSource(3)))

	require.Len(t, history, 10)
	for _, h := range history {
		assert.Equal(t, 60.0, h.Price)
	}
}

func TestGenerateHistoryMultipleProducts(t *testing.T) {
	now := time.Now()
	latest := []models.Observation{
		obs("Galaxy S24", 3000, "https://shop/item/1", now),
		obs("Pixel 8", 2500, "https://shop/item/2", now),
	}

	history := GenerateHistory(latest, 7, config.DefaultBand, rand.New(rand.NewSource(9)))

	require.Len(t, history, 14)

	byName := make(map[string]int)
	for _, h := range history {
		byName[h.Name]++
	}
	assert.Equal(t, 7, byName["Galaxy S24"])
	assert.Equal(t, 7, byName["Pixel 8"])
}
