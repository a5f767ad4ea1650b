package analytics

import (
	"math"
	"math/rand"
	"time"

	"dealpulse/config"
	"dealpulse/models"
)

// DefaultBackfillDays is how far back synthetic history reaches by default
const DefaultBackfillDays = 30

// GenerateHistory produces synthetic backdated observations for each unique
// product name in latest, so price trends are visible without waiting weeks
// for real data to accumulate. Prices fluctuate within -5%/+10% of the
// current price, with a 20% chance a past price was 10-30% higher (a
// simulated price drop), rounded to the nearest 10. Generated prices obey
// the same plausibility band as scraped ones.
func GenerateHistory(latest []models.Observation, days int, band config.PriceBand, rng *rand.Rand) []models.Observation {
	if days <= 0 {
		days = DefaultBackfillDays
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Deduplicate by name, keeping the last (most recent) entry
	unique := make(map[string]models.Observation)
	var order []string
	for _, obs := range latest {
		if _, seen := unique[obs.Name]; !seen {
			order = append(order, obs.Name)
		}
		unique[obs.Name] = obs
	}

	now := time.Now()
	var history []models.Observation

	for _, name := range order {
		obs := unique[name]
		for daysBack := 1; daysBack <= days; daysBack++ {
			factor := 0.95 + rng.Float64()*0.15
			if rng.Float64() < 0.2 {
				factor = 1.1 + rng.Float64()*0.2
			}

			past := math.Round(obs.Price*factor/10) * 10
			if past < 100 || !band.Contains(past) {
				past = obs.Price
			}

			history = append(history, models.Observation{
				Name:       obs.Name,
				Price:      past,
				URL:        obs.URL,
				CapturedAt: now.AddDate(0, 0, -daysBack),
			})
		}
	}

	return history
}
