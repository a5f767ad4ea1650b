package analytics

import (
	"sort"
	"time"

	"dealpulse/models"
)

// Analyzer computes discount signals from observation history. It carries no
// state across calls and is safe to use from concurrent pipelines.
type Analyzer struct {
	normalizer *Normalizer
}

// NewAnalyzer creates an analyzer backed by the given normalizer
func NewAnalyzer(normalizer *Normalizer) *Analyzer {
	return &Analyzer{normalizer: normalizer}
}

// Analyze computes the deal metric for one canonical identity, given its
// observation history in capture order. When two observations share a
// timestamp the one later in the sequence wins as "latest". The metric is
// returned raw: negative discounts (price increases) are not filtered here.
func (a *Analyzer) Analyze(history []models.Observation) models.DealMetric {
	if len(history) == 0 {
		return models.DealMetric{}
	}

	latest := history[0]
	sum := 0.0
	minPrice := history[0].Price
	maxPrice := history[0].Price

	for _, obs := range history {
		if !obs.CapturedAt.Before(latest.CapturedAt) {
			latest = obs
		}
		sum += obs.Price
		if obs.Price < minPrice {
			minPrice = obs.Price
		}
		if obs.Price > maxPrice {
			maxPrice = obs.Price
		}
	}

	avg := sum / float64(len(history))

	metric := models.DealMetric{
		Identity:     a.normalizer.Normalize(latest.Name),
		Brand:        a.normalizer.ClassifyBrand(latest.Name),
		RawName:      latest.Name,
		URL:          latest.URL,
		LatestPrice:  latest.Price,
		AvgPrice:     avg,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Observations: len(history),
		LastSeen:     latest.CapturedAt,
	}

	metric.DiscountAmount = metric.AvgPrice - metric.LatestPrice
	if metric.AvgPrice > 0 {
		metric.DiscountPct = metric.DiscountAmount / metric.AvgPrice * 100
	}

	return metric
}

// GroupByIdentity buckets observations by canonical identity, preserving
// capture order inside each group
func (a *Analyzer) GroupByIdentity(observations []models.Observation) map[string][]models.Observation {
	groups := make(map[string][]models.Observation)
	for _, obs := range observations {
		identity := a.normalizer.Normalize(obs.Name)
		groups[identity] = append(groups[identity], obs)
	}
	return groups
}

// BuildDealReport assembles one deal metric per tracked product page: the
// latest observation of each source URL joined with the historical stats of
// its canonical identity. Observations must be supplied in capture order.
// Results are sorted by discount, best deals first.
func (a *Analyzer) BuildDealReport(observations []models.Observation) []models.DealMetric {
	if len(observations) == 0 {
		return nil
	}

	type identityStats struct {
		sum   float64
		count int
		min   float64
		max   float64
	}

	stats := make(map[string]*identityStats)
	for _, obs := range observations {
		identity := a.normalizer.Normalize(obs.Name)
		st, ok := stats[identity]
		if !ok {
			st = &identityStats{min: obs.Price, max: obs.Price}
			stats[identity] = st
		}
		st.sum += obs.Price
		st.count++
		if obs.Price < st.min {
			st.min = obs.Price
		}
		if obs.Price > st.max {
			st.max = obs.Price
		}
	}

	// Latest observation per URL; later in the sequence wins
	latestByURL := make(map[string]models.Observation)
	var urlOrder []string
	for _, obs := range observations {
		if _, seen := latestByURL[obs.URL]; !seen {
			urlOrder = append(urlOrder, obs.URL)
		}
		latestByURL[obs.URL] = obs
	}

	var report []models.DealMetric
	for _, url := range urlOrder {
		obs := latestByURL[url]
		identity := a.normalizer.Normalize(obs.Name)

		metric := models.DealMetric{
			Identity:    identity,
			Brand:       a.normalizer.ClassifyBrand(obs.Name),
			RawName:     obs.Name,
			URL:         obs.URL,
			LatestPrice: obs.Price,
			LastSeen:    obs.CapturedAt,
		}

		if st, ok := stats[identity]; ok && st.count > 0 {
			metric.AvgPrice = st.sum / float64(st.count)
			metric.MinPrice = st.min
			metric.MaxPrice = st.max
			metric.Observations = st.count
		} else {
			// No history for the identity yet: the latest price is its own
			// baseline, yielding zero discount
			metric.AvgPrice = obs.Price
			metric.MinPrice = obs.Price
			metric.MaxPrice = obs.Price
			metric.Observations = 1
		}

		metric.DiscountAmount = metric.AvgPrice - metric.LatestPrice
		if metric.AvgPrice > 0 {
			metric.DiscountPct = metric.DiscountAmount / metric.AvgPrice * 100
		}

		report = append(report, metric)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].DiscountPct > report[j].DiscountPct
	})

	return report
}

// FilterDeals applies the dashboard's predicate filters: a minimum latest
// price and an optional brand. An empty or "All" brand matches everything.
func FilterDeals(deals []models.DealMetric, minPrice float64, brand string) []models.DealMetric {
	var filtered []models.DealMetric
	for _, d := range deals {
		if d.LatestPrice < minPrice {
			continue
		}
		if brand != "" && brand != "All" && d.Brand != brand {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// DayOfWeekAverages computes the market-wide average price per calendar day
// name across the whole observation corpus, reported in canonical week order
// Sunday through Saturday. Days with no observations are omitted.
func DayOfWeekAverages(observations []models.Observation) []models.DayOfWeekStat {
	var sums [7]float64
	var counts [7]int

	for _, obs := range observations {
		day := obs.CapturedAt.Weekday()
		sums[day] += obs.Price
		counts[day]++
	}

	var buckets []models.DayOfWeekStat
	for day := time.Sunday; day <= time.Saturday; day++ {
		if counts[day] == 0 {
			continue
		}
		buckets = append(buckets, models.DayOfWeekStat{
			Day:          day.String(),
			AvgPrice:     sums[day] / float64(counts[day]),
			Observations: counts[day],
		})
	}

	return buckets
}
