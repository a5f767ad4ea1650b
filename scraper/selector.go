package scraper

import (
	"strings"

	"dealpulse/models"
)

// TextStrategy picks one candidate from the text-derived candidates when no
// structured data was found. Swappable so the policy can be replaced without
// touching the rest of the pipeline.
type TextStrategy func(candidates []models.PriceCandidate) (models.PriceCandidate, bool)

// MaxCandidate selects the largest candidate. On product pages the true unit
// price is usually the largest currency-tagged number; installment amounts,
// shipping fees and small credits are smaller. This is a heuristic, not a
// guarantee: an unrelated larger figure inside the band (a competitor price
// comparison, say) will silently win.
func MaxCandidate(candidates []models.PriceCandidate) (models.PriceCandidate, bool) {
	if len(candidates) == 0 {
		return models.PriceCandidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Value > best.Value {
			best = c
		}
	}
	return best, true
}

// Selector applies the selection policy over parsed candidates
type Selector struct {
	stockMarkers []string
	strategy     TextStrategy
}

// NewSelector creates a selector with the given out-of-stock markers and text
// strategy. A nil strategy defaults to MaxCandidate.
func NewSelector(stockMarkers []string, strategy TextStrategy) *Selector {
	if strategy == nil {
		strategy = MaxCandidate
	}
	return &Selector{
		stockMarkers: stockMarkers,
		strategy:     strategy,
	}
}

// Select chooses one price from the candidates, or returns an extraction
// failure sentinel. Order of policy:
//  1. An out-of-stock marker anywhere in the visible text wins over any
//     candidate; unavailable items never yield a price.
//  2. The first structured-data candidate, when present.
//  3. The text strategy over the remaining candidates.
//  4. NoPriceFound.
func (s *Selector) Select(url string, candidates []models.PriceCandidate, visibleText string) (float64, error) {
	for _, marker := range s.stockMarkers {
		if strings.Contains(visibleText, marker) {
			return 0, &models.ExtractionError{Reason: models.FailureOutOfStock, URL: url}
		}
	}

	for _, c := range candidates {
		if c.IsStructured() {
			return c.Value, nil
		}
	}

	var textCandidates []models.PriceCandidate
	for _, c := range candidates {
		if !c.IsStructured() {
			textCandidates = append(textCandidates, c)
		}
	}

	if chosen, ok := s.strategy(textCandidates); ok {
		return chosen.Value, nil
	}

	return 0, &models.ExtractionError{Reason: models.FailureNoPriceFound, URL: url}
}

// Extractor runs the full extraction pipeline over one page snapshot
type Extractor struct {
	parser   *CandidateParser
	selector *Selector
}

// NewExtractor wires a parser and a selector together
func NewExtractor(parser *CandidateParser, selector *Selector) *Extractor {
	return &Extractor{parser: parser, selector: selector}
}

// Extract returns the product name and validated price for a page snapshot.
// The structured-data name takes precedence over the page title.
func (e *Extractor) Extract(content *models.RawPageContent) (string, float64, error) {
	candidates, structuredName := e.parser.Parse(content)

	name := structuredName
	if name == "" {
		name = content.Title
	}

	price, err := e.selector.Select(content.URL, candidates, content.VisibleText)
	if err != nil {
		return name, 0, err
	}

	return name, price, nil
}
