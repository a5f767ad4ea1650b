package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"dealpulse/config"
	"dealpulse/models"
)

// CandidateParser turns a rendered-page snapshot into zero or more numeric
// price candidates, each tagged with its provenance. It never fails: malformed
// structured data is swallowed and the text strategies still run. Values
// outside the plausibility band are discarded here, at parse time.
type CandidateParser struct {
	band     config.PriceBand
	symbol   string
	prefixRe *regexp.Regexp
	suffixRe *regexp.Regexp
}

// NewCandidateParser creates a parser for the given plausibility band and
// currency glyph
func NewCandidateParser(band config.PriceBand, currencySymbol string) *CandidateParser {
	sym := regexp.QuoteMeta(currencySymbol)
	// Plain digit runs or well-formed thousands groups; malformed groups
	// like "1,23" never parse as a price
	number := `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`
	return &CandidateParser{
		band:   band,
		symbol: currencySymbol,
		// Matches "₪500", "₪ 5,000.00" and "500 ₪", "5,000.00₪"
		prefixRe: regexp.MustCompile(sym + `\s?` + number),
		suffixRe: regexp.MustCompile(number + `\s?` + sym),
	}
}

// Parse extracts price candidates from the page snapshot. It also returns the
// product name declared in structured data, or "" when none was found.
//
// Strategy A walks the structured-data blocks and stops at the first block
// that yields a candidate. Strategies B and C always run; the selector is
// responsible for preferring structured candidates over text ones.
func (p *CandidateParser) Parse(content *models.RawPageContent) ([]models.PriceCandidate, string) {
	var candidates []models.PriceCandidate
	var structuredName string

	for _, block := range content.StructuredBlocks {
		blockCands, name := p.parseStructuredBlock(block)
		if structuredName == "" && name != "" {
			structuredName = name
		}
		if len(blockCands) > 0 {
			// First block with a valid price wins; never merge across blocks
			candidates = append(candidates, blockCands...)
			break
		}
	}

	candidates = append(candidates, p.textCandidates(content.VisibleText)...)

	for _, label := range content.AccessibleLabels {
		candidates = append(candidates, p.labelCandidates(label)...)
	}

	return candidates, structuredName
}

// parseStructuredBlock parses one JSON-LD block into structured-data
// candidates. Unparsable blocks yield nothing.
func (p *CandidateParser) parseStructuredBlock(raw string) ([]models.PriceCandidate, string) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, ""
	}

	var candidates []models.PriceCandidate
	var name string

	for _, record := range flattenRecords(doc) {
		rec, ok := record.(map[string]interface{})
		if !ok || !isProductRecord(rec) {
			continue
		}

		if n, ok := rec["name"].(string); ok && name == "" {
			name = strings.TrimSpace(n)
		}

		for _, offer := range offerList(rec["offers"]) {
			o, ok := offer.(map[string]interface{})
			if !ok {
				continue
			}
			value, ok := numericValue(o["price"])
			if !ok || !p.band.Contains(value) {
				continue
			}
			candidates = append(candidates, models.PriceCandidate{
				Value:  value,
				Source: models.SourceStructuredData,
			})
		}
	}

	return candidates, name
}

// flattenRecords reduces the three accepted JSON-LD shapes (single record,
// list of records, graph container) to a flat record list
func flattenRecords(doc interface{}) []interface{} {
	switch d := doc.(type) {
	case map[string]interface{}:
		if graph, ok := d["@graph"].([]interface{}); ok {
			return graph
		}
		if graph, ok := d["graph"].([]interface{}); ok {
			return graph
		}
		return []interface{}{d}
	case []interface{}:
		return d
	default:
		return nil
	}
}

// isProductRecord reports whether a record declares the Product type
func isProductRecord(rec map[string]interface{}) bool {
	switch t := rec["@type"].(type) {
	case string:
		return t == "Product"
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// offerList normalizes the offers field (single offer or list of offers)
func offerList(v interface{}) []interface{} {
	switch o := v.(type) {
	case []interface{}:
		return o
	case map[string]interface{}:
		return []interface{}{o}
	default:
		return nil
	}
}

// numericValue coerces a JSON price field to a float. Offer prices appear
// both as numbers and as strings like "3,499.90".
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		return parseNumber(n)
	default:
		return 0, false
	}
}

// textCandidates scans visible text for currency-adjacent numbers
func (p *CandidateParser) textCandidates(text string) []models.PriceCandidate {
	var candidates []models.PriceCandidate

	for _, m := range p.prefixRe.FindAllStringSubmatch(text, -1) {
		if value, ok := parseNumber(m[1]); ok && p.band.Contains(value) {
			candidates = append(candidates, models.PriceCandidate{
				Value:  value,
				Source: models.SourceTextPrefix,
				Raw:    m[0],
			})
		}
	}

	for _, m := range p.suffixRe.FindAllStringSubmatch(text, -1) {
		if value, ok := parseNumber(m[1]); ok && p.band.Contains(value) {
			candidates = append(candidates, models.PriceCandidate{
				Value:  value,
				Source: models.SourceTextSuffix,
				Raw:    m[0],
			})
		}
	}

	return candidates
}

// labelCandidates parses one accessible label the same way as visible text
func (p *CandidateParser) labelCandidates(label string) []models.PriceCandidate {
	if !strings.Contains(label, p.symbol) {
		return nil
	}

	var candidates []models.PriceCandidate
	for _, re := range []*regexp.Regexp{p.prefixRe, p.suffixRe} {
		for _, m := range re.FindAllStringSubmatch(label, -1) {
			if value, ok := parseNumber(m[1]); ok && p.band.Contains(value) {
				candidates = append(candidates, models.PriceCandidate{
					Value:  value,
					Source: models.SourceAccessibleLabel,
					Raw:    label,
				})
			}
		}
	}
	return candidates
}

// parseNumber parses a numeric token after thousands-separator removal
func parseNumber(s string) (float64, bool) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
