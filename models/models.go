package models

import (
	"fmt"
	"time"
)

// CandidateSource tags where a price candidate was extracted from.
type CandidateSource string

const (
	SourceStructuredData  CandidateSource = "structured_data"
	SourceTextSuffix      CandidateSource = "text_currency_suffix"
	SourceTextPrefix      CandidateSource = "text_currency_prefix"
	SourceAccessibleLabel CandidateSource = "accessible_label"
)

// PriceCandidate is a single unvalidated price produced by one extraction
// strategy. Candidates only live within one extraction call.
type PriceCandidate struct {
	Value  float64         `json:"value"`
	Source CandidateSource `json:"source"`
	Raw    string          `json:"raw,omitempty"`
}

// IsStructured reports whether the candidate came from structured data,
// the high-trust extraction path.
func (c PriceCandidate) IsStructured() bool {
	return c.Source == SourceStructuredData
}

// RawPageContent is the rendered-page snapshot handed over by the browser
// collaborator. It is transient input to extraction and never persisted.
type RawPageContent struct {
	URL              string
	Title            string
	StructuredBlocks []string // raw JSON-LD script contents
	VisibleText      string
	AccessibleLabels []string
}

// Observation is one persisted price point for a product page.
type Observation struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	URL        string    `json:"url" db:"url"`
	CapturedAt time.Time `json:"captured_at" db:"captured_at"`
}

// DealMetric is the discount signal for one product page, computed against
// the historical stats of its canonical identity. Never persisted; always
// recomputed from the full observation history.
type DealMetric struct {
	Identity       string    `json:"identity"`
	Brand          string    `json:"brand"`
	RawName        string    `json:"raw_name"`
	URL            string    `json:"url"`
	LatestPrice    float64   `json:"latest_price"`
	AvgPrice       float64   `json:"avg_price"`
	MinPrice       float64   `json:"min_price"`
	MaxPrice       float64   `json:"max_price"`
	DiscountAmount float64   `json:"discount_amount"`
	DiscountPct    float64   `json:"discount_pct"`
	Observations   int       `json:"observations"`
	LastSeen       time.Time `json:"last_seen"`
}

// DayOfWeekStat is the market-wide average price for one calendar day name.
type DayOfWeekStat struct {
	Day          string  `json:"day"`
	AvgPrice     float64 `json:"avg_price"`
	Observations int     `json:"observations"`
}

// FailureReason classifies why extraction produced no price.
type FailureReason string

const (
	// FailureOutOfStock means the page explicitly marks the item as
	// unavailable. Expected outcome, not a fault.
	FailureOutOfStock FailureReason = "out_of_stock"
	// FailureNoPriceFound means every strategy was exhausted without a
	// plausible candidate.
	FailureNoPriceFound FailureReason = "no_price_found"
)

// ExtractionError is the sentinel failure value returned by the price
// selector. It is never propagated as a fatal error; batch scans log it and
// move on to the next page.
type ExtractionError struct {
	Reason FailureReason
	URL    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %s", e.Reason, e.URL)
}

// IsOutOfStock reports whether err is an out-of-stock extraction failure.
func IsOutOfStock(err error) bool {
	ee, ok := err.(*ExtractionError)
	return ok && ee.Reason == FailureOutOfStock
}

// IsNoPriceFound reports whether err is a no-price extraction failure.
func IsNoPriceFound(err error) bool {
	ee, ok := err.(*ExtractionError)
	return ok && ee.Reason == FailureNoPriceFound
}

// ScanSummary reports the outcome of one category scan.
type ScanSummary struct {
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	LinksFound  int       `json:"links_found"`
	Stored      int       `json:"stored"`
	OutOfStock  int       `json:"out_of_stock"`
	NoPrice     int       `json:"no_price"`
	FetchErrors int       `json:"fetch_errors"`
}

// Duration returns how long the scan took.
func (s *ScanSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// BackfillRequest asks for synthetic history generation.
type BackfillRequest struct {
	Days int `json:"days"`
}

// DealReportResponse is the payload served to the dashboard.
type DealReportResponse struct {
	Deals     []DealMetric `json:"deals"`
	Total     int          `json:"total"`
	Generated time.Time    `json:"generated"`
}
