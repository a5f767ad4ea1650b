package config

// DefaultCurrencySymbol is the shekel glyph used by the tracked retailer
const DefaultCurrencySymbol = "₪"

// PriceBand is the [min, max] range outside which a number is rejected as
// noise (shipping fees, installment amounts, years). Both bounds are
// exclusive: a value must be strictly inside the band to pass.
type PriceBand struct {
	Min float64
	Max float64
}

// Contains reports whether v lies strictly inside the band
func (b PriceBand) Contains(v float64) bool {
	return v > b.Min && v < b.Max
}

// DefaultBand covers general retail prices
var DefaultBand = PriceBand{Min: 50, Max: 100000}

// CategoryBands holds tighter bands for known product categories
var CategoryBands = map[string]PriceBand{
	"smartphones": {Min: 500, Max: 20000},
}

// BandForCategory returns the band for a category, or the default band when
// the category is unknown or empty
func BandForCategory(category string) PriceBand {
	if band, ok := CategoryBands[category]; ok {
		return band
	}
	return DefaultBand
}

// BoilerplateTokens lists marketing, warranty and packaging phrases removed
// from product names before they are used as history join keys. Keyed by
// locale so new vocabularies can be added without code changes.
var BoilerplateTokens = map[string][]string{
	"he": {
		"טלפון סלולרי",
		"יבואן רשמי",
		"שנה אחריות",
		"ללא מטען",
		"וללא אוזניות",
		"צבע",
		"במבצע",
		"מתנה",
		"מהיר",
		"הדגם החדש",
		"חדש",
	},
	"en": {
		"GB",
		"RAM",
	},
}

// ColorTokens lists color names removed from product names, per locale.
// English colors are matched case-insensitively; Hebrew has no case.
var ColorTokens = map[string][]string{
	"en": {
		"Black", "White", "Silver", "Gold", "Blue", "Titanium",
		"Natural", "Green", "Pink", "Yellow", "Purple", "Gray",
	},
	"he": {
		"שחור", "לבן", "כסף", "זהב", "כחול", "טיטניום",
		"טבעי", "ירוק", "ורוד", "צהוב", "סגול", "אפור",
	},
}

// OutOfStockMarkers lists phrases that mark an item as unavailable, per
// locale. A page containing any of these never yields a price.
var OutOfStockMarkers = map[string][]string{
	"he": {"אזל מהמלאי"},
	"en": {"Out of stock"},
}

// AllOutOfStockMarkers flattens the marker table into one list
func AllOutOfStockMarkers() []string {
	var markers []string
	for _, locale := range []string{"he", "en"} {
		markers = append(markers, OutOfStockMarkers[locale]...)
	}
	return markers
}

// BrandRule maps a set of lowercase keywords to a brand label
type BrandRule struct {
	Keywords []string
	Label    string
}

// BrandRules is the brand decision list, evaluated in order with first match
// winning. The ordering is a committed contract: if keyword sets ever grow to
// overlap, precedence is whatever this list says.
var BrandRules = []BrandRule{
	{Keywords: []string{"apple", "iphone"}, Label: "Apple"},
	{Keywords: []string{"samsung", "galaxy"}, Label: "Samsung"},
	{Keywords: []string{"xiaomi", "redmi"}, Label: "Xiaomi"},
	{Keywords: []string{"google", "pixel"}, Label: "Google"},
	{Keywords: []string{"logitech"}, Label: "Logitech"},
}

// DefaultBrandLabel is the catch-all for unmatched names
const DefaultBrandLabel = "Other"
