package analytics

import (
	"regexp"
	"strings"

	"dealpulse/config"
)

// Normalizer derives the canonical identity used to join observations of the
// same product across scrape sessions. Normalization is pure and
// deterministic; historical joins depend on it staying stable across runs.
type Normalizer struct {
	boilerplate []string
	colorRes    []*regexp.Regexp
	spaceRe     *regexp.Regexp
}

// NewNormalizer builds a normalizer from the configured vocabulary tables
func NewNormalizer() *Normalizer {
	var boilerplate []string
	for _, locale := range []string{"he", "en"} {
		boilerplate = append(boilerplate, config.BoilerplateTokens[locale]...)
	}

	// English colors match case-insensitively; Hebrew has no case
	var colorRes []*regexp.Regexp
	if tokens := config.ColorTokens["en"]; len(tokens) > 0 {
		colorRes = append(colorRes, regexp.MustCompile(`(?i)(`+strings.Join(tokens, "|")+`)`))
	}
	if tokens := config.ColorTokens["he"]; len(tokens) > 0 {
		colorRes = append(colorRes, regexp.MustCompile(`(`+strings.Join(tokens, "|")+`)`))
	}

	return &Normalizer{
		boilerplate: boilerplate,
		colorRes:    colorRes,
		spaceRe:     regexp.MustCompile(`\s+`),
	}
}

// Normalize cleans a raw product title into its canonical model name:
// boilerplate substrings removed, color tokens removed, hyphens dropped,
// whitespace collapsed. Idempotent: normalizing an already-normalized name
// changes nothing.
func (n *Normalizer) Normalize(rawName string) string {
	name := rawName

	for _, token := range n.boilerplate {
		name = strings.ReplaceAll(name, token, "")
	}

	for _, re := range n.colorRes {
		name = re.ReplaceAllString(name, "")
	}

	name = strings.ReplaceAll(name, "-", "")
	name = n.spaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ClassifyBrand labels a raw product name using the ordered brand decision
// list; the first rule with a matching keyword wins, unmatched names fall
// through to the catch-all label.
func (n *Normalizer) ClassifyBrand(rawName string) string {
	lower := strings.ToLower(rawName)

	for _, rule := range config.BrandRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Label
			}
		}
	}

	return config.DefaultBrandLabel
}
