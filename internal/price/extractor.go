// Package price implements the fallback price heuristic used when the
// reasoning service does not supply a numeric price for a candidate.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxReasonable caps accepted prices. Values at or above it are far more
// likely to be part numbers or serials misread as prices.
const MaxReasonable = 1_000_000

// The four pattern classes, in fixed priority order. The first pattern whose
// captured numeral survives the sanity bounds wins.
var patterns = []*regexp.Regexp{
	// currency-symbol-prefixed: $1,234.56  € 99
	regexp.MustCompile(`[$€£¥]\s?(\d[\d,]*(?:\.\d+)?)`),
	// currency-code-suffixed: 1.234,56 EUR  99 usd
	regexp.MustCompile(`(?i)(\d[\d,]*(?:[.,]\d+)?)\s?(?:USD|EUR|GBP|JPY|CHF|CAD|AUD)\b`),
	// keyword-prefixed: Price: 1299.00  cost 45
	regexp.MustCompile(`(?i)(?:price|cost)\s*[:=]?\s*[$€£¥]?\s?(\d[\d,]*(?:[.,]\d+)?)`),
	// bare decimal: 1234.56
	regexp.MustCompile(`(\d[\d,]*[.,]\d{1,2})\b`),
}

// Extract searches a 200-character window centered on the first
// case-insensitive occurrence of productName in text; if nothing near the
// name qualifies, the same scan runs over the whole text. Returns nil when no
// acceptable price is found, which is not an error.
func Extract(text, productName string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if idx := indexFold(text, productName); idx >= 0 {
		lo := idx - 100
		if lo < 0 {
			lo = 0
		}
		hi := idx + len(productName) + 100
		if hi > len(text) {
			hi = len(text)
		}
		if v := scan(text[lo:hi]); v != nil {
			return v
		}
	}
	return scan(text)
}

// Valid reports whether v is inside the accepted price range.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 && v < MaxReasonable
}

func scan(window string) *float64 {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(window, -1) {
			v, ok := parseNumeral(m[1])
			if !ok || !Valid(v) {
				continue
			}
			return &v
		}
	}
	return nil
}

// parseNumeral applies the separator rule: a comma with no dot is a decimal
// separator; otherwise commas are thousands separators and are stripped.
func parseNumeral(s string) (float64, bool) {
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func indexFold(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}
