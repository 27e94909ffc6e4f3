package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// extractField applies a template pattern to the search text and returns the
// extracted value. The precedence rule for every field is the same: first
// non-empty capture group, else the full match. Patterns are compiled
// case-insensitively. A malformed or unmatched pattern yields ("", false),
// never an error.
func extractField(pattern, text string) (string, bool) {
	if pattern == "" {
		return "", false
	}

	re, err := regexp.Compile("(?i)(?:" + pattern + ")")
	if err != nil {
		return "", false
	}

	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}

	for _, group := range match[1:] {
		if group != "" {
			return strings.TrimSpace(group), true
		}
	}
	return strings.TrimSpace(match[0]), true
}

var amountCleaner = strings.NewReplacer(
	"₹", "",
	"Rs.", "",
	"Rs", "",
	"INR", "",
	"$", "",
	",", "",
	" ", "",
	"\t", "",
)

// parseAmount normalizes an extracted money substring and parses it as a
// positive decimal. Currency symbols, commas and whitespace are stripped
// first; anything non-finite or non-positive is rejected.
func parseAmount(raw string) (float64, bool) {
	cleaned := amountCleaner.Replace(raw)
	if cleaned == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}
	return amount, true
}
