package resolve

import (
	"regexp"
	"strings"
)

// skuPatterns are tried in priority order against the raw item name.
var skuPatterns = []*regexp.Regexp{
	// Vendor prefix + digits: MCM-12345, AB1234.
	regexp.MustCompile(`\b([A-Za-z]{2,4}-?\d{4,})\b`),
	// Long numeric part numbers, optionally with a letter block: 91255A123.
	regexp.MustCompile(`\b(\d{5,}[A-Za-z]*\d*)\b`),
	// Letter, two digits, dash, four digits: A12-3456.
	regexp.MustCompile(`\b([A-Za-z]\d{2}-\d{4})\b`),
	// Hash-prefixed token: #AB12.
	regexp.MustCompile(`#\s*(\w+)`),
}

// ExtractSKU returns the most likely part number embedded in a product name,
// uppercased, or "" when none of the patterns match.
func ExtractSKU(name string) string {
	for _, re := range skuPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}
