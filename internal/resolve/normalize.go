// Package resolve reconciles differently-worded product names: it builds
// comparison keys, pulls part numbers out of free text, and scores how close
// two keys are.
package resolve

import (
	"regexp"
	"strings"
)

var (
	separatorRe     = regexp.MustCompile(`[-_]+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingArticle  = regexp.MustCompile(`^(?:the|a|an)\s+`)
	bracketedRe     = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	packSizeRe      = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:pack|box|case|bag|ct|pk|count|each|ea|unit|units|pcs|pieces)\b`)
	packOfRe        = regexp.MustCompile(`\b(?:box|case|pack|bag)\s+of\s+\d+\b`)
	trailingUnitRe  = regexp.MustCompile(`\s*[-–]\s*(?:pack|box|case|bag|each|ea|pk|ct|count|unit|units)$`)
	trailingPunctRe = regexp.MustCompile(`[.,;:!?]+$`)
)

// abbreviations maps unit abbreviations to one canonical spelling. Order
// matters: "pcs" must be rewritten before "pc".
var abbreviations = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bea\b`), "ea"},
	{regexp.MustCompile(`\bpkg\b`), "pack"},
	{regexp.MustCompile(`\bpcs\b`), "pieces"},
	{regexp.MustCompile(`\bpc\b`), "pieces"},
	{regexp.MustCompile(`\bct\b`), "count"},
	{regexp.MustCompile(`\bpk\b`), "pack"},
}

// Normalize turns a free-text product name into a comparison key by:
//  1. Lowercasing and trimming
//  2. Turning dash/underscore runs into spaces and collapsing whitespace
//  3. Stripping one leading article (the, a, an)
//  4. Removing parenthesized or bracketed codes such as "(SKU-12345)"
//  5. Removing pack-size phrases ("12 pack", "box of 50")
//  6. Canonicalizing unit abbreviations (pkg, pcs, pc, ct, pk)
//  7. Stripping a trailing "– pack"-style unit suffix
//  8. Stripping trailing punctuation
//  9. Collapsing whitespace and trimming again
//
// The steps are repeated until the key stops changing, so Normalize is
// idempotent even when one step exposes work for an earlier one.
func Normalize(name string) string {
	key := normalizePass(name)
	// Every pass that changes the key either shortens it or expands an
	// abbreviation that can never be produced again, so this terminates.
	for limit := len(key) + 4; limit > 0; limit-- {
		next := normalizePass(key)
		if next == key {
			break
		}
		key = next
	}
	return key
}

func normalizePass(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))

	s = separatorRe.ReplaceAllString(s, " ")
	s = collapse(s)

	s = leadingArticle.ReplaceAllString(s, "")

	s = bracketedRe.ReplaceAllString(s, " ")

	s = packSizeRe.ReplaceAllString(s, " ")
	s = packOfRe.ReplaceAllString(s, " ")

	for _, a := range abbreviations {
		s = a.re.ReplaceAllString(s, a.repl)
	}

	s = trailingUnitRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = trailingPunctRe.ReplaceAllString(s, "")

	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
