package normalize

import (
	"regexp"
	"strings"

	"github.com/robostock/catalog-ingest/internal/entity"
)

var tokenSplit = regexp.MustCompile(`[\s\-_]+`)

// Candidate maps a raw matched product to its canonical key. It is pure and
// total: every non-nil candidate yields a key, even one with empty fields.
//
// The alias set collects the spelling variants a later match might use for
// the same product: the normalized name itself, a no-space collapse, a
// hyphenated join, an underscored join, and a "{name} {product_type}"
// concatenation when a product type is known. Duplicates collapse, first-seen
// order is preserved for display.
func Candidate(c entity.CandidateProduct) entity.NormalizedKey {
	nameNorm := strings.ToLower(strings.TrimSpace(c.Name))
	brandNorm := strings.ToLower(strings.TrimSpace(c.Brand))

	var tokens []string
	for _, tok := range tokenSplit.Split(nameNorm, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	variants := []string{
		nameNorm,
		strings.Join(tokens, ""),
		strings.Join(tokens, "-"),
		strings.Join(tokens, "_"),
		strings.Join(tokens, " "),
	}
	if pt := strings.ToLower(strings.TrimSpace(c.ProductType)); pt != "" {
		variants = append(variants, nameNorm+" "+pt)
	}

	seen := make(map[string]struct{}, len(variants))
	aliases := make([]string, 0, len(variants))
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		aliases = append(aliases, v)
	}

	return entity.NormalizedKey{
		BrandNorm:  brandNorm,
		NameNorm:   nameNorm,
		NameTokens: tokens,
		Aliases:    aliases,
	}
}
