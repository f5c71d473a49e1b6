package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	// quantityUnitRegex matches a quantity followed by a recognized short
	// unit, e.g. "500ml", "1.5 l", "2 fl oz". Group 1 is the quantity,
	// group 2 the unit.
	quantityUnitRegex = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(ml|l|kg|g|cl|oz|fl\s*oz|cm|mm|pcs|sht|cap|tab)\b`)

	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// unitAlias is one whole-word rewrite rule applied before quantity
// detection, e.g. "Litres" -> "l".
type unitAlias struct {
	pattern     *regexp.Regexp
	replacement string
}

// defaultUnitAliases maps long-form unit words to the canonical short units
// the quantity pattern recognizes. Order matters only for readability; the
// patterns are mutually exclusive.
var defaultUnitAliases = []unitAlias{
	{regexp.MustCompile(`(?i)\blitres?\b`), "l"},
	{regexp.MustCompile(`(?i)\bliters?\b`), "l"},
	{regexp.MustCompile(`(?i)\bltr?\b`), "l"},
	{regexp.MustCompile(`(?i)\bmillilitres?\b`), "ml"},
	{regexp.MustCompile(`(?i)\bmilliliters?\b`), "ml"},
	{regexp.MustCompile(`(?i)\bkilograms?\b`), "kg"},
	{regexp.MustCompile(`(?i)\bkilos?\b`), "kg"},
	{regexp.MustCompile(`(?i)\bgrams?\b`), "g"},
	{regexp.MustCompile(`(?i)\bgms?\b`), "g"},
	{regexp.MustCompile(`(?i)\bcentimetres?\b`), "cm"},
	{regexp.MustCompile(`(?i)\bcentimeters?\b`), "cm"},
	{regexp.MustCompile(`(?i)\bmillimetres?\b`), "mm"},
	{regexp.MustCompile(`(?i)\bmillimeters?\b`), "mm"},
	{regexp.MustCompile(`(?i)\bpieces?\b`), "pcs"},
	{regexp.MustCompile(`(?i)\bsheets?\b`), "sht"},
	{regexp.MustCompile(`(?i)\bcapsules?\b`), "cap"},
	{regexp.MustCompile(`(?i)\btablets?\b`), "tab"},
}

// defaultStopWords are tokens stripped from normalized names: articles,
// conjunctions, marketing filler, nationality adjectives, and packaging
// terms that carry no product identity.
var defaultStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "&": true,
	"of": true, "for": true, "with": true, "in": true, "on": true,
	"at": true, "to": true, "from": true, "or": true,
	"fresh": true, "new": true, "best": true, "finest": true,
	"premium": true, "quality": true, "selected": true, "selection": true,
	"range": true, "irish": true, "ireland": true,
	"approx": true, "approximately": true, "min": true, "minimum": true,
	"each": true, "per": true, "pk": true, "pack": true, "pkt": true,
}

// defaultKnownBrands are the major brands seen in Irish supermarkets.
// Scanned in order; the first match wins when a name mentions several.
var defaultKnownBrands = []string{
	"Avonmore", "Brennans", "Barry's", "Bewley's", "Birds Eye", "Bord Bia",
	"Brady Family", "Cadbury", "Carte D'Or", "Chef", "Club", "Coca-Cola",
	"Coke", "Colgate", "Connacht Gold", "Dairygold", "Denny", "Dolmio",
	"Donegal Catch", "Dr Oetker", "Dunnes", "Fairy", "Flora", "Galtee",
	"Glenisk", "Goodfellas", "Green Isle", "Heinz", "HB", "Jacob's",
	"Keeling's", "Kellogg's", "Kerry Gold", "Kerrygold", "KitKat", "Knorr",
	"Lidl", "Lucozade", "Lyons", "Manor Farm", "McCain", "McVitie's",
	"Miwadi", "Muller", "Nestlé", "O'Brien's", "Odlums", "Paddy's", "Pepsi",
	"Pringles", "Richmond", "Roma", "Siucra", "SuperValu", "Tayto", "Tesco",
	"Weetabix", "Yoplait",
}

// foldDiacritics strips combining marks so "Nestlé" and "Nestle" compare
// equal after normalization. The transform chain is stateful, so a fresh
// one is built per call.
func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// NormalizerConfig holds the tables the normalizer and extractors work
// from. Zero-value fields fall back to the built-in defaults, so tests can
// override a single table without restating the rest.
type NormalizerConfig struct {
	StopWords   []string
	KnownBrands []string
}

// Normalizer canonicalizes free-text product names and extracts structured
// hints (unit, size, brand) from them. All methods are pure and safe for
// concurrent use.
type Normalizer struct {
	stopWords     map[string]bool
	brandPatterns []brandPattern
}

type brandPattern struct {
	brand   string
	pattern *regexp.Regexp
}

// NewNormalizer creates a normalizer with the given configuration
func NewNormalizer(config NormalizerConfig) *Normalizer {
	stopWords := defaultStopWords
	if len(config.StopWords) > 0 {
		stopWords = make(map[string]bool, len(config.StopWords))
		for _, w := range config.StopWords {
			stopWords[strings.ToLower(w)] = true
		}
	}

	brands := config.KnownBrands
	if brands == nil {
		brands = defaultKnownBrands
	}
	patterns := make([]brandPattern, 0, len(brands))
	for _, brand := range brands {
		patterns = append(patterns, brandPattern{
			brand:   brand,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(brand) + `\b`),
		})
	}

	return &Normalizer{
		stopWords:     stopWords,
		brandPatterns: patterns,
	}
}

// Normalize canonicalizes a product name for comparison: lowercase, fold
// diacritics, rewrite unit words to short forms, glue quantities to their
// units ("1,5 Litres" -> "1.5l"), drop stop words, collapse whitespace.
// Empty input yields an empty string, never an error.
func (n *Normalizer) Normalize(name string) string {
	if name == "" {
		return ""
	}

	text := strings.ToLower(strings.TrimSpace(name))

	text = foldDiacritics(text)

	text = applyUnitAliases(text)

	text = quantityUnitRegex.ReplaceAllStringFunc(text, func(m string) string {
		groups := quantityUnitRegex.FindStringSubmatch(m)
		qty := strings.ReplaceAll(groups[1], ",", ".")
		unit := strings.ReplaceAll(strings.ToLower(groups[2]), " ", "")
		return qty + unit
	})

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, t := range tokens {
		if !n.stopWords[t] {
			kept = append(kept, t)
		}
	}

	text = strings.Join(kept, " ")
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(text, " "))
}

// ExtractUnitInfo pulls the leftmost (unit, size) pair out of a name, e.g.
// "Juice 1,5 Litres" -> ("l", 1.5). Returns ("", 0, false) when the name
// carries no recognizable quantity.
func (n *Normalizer) ExtractUnitInfo(name string) (unit string, size float64, ok bool) {
	if name == "" {
		return "", 0, false
	}

	text := applyUnitAliases(name)

	groups := quantityUnitRegex.FindStringSubmatch(text)
	if groups == nil {
		return "", 0, false
	}

	qty := strings.ReplaceAll(groups[1], ",", ".")
	unit = strings.ReplaceAll(strings.ToLower(groups[2]), " ", "")

	size, err := strconv.ParseFloat(qty, 64)
	if err != nil {
		return "", 0, false
	}

	return unit, size, true
}

// ExtractBrand guesses the brand within a product name. Known brands are
// tested first, in list order, so the first listed brand wins when a name
// mentions several. Otherwise the first token of the original name is
// accepted as a guess when it looks like a proper noun: leading uppercase,
// not a stop word, at least two characters, and not entirely uppercase
// (rejects acronyms and SKU-looking tokens). Returns "" when nothing
// qualifies.
func (n *Normalizer) ExtractBrand(name string) string {
	if name == "" {
		return ""
	}

	for _, bp := range n.brandPatterns {
		if bp.pattern.MatchString(name) {
			return bp.brand
		}
	}

	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return ""
	}

	candidate := tokens[0]
	runes := []rune(candidate)
	if len(runes) < 2 {
		return ""
	}
	if !unicode.IsUpper(runes[0]) {
		return ""
	}
	if n.stopWords[strings.ToLower(candidate)] {
		return ""
	}
	if candidate == strings.ToUpper(candidate) {
		return ""
	}

	return candidate
}

func applyUnitAliases(text string) string {
	for _, alias := range defaultUnitAliases {
		text = alias.pattern.ReplaceAllString(text, alias.replacement)
	}
	return text
}
