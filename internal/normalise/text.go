package normalise

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of cleaning a text value. The original is
// preserved alongside the cleaned form and the list of transformations
// actually applied.
type Result struct {
	Original      string
	Cleaned       string
	Modified      bool
	Modifications []string
	Warnings      []string
}

// Modification tags recorded by the text pipeline.
const (
	ModZeroWidth   = "removed_zero_width"
	ModHTMLEntity  = "decoded_html_entities"
	ModUnicode     = "normalised_unicode"
	ModSmartPunct  = "folded_smart_punctuation"
	ModWhitespace  = "collapsed_whitespace"
	ModNewlines    = "collapsed_newlines"
	ModTrimmed     = "trimmed_whitespace"
	ModFixedLink   = "fixed_wikilink"
	ModHeadings    = "normalised_headings"
	ModBullets     = "normalised_bullets"
	ModEmptyString = "empty_string"
	ModNumeric     = "converted_to_number"
	ModNaN         = "nan_to_empty"
)

var (
	// Zero-width and invisible code points stripped from all text:
	// ZWSP, ZWNJ, ZWJ, LRM, RLM, BOM and soft hyphen.
	zeroWidthRe = regexp.MustCompile("[\u200b\u200c\u200d\u200e\u200f\ufeff\u00ad]")

	// Runs of horizontal whitespace collapse to a single space.
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)

	// Three or more consecutive newlines collapse to exactly two.
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// smartPunct folds "smart" punctuation to ASCII equivalents.
// Applied only in aggressive mode.
var smartPunct = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"–", "-", // en dash
	"—", "--", // em dash
	"…", "...", // ellipsis
)

// CleanText runs the text pipeline. Each step executes, and records its
// tag, only when it actually changes the value. With aggressive set,
// smart punctuation is folded to ASCII as well.
func CleanText(text string, aggressive bool) Result {
	res := Result{Original: text, Cleaned: text}

	apply := func(tag string, fn func(string) string) {
		out := fn(res.Cleaned)
		if out != res.Cleaned {
			res.Cleaned = out
			res.Modifications = append(res.Modifications, tag)
		}
	}

	apply(ModZeroWidth, func(s string) string {
		return zeroWidthRe.ReplaceAllString(s, "")
	})

	apply(ModHTMLEntity, func(s string) string {
		// Only attempt a decode when an entity is plausible.
		if !strings.Contains(s, "&") || !strings.Contains(s, ";") {
			return s
		}
		return html.UnescapeString(s)
	})

	apply(ModUnicode, norm.NFC.String)

	if aggressive {
		apply(ModSmartPunct, smartPunct.Replace)
	}

	apply(ModWhitespace, func(s string) string {
		return multiSpaceRe.ReplaceAllString(s, " ")
	})

	apply(ModNewlines, func(s string) string {
		return multiNewlineRe.ReplaceAllString(s, "\n\n")
	})

	apply(ModTrimmed, strings.TrimSpace)

	res.Modified = len(res.Modifications) > 0
	return res
}
