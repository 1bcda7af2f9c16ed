package normalise

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Math regions are protected from every other rewrite.
	mathBlockRe  = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	mathInlineRe = regexp.MustCompile(`\$[^$\n]+\$`)

	// Wikilink openings; a token is broken when no "]]" follows it.
	wikiOpenRe = regexp.MustCompile(`\[\[[^\[\]\n]+`)

	// Heading markers get exactly one space before the text.
	headingSpaceRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]*(\S.*)$`)

	// All bullet markers normalise to "- ".
	bulletRe = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
)

// CleanMarkdown cleans markdown content while preserving formatting.
// Fenced math regions (inline $...$ and block $$...$$) are substituted
// with placeholders before any rewrite runs and restored verbatim
// afterwards. Unterminated [[wikilink tokens are closed, heading
// spacing and bullet markers are normalised, then the text pipeline
// runs over the result.
func CleanMarkdown(content string) Result {
	res := Result{Original: content, Cleaned: content}

	protected, regions := protectMath(res.Cleaned)
	out := protected

	if fixed := closeWikilinks(out); fixed != out {
		out = fixed
		res.Modifications = append(res.Modifications, ModFixedLink)
	}

	if normalised := headingSpaceRe.ReplaceAllString(out, "$1 $2"); normalised != out {
		out = normalised
		res.Modifications = append(res.Modifications, ModHeadings)
	}

	if normalised := bulletRe.ReplaceAllString(out, "$1- "); normalised != out {
		out = normalised
		res.Modifications = append(res.Modifications, ModBullets)
	}

	text := CleanText(out, false)
	out = text.Cleaned
	res.Modifications = append(res.Modifications, text.Modifications...)

	res.Cleaned = restoreMath(out, regions)
	res.Modified = len(res.Modifications) > 0
	return res
}

// protectMath replaces math regions with placeholders. Block equations
// are captured before inline ones so "$$" pairs are never split.
func protectMath(content string) (string, []string) {
	var regions []string
	save := func(match string) string {
		regions = append(regions, match)
		return fmt.Sprintf("\x00math%d\x00", len(regions)-1)
	}

	content = mathBlockRe.ReplaceAllStringFunc(content, save)
	content = mathInlineRe.ReplaceAllStringFunc(content, save)
	return content, regions
}

// restoreMath puts protected regions back verbatim.
func restoreMath(content string, regions []string) string {
	for i, region := range regions {
		content = strings.Replace(content, fmt.Sprintf("\x00math%d\x00", i), region, 1)
	}
	return content
}

// closeWikilinks appends the missing "]]" to unterminated wikilink
// tokens.
func closeWikilinks(content string) string {
	matches := wikiOpenRe.FindAllStringIndex(content, -1)
	if matches == nil {
		return content
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(content[last:m[1]])
		if !strings.HasPrefix(content[m[1]:], "]]") {
			b.WriteString("]]")
		}
		last = m[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// CleanFrontMatter normalises a decoded front-matter map: keys become
// lowercase snake_case, string values and string list members go
// through the text pipeline.
func CleanFrontMatter(meta map[string]any) (map[string]any, []string) {
	cleaned := make(map[string]any, len(meta))
	var mods []string

	for key, value := range meta {
		cleanKey := strings.ToLower(strings.TrimSpace(key))
		cleanKey = strings.ReplaceAll(cleanKey, " ", "_")
		cleanKey = strings.ReplaceAll(cleanKey, "-", "_")
		if cleanKey != key {
			mods = append(mods, fmt.Sprintf("normalised_key:%s", key))
		}

		switch v := value.(type) {
		case string:
			res := CleanText(v, false)
			cleaned[cleanKey] = res.Cleaned
			mods = append(mods, res.Modifications...)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					items[i] = CleanText(s, false).Cleaned
				} else {
					items[i] = item
				}
			}
			cleaned[cleanKey] = items
		default:
			cleaned[cleanKey] = value
		}
	}

	return cleaned, mods
}
