// Package extract parses markdown notes and decides whether they
// define a term. Parsing is structural only; no network or store
// access happens here.
package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/fingerprint"
	"github.com/termbase-labs/termbase-cli/internal/normalise"
)

var (
	headingRe  = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	wikilinkRe = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([a-zA-Z][a-zA-Z0-9_/-]*)`)
	blockEqRe  = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlineEqRe = regexp.MustCompile(`\$([^$\n]+)\$`)
)

// ParseNote parses raw markdown into a Note. The front-matter block is
// decoded and key-normalised, the body is cleaned through the markdown
// pipeline, and the structural features (sections, links, tags,
// equations) are pulled from the cleaned body. A malformed front-matter
// block is an error; the caller decides whether that fails the batch.
func ParseNote(path string, content []byte, modTime time.Time) (*domain.Note, error) {
	meta, body, err := splitFrontMatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing front matter of %s: %w", path, err)
	}

	cleaned, _ := normalise.CleanFrontMatter(meta)
	bodyRes := normalise.CleanMarkdown(body)
	body = bodyRes.Cleaned

	note := &domain.Note{
		Path:          path,
		FileName:      filepath.Base(path),
		FrontMatter:   cleaned,
		Content:       body,
		Sections:      extractSections(body),
		OutgoingLinks: extractLinks(body),
		Tags:          extractTags(body),
		Equations:     extractEquations(body),
		WordCount:     len(strings.Fields(body)),
		Fingerprint:   fingerprint.SumString(body),
		ModTime:       modTime,
	}
	note.Title = resolveTitle(note)
	return note, nil
}

// splitFrontMatter separates the leading "---" delimited YAML block
// from the body. A document without the block returns an empty map and
// the full content as body.
func splitFrontMatter(content string) (map[string]any, string, error) {
	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---\n") && trimmed != "---" {
		return map[string]any{}, content, nil
	}

	rest := strings.TrimPrefix(trimmed, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, "", fmt.Errorf("unterminated front matter block")
	}

	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return nil, "", fmt.Errorf("decoding front matter: %w", err)
	}
	return meta, body, nil
}

// extractSections walks the body top to bottom. Each heading starts a
// new section that accumulates lines until the next heading. Text
// before the first heading belongs to no section.
func extractSections(body string) []domain.Section {
	var sections []domain.Section
	var current *domain.Section
	var buf []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(buf, "\n"))
			sections = append(sections, *current)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(body, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &domain.Section{
				Heading: strings.TrimSpace(m[2]),
				Level:   len(m[1]),
			}
			continue
		}
		if current != nil {
			buf = append(buf, line)
		}
	}
	flush()
	return sections
}

// extractLinks returns the deduplicated wikilink targets, in document
// order. Only the target portion of [[target|alias]] is kept.
func extractLinks(body string) []string {
	var links []string
	seen := make(map[string]struct{})
	for _, m := range wikilinkRe.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}
	return links
}

// extractTags returns the deduplicated #tags, in document order.
func extractTags(body string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tags = append(tags, m[1])
	}
	return tags
}

// extractEquations collects block equations first, then inline ones.
// Inline matches shorter than three characters are skipped so currency
// amounts like "$5" are not treated as math.
func extractEquations(body string) []string {
	var eqs []string

	for _, m := range blockEqRe.FindAllStringSubmatch(body, -1) {
		eqs = append(eqs, strings.TrimSpace(m[1]))
	}

	// Blank out block regions so their delimiters cannot pair up as
	// inline matches.
	stripped := blockEqRe.ReplaceAllString(body, "")
	for _, m := range inlineEqRe.FindAllStringSubmatch(stripped, -1) {
		eq := strings.TrimSpace(m[1])
		if len(eq) > 2 {
			eqs = append(eqs, eq)
		}
	}
	return eqs
}

// resolveTitle prefers front-matter title/name, then the first H1,
// then the file name without extension.
func resolveTitle(note *domain.Note) string {
	for _, key := range []string{"title", "name"} {
		if v, ok := note.FrontMatter[key].(string); ok && v != "" {
			return v
		}
	}
	for _, sec := range note.Sections {
		if sec.Level == 1 {
			return sec.Heading
		}
	}
	base := note.FileName
	return strings.TrimSuffix(base, filepath.Ext(base))
}
