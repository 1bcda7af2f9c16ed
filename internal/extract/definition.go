package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// axiomMarkerRe matches the line prefixes that start a new axiom:
// "1.", "Axiom II:", "-" and "*".
var axiomMarkerRe = regexp.MustCompile(`^\s*(?:\d+\.|Axiom\s+\S+:|-|\*)\s*`)

// ExtractDefinition builds a Definition from a parsed note. Identity
// fields prefer front-matter over the body; narrative fields come from
// the first body section whose heading matches a candidate list. A note
// that does not classify as a definition returns ErrNotDefinition.
func ExtractDefinition(note *domain.Note) (*domain.Definition, error) {
	if Classify(note) == domain.SignalNo {
		return nil, fmt.Errorf("%s: %w", note.Path, domain.ErrNotDefinition)
	}

	def := &domain.Definition{
		DefinitionID: metaString(note, "definition_id", "id"),
		Symbol:       metaString(note, "symbol"),
		Name:         metaString(note, "name", "title"),
		Aliases:      metaStrings(note, "aliases"),
		DomainType:   metaString(note, "domain", "domain_type"),
		Layer:        metaString(note, "layer"),

		RelatedTerms: note.OutgoingLinks,
		Tags:         mergeUnique(note.Tags, metaStrings(note, "tags")),

		SourceKind: domain.SourceMarkdown,
		SourceFile: note.Path,
		Status:     domain.StatusDraft,
	}

	if def.Name == "" {
		def.Name = note.Title
	}
	if s := metaString(note, "status"); s != "" {
		def.Status = domain.DefinitionStatus(strings.ToLower(s))
	}
	if c := metaString(note, "confidence"); c != "" {
		if conf, ok := domain.ParseConfidence(strings.ToLower(c)); ok {
			def.Confidence = conf
		}
	}

	if body, ok := note.FindSection("core definition", "canonical definition", "definition"); ok {
		def.CanonicalDefinition = body
	}
	if body, ok := note.FindSection("ontological category", "ontology"); ok {
		def.OntologicalCategory = body
	}
	if body, ok := note.FindSection("primary forms", "mathematical form", "mathematical structure"); ok {
		def.MathematicalPrimary = body
	}
	if body, ok := note.FindSection("dynamical equation", "dynamics"); ok {
		def.MathematicalDynamic = body
	}
	if body, ok := note.FindSection("thresholds", "threshold", "stability"); ok {
		def.Thresholds = body
	}
	if body, ok := note.FindSection("operationalization", "operationalisation", "measurement"); ok {
		def.Operationalisation = body
	}
	if body, ok := note.FindSection("failure modes", "failure"); ok {
		def.FailureModes = body
	}
	if body, ok := note.FindSection("external comparison", "external reference"); ok {
		def.ExternalComparison = body
	}
	if body, ok := note.FindSection("notes", "examples"); ok {
		def.Notes = body
	}

	if body, ok := note.FindSection("axioms", "axiom"); ok {
		def.Axioms = SplitAxioms(body)
	}
	def.DomainInterpretations = DomainInterpretations(note)

	if body, ok := note.FindSection("integration map", "integration"); ok {
		im := map[string]any{"raw": body}
		if links := extractLinks(body); len(links) > 0 {
			im["links"] = links
		}
		def.IntegrationMap = im
	}

	return def, nil
}

// SplitAxioms splits section text into individual axiom statements.
// A line starting with a numbering or bullet marker begins a new axiom;
// following unmarked lines are folded into the current one.
func SplitAxioms(body string) []string {
	var axioms []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		if s := strings.TrimSpace(strings.Join(current, " ")); s != "" {
			axioms = append(axioms, s)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(body, "\n") {
		if axiomMarkerRe.MatchString(line) && strings.TrimSpace(line) != "" {
			flush()
			current = append(current, axiomMarkerRe.ReplaceAllString(line, ""))
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" && len(current) > 0 {
			current = append(current, trimmed)
		}
	}
	flush()
	return axioms
}

// DomainInterpretations builds the per-domain map from the sections
// following the "Domain Interpretations" heading. Level 2-4 headings
// nested under it are domain names; a heading at or above the parent
// level ends the region.
func DomainInterpretations(note *domain.Note) map[string]string {
	parent := -1
	for i, sec := range note.Sections {
		if strings.Contains(strings.ToLower(sec.Heading), "domain interpretation") {
			parent = i
			break
		}
	}
	if parent < 0 {
		return nil
	}

	interps := make(map[string]string)
	level := note.Sections[parent].Level
	for _, sec := range note.Sections[parent+1:] {
		if sec.Level <= level {
			break
		}
		if sec.Level >= 2 && sec.Level <= 4 && sec.Body != "" {
			interps[sec.Heading] = sec.Body
		}
	}
	if len(interps) == 0 {
		return nil
	}
	return interps
}

// metaString returns the first non-empty string value among the given
// front-matter keys.
func metaString(note *domain.Note, keys ...string) string {
	for _, key := range keys {
		switch v := note.FrontMatter[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case int:
			return fmt.Sprintf("%d", v)
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
		}
	}
	return ""
}

// metaStrings returns a front-matter list value as strings. A bare
// string value becomes a one-element list.
func metaStrings(note *domain.Note, key string) []string {
	switch v := note.FrontMatter[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	}
	return nil
}

func mergeUnique(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
