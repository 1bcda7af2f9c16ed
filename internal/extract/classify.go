package extract

import (
	"strings"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// definitionHeadings are the body headings that mark a note as a
// probable definition when front-matter is silent.
var definitionHeadings = []string{
	"core definition",
	"canonical definition",
	"definition",
}

// Classify decides whether a note defines a term. Front-matter that
// declares type "definition" or carries a symbol key is a definite
// signal; a recognised definition heading in the body alone is only
// an ambiguous one.
func Classify(note *domain.Note) domain.DefinitionSignal {
	if t, ok := note.FrontMatter["type"].(string); ok &&
		strings.EqualFold(strings.TrimSpace(t), "definition") {
		return domain.SignalDefinite
	}
	if _, ok := note.FrontMatter["symbol"]; ok {
		return domain.SignalDefinite
	}

	if _, ok := note.FindSection(definitionHeadings...); ok {
		return domain.SignalAmbiguous
	}
	return domain.SignalNo
}
