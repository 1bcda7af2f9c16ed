package normalise

import (
	"fmt"
	"regexp"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// ValidationResult is the outcome of a pre-ingestion validation.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// maxSymbolLen bounds the symbol column.
const maxSymbolLen = 50

// identifierRe matches safe stable identifiers.
var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateDefinition checks a definition before it is stored. A missing
// name or an over-long symbol is an error; a suspicious identifier or
// an unrecognised status is only a warning; the value is preserved.
func ValidateDefinition(def *domain.Definition) ValidationResult {
	var res ValidationResult

	if def.Name == "" {
		res.Errors = append(res.Errors, "missing required field: name")
	}

	if n := len(def.Symbol); n > maxSymbolLen {
		res.Errors = append(res.Errors,
			fmt.Sprintf("symbol too long: %d chars (max %d)", n, maxSymbolLen))
	}

	if def.DefinitionID != "" && !identifierRe.MatchString(def.DefinitionID) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("definition id contains special characters: %s", def.DefinitionID))
	}

	if def.Status != "" && !def.Status.Known() {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("unknown status: %s", def.Status))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
