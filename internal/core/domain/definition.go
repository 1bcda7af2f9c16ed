package domain

import "time"

// Definition is the canonical domain entity extracted from notes.
// Identity fields come from front-matter when present; narrative fields
// come from the first matching body section.
type Definition struct {
	// ID is the unique row identifier.
	ID string

	// DefinitionID is the stable human-assigned identifier
	// (e.g. "def-coherence"). Unique when set.
	DefinitionID string

	// Symbol is the short symbol, e.g. "C" or "χ". At most 50 chars.
	Symbol string

	// Name is the term being defined, e.g. "Coherence".
	Name string

	// Aliases are alternative names for the term.
	Aliases []string

	// CanonicalDefinition is the one-sentence canonical statement.
	CanonicalDefinition string

	// OntologicalCategory, DomainType and Layer classify the term.
	OntologicalCategory string
	DomainType          string
	Layer               string

	// Axioms are the individual axiom statements.
	Axioms []string

	// MathematicalPrimary holds the primary mathematical forms.
	MathematicalPrimary string

	// MathematicalDynamic holds the dynamical equations.
	MathematicalDynamic string

	// Thresholds describes critical values and stability conditions.
	Thresholds string

	// DomainInterpretations maps a domain name to the term's meaning
	// within that domain.
	DomainInterpretations map[string]string

	// Operationalisation describes how the quantity is measured.
	Operationalisation string

	// FailureModes describes what "broken" looks like.
	FailureModes string

	// IntegrationMap records where the term appears elsewhere.
	IntegrationMap map[string]any

	// ExternalComparison contrasts the term with mainstream usage.
	ExternalComparison string

	// Notes holds additional free-text notes and examples.
	Notes string

	// RelatedTerms are outgoing wikilink targets from the note.
	RelatedTerms []string

	// Tags are the #tags found in the note.
	Tags []string

	// SourceKind, SourceFile and SourceURL attribute the definition
	// to its origin.
	SourceKind SourceKind
	SourceFile string
	SourceURL  string

	// Status is the lifecycle status. Defaults to draft; unknown
	// values are preserved as-is and flagged by validation.
	Status DefinitionStatus

	// Confidence expresses how much we trust this definition.
	Confidence Confidence

	// CreatedAt and UpdatedAt track row lifetimes.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefinitionSignal is the outcome of the definition classifier.
// Callers branch on it deterministically instead of truthiness checks.
type DefinitionSignal int

const (
	// SignalNo means the note is not a definition.
	SignalNo DefinitionSignal = iota

	// SignalAmbiguous means only body headings suggest a definition.
	SignalAmbiguous

	// SignalDefinite means front-matter declares the note a definition.
	SignalDefinite
)

// String returns the signal name for logging.
func (s DefinitionSignal) String() string {
	switch s {
	case SignalDefinite:
		return "definite"
	case SignalAmbiguous:
		return "ambiguous"
	default:
		return "no"
	}
}
