package domain

import (
	"strings"
	"time"
)

// Note is a parsed markdown note: front-matter plus the structural
// features the extractor pulls from the body.
type Note struct {
	// Path is the absolute file path of the note.
	Path string

	// FileName is the base name of the file.
	FileName string

	// Title comes from front-matter title/name, else the first H1.
	Title string

	// FrontMatter is the decoded metadata block. Keys are normalised
	// to lowercase snake_case.
	FrontMatter map[string]any

	// Content is the note body after the front-matter block.
	Content string

	// Sections maps each heading to the text accumulated until the
	// next heading. Text before the first heading is not a section.
	Sections []Section

	// OutgoingLinks are the deduplicated [[wikilink]] targets.
	OutgoingLinks []string

	// Tags are the deduplicated #tags.
	Tags []string

	// Equations are the block and inline math expressions.
	Equations []string

	// WordCount is the number of words in the body.
	WordCount int

	// Fingerprint is the content hash of the body.
	Fingerprint string

	// ModTime is the file's modification time, zero when the note was
	// not read from disk.
	ModTime time.Time
}

// Section is one heading-delimited region of a note body.
// Sections keep document order; heading lookups are case-insensitive
// substring matches over Heading.
type Section struct {
	// Heading is the heading text without marker characters.
	Heading string

	// Level is the heading depth, 1-6.
	Level int

	// Body is the trimmed text until the next heading.
	Body string
}

// FindSection returns the body of the first section whose heading
// contains any of the given names, case-insensitively. Candidates are
// tried in order, so more specific names should come first. The second
// return is false when no heading matches.
func (n *Note) FindSection(names ...string) (string, bool) {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, sec := range n.Sections {
			if strings.Contains(strings.ToLower(sec.Heading), lower) {
				return sec.Body, true
			}
		}
	}
	return "", false
}
