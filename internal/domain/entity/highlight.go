package entity

import "strings"

// Highlight delimiters mark a substring inside a title, bullet, or body as
// a "highlight" (a named entity, number, or key term) that a renderer may
// style. The core treats the wrapped text as opaque and only guarantees it
// round-trips through every stage untouched.
const (
	HighlightOpen  = "⟦"
	HighlightClose = "⟧"
)

// Highlight wraps text in the highlight delimiter pair. A writer LLM is
// instructed to emit this convention directly; Highlight exists for tests
// and for any stage that needs to construct highlighted text programmatically.
func Highlight(text string) string {
	return HighlightOpen + text + HighlightClose
}

// TextualRef is one highlighted span found inside a larger string, with its
// byte offsets in the original (delimited) text.
type TextualRef struct {
	Text  string
	Start int
	End   int
}

// ExtractHighlights scans s for HighlightOpen/HighlightClose pairs and
// returns each span found, in order. Unterminated opens are ignored rather
// than erroring — validation of LLM output treats a stray delimiter as a
// formatting slip, not a hard failure.
func ExtractHighlights(s string) []TextualRef {
	var refs []TextualRef
	pos := 0
	for {
		openIdx := strings.Index(s[pos:], HighlightOpen)
		if openIdx == -1 {
			break
		}
		openIdx += pos
		contentStart := openIdx + len(HighlightOpen)
		closeIdx := strings.Index(s[contentStart:], HighlightClose)
		if closeIdx == -1 {
			break
		}
		closeIdx += contentStart
		refs = append(refs, TextualRef{
			Text:  s[contentStart:closeIdx],
			Start: openIdx,
			End:   closeIdx + len(HighlightClose),
		})
		pos = closeIdx + len(HighlightClose)
	}
	return refs
}

// StripHighlights removes the delimiters, leaving the underlying text in
// place. Used when computing word counts and when comparing content for
// the Publisher's material-change detection (whitespace- and
// markup-insensitive comparison is done on the stripped form).
func StripHighlights(s string) string {
	s = strings.ReplaceAll(s, HighlightOpen, "")
	s = strings.ReplaceAll(s, HighlightClose, "")
	return s
}

// WordCount counts whitespace-separated words after stripping highlight
// delimiters, used to validate the Synthesizer's 300-400 word body fields.
func WordCount(s string) int {
	return len(strings.Fields(StripHighlights(s)))
}
