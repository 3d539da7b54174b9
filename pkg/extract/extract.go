// Package extract locates JSON spans inside free-form prose.
//
// Model output rarely arrives as a bare document: the JSON sits between
// apologies, explanations and markdown. This package finds the balanced
// brace/bracket spans in such text so they can be parsed, or handed to the
// repair automaton when they are truncated. The scanner is string- and
// escape-aware, so braces inside string values never confuse the depth
// tracking, and a span whose closers are missing runs to end of input.
package extract

// Span is a half-open byte range [Start, End) of one JSON candidate inside
// the scanned text.
type Span struct {
	Start int
	End   int
}

// First returns the first JSON object or array found in text, or ("",
// false) when text contains no opening brace or bracket.
func First(text string) (string, bool) {
	sp, ok := next(text, 0)
	if !ok {
		return "", false
	}
	return text[sp.Start:sp.End], true
}

// Spans returns every JSON candidate in text, left to right,
// non-overlapping. Scanning resumes after each span, so prose between
// documents is skipped.
func Spans(text string) []Span {
	var spans []Span
	for i := 0; i <= len(text); {
		sp, ok := next(text, i)
		if !ok {
			break
		}
		spans = append(spans, sp)
		i = sp.End
	}
	return spans
}

// next scans for the first balanced span at or after from. An unbalanced
// span extends to the end of the text.
func next(text string, from int) (Span, bool) {
	start := -1
	for i := from; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return Span{}, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth <= 0 {
				return Span{Start: start, End: i + 1}, true
			}
		}
	}
	return Span{Start: start, End: len(text)}, true
}
