package repair

import "unicode"

// Character classes used by the automaton. Each codepoint maps to a bit set;
// ASCII lookups hit a table built once at init, everything else falls back to
// a small range check. The table is read-only after init, so concurrent
// readers need no synchronization.
const (
	classSpace uint8 = 1 << iota // whitespace, ASCII or Unicode space variant
	classQuote                   // recognized quote glyph
	classDigit
	classIdentStart // may begin an identifier (unquoted key, wrapper name)
	classIdentCont  // may continue an identifier
	classLiteral    // may begin a true/false/null style literal
	classToken      // may continue a literal/number token
)

var asciiClass [128]uint8

func init() {
	for _, c := range " \t\n\r" {
		asciiClass[c] |= classSpace
	}
	asciiClass['"'] |= classQuote
	asciiClass['\''] |= classQuote
	for c := '0'; c <= '9'; c++ {
		asciiClass[c] |= classDigit | classIdentCont | classToken
	}
	for c := 'a'; c <= 'z'; c++ {
		asciiClass[c] |= classIdentStart | classIdentCont | classToken
	}
	for c := 'A'; c <= 'Z'; c++ {
		asciiClass[c] |= classIdentStart | classIdentCont | classToken
	}
	asciiClass['_'] |= classIdentStart | classIdentCont
	asciiClass['$'] |= classIdentStart | classIdentCont
	for _, c := range "tfnTFN" {
		asciiClass[c] |= classLiteral
	}
	for _, c := range ".+-" {
		asciiClass[c] |= classToken
	}
}

func class(r rune) uint8 {
	if r < 128 {
		return asciiClass[r]
	}
	switch {
	case r == 0x00A0, r >= 0x2000 && r <= 0x200A, r == 0x202F, r == 0x205F, r == 0x3000:
		return classSpace
	case r == '‘', r == '’', r == '“', r == '”':
		return classQuote
	case unicode.IsLetter(r):
		return classIdentStart | classIdentCont | classToken
	}
	return 0
}

func isSpace(r rune) bool      { return class(r)&classSpace != 0 }
func isQuote(r rune) bool      { return class(r)&classQuote != 0 }
func isDigit(r rune) bool      { return class(r)&classDigit != 0 }
func isIdentStart(r rune) bool { return class(r)&classIdentStart != 0 }
func isIdentCont(r rune) bool  { return class(r)&classIdentCont != 0 }
func isTokenChar(r rune) bool  { return class(r)&classToken != 0 }

// isValueStart reports whether r can begin a literal or number token when a
// value is acceptable at the current position.
func isValueStart(r rune) bool {
	return isDigit(r) || r == '-' || r == '+' || class(r)&classLiteral != 0
}

// isLineTerm reports whether r terminates a line comment.
func isLineTerm(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
