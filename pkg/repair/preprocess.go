package repair

import (
	"strings"
	"unicode/utf8"
)

// Preprocess strips the wrappers LLMs and log pipelines commonly put around
// JSON before the automaton sees it: markdown code fences, JSONP-style call
// wrappers, and one level of string escaping. It is pure and total; input
// that matches none of the shapes passes through unchanged.
//
// Preprocess runs once per batch repair. The incremental Scanner never
// preprocesses, since fences and wrappers cannot be recognized reliably at
// arbitrary chunk boundaries.
func Preprocess(text string) string {
	text = stripFence(text)
	text = stripJSONP(text)
	return unescapeWrapped(text)
}

// stripFence removes a leading triple-backtick code fence, including its
// language-tag line, taking content up to the closing fence or to end of
// input when the fence is never closed.
func stripFence(s string) string {
	i := skipSpace(s, 0)
	if !strings.HasPrefix(s[i:], "```") {
		return s
	}
	i += 3
	for i < len(s) && s[i] != '\n' {
		i++
	}
	if i < len(s) {
		i++
	}
	if j := strings.Index(s[i:], "```"); j >= 0 {
		return s[i : i+j]
	}
	return s[i:]
}

// stripJSONP unwraps callback({...}) style payloads. The wrapper is only
// recognized when the call's first argument token is actually { or [; the
// payload starts there, and one trailing ) (optionally preceded by
// whitespace, optionally followed by ;) is removed when present.
func stripJSONP(s string) string {
	i := skipSpace(s, 0)
	j := i
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if j == i && !isIdentStart(r) {
			return s
		}
		if !isIdentCont(r) {
			break
		}
		j += size
	}
	if j == i {
		return s
	}
	k := skipSpace(s, j)
	if k >= len(s) || s[k] != '(' {
		return s
	}
	k = skipSpace(s, k+1)
	if k >= len(s) || (s[k] != '{' && s[k] != '[') {
		return s
	}
	payload := s[k:]
	e := trimSpaceRight(payload, len(payload))
	if e > 0 && payload[e-1] == ';' {
		e = trimSpaceRight(payload, e-1)
	}
	if e > 0 && payload[e-1] == ')' {
		return payload[:e-1]
	}
	return payload
}

// unescapeWrapped undoes one level of string escaping when the input looks
// like an escaped JSON document, i.e. its first two non-whitespace
// characters are {\ or [\ .
func unescapeWrapped(s string) string {
	i := skipSpace(s, 0)
	if i >= len(s) || (s[i] != '{' && s[i] != '[') {
		return s
	}
	if i+1 >= len(s) || s[i+1] != '\\' {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for k := 0; k < len(s); k++ {
		if s[k] == '\\' && k+1 < len(s) {
			switch s[k+1] {
			case '"':
				b.WriteByte('"')
				k++
				continue
			case '\\':
				b.WriteByte('\\')
				k++
				continue
			case 'n':
				b.WriteByte('\n')
				k++
				continue
			case 'r':
				b.WriteByte('\r')
				k++
				continue
			case 't':
				b.WriteByte('\t')
				k++
				continue
			}
		}
		b.WriteByte(s[k])
	}
	return b.String()
}

// skipSpace returns the index of the first non-whitespace rune at or after i.
func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isSpace(r) {
			return i
		}
		i += size
	}
	return i
}

// trimSpaceRight returns the end index of s[:end] with trailing whitespace
// removed.
func trimSpaceRight(s string, end int) int {
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isSpace(r) {
			return end
		}
		end -= size
	}
	return end
}
