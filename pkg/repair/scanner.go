package repair

import "unicode/utf8"

// lexical modes of the automaton. Exactly one is active at a time; the
// wrapper-call and comment-opener ambiguities are tracked by counters and
// pending flags so that no decision ever needs lookahead beyond the
// current character.
type mode uint8

const (
	modeStructural mode = iota
	modeString
	modeKey // accumulating an unquoted object key
	modeValue
	modeLineComment
	modeBlockComment
)

// scope tags on the context stack, innermost last.
type scope uint8

const (
	scopeObject scope = iota
	scopeArray
	scopeString
)

type heldKind uint8

const (
	heldNone heldKind = iota
	heldComma
	heldCloseQuote
)

// Scanner is the incremental repair engine. It consumes arbitrarily sized
// chunks, returns repaired output as soon as it can no longer be retracted,
// and finalizes on End. A zero-delay retraction model is replaced by
// deferred emission: anything that a later character could still rewrite (a
// trailing comma, a just-written closing quote, an in-progress token, a
// backslash awaiting its escaped character, a comment-opener slash, an
// ellipsis run) is held outside the committed output until its fate is
// known.
//
// A Scanner serves one logical stream and is not safe for concurrent use;
// callers must serialize Push, End, Snapshot and Reset. Independent
// instances are fully independent.
type Scanner struct {
	sink     Sink
	wrappers map[string]struct{}

	out     []byte // committed output, never rewritten past flushed
	flushed int    // bytes already returned by Push
	carry   []byte // incomplete UTF-8 sequence at a chunk boundary

	stack []scope

	mode     mode
	quote    rune // opener of the current string
	escaped  bool // backslash held inside a string
	keyStr   bool // current string opened in key position
	token    []byte
	tokenPos int

	held     []byte
	heldKind heldKind

	expectKey   bool // inside an object, between { or , and the key
	colonOwed   bool // key written, colon not yet
	expectValue bool // colon written, value not yet
	justClosed  bool // a string just closed (concatenation window)
	valueDone   bool // a sibling value completed with no comma since

	parenDepth int   // open parens inside wrapper calls
	wrapMarks  []int // paren depths owned by wrapper calls, innermost last

	slashHeld bool
	starHeld  bool // '*' pending inside a block comment
	dots      int  // pending '.' run (ellipsis candidate)

	rootCount int  // top-level values, counted when they start
	wrapped   bool // '[' prepended for multi-root input

	pos int // global byte offset in the input stream
}

// NewScanner returns a Scanner ready to accept chunks.
func NewScanner(opts ...Option) *Scanner {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return newScanner(&cfg)
}

func newScanner(cfg *config) *Scanner {
	s := &Scanner{sink: cfg.sink, wrappers: make(map[string]struct{}, len(defaultWrappers)+len(cfg.wrappers))}
	for _, name := range defaultWrappers {
		s.wrappers[name] = struct{}{}
	}
	for _, name := range cfg.wrappers {
		s.wrappers[name] = struct{}{}
	}
	return s
}

// Push consumes one chunk and returns the repaired output that became final
// during it. The empty string is a valid return; held state simply carried
// over to the next call.
func (s *Scanner) Push(chunk string) string {
	var buf []byte
	if len(s.carry) > 0 {
		buf = append(s.carry, chunk...)
		s.carry = nil
	} else {
		buf = []byte(chunk)
	}
	for len(buf) > 0 {
		if !utf8.FullRune(buf) {
			// Incomplete sequence at the chunk edge; wait for more bytes.
			s.carry = append(s.carry, buf...)
			break
		}
		r, size := utf8.DecodeRune(buf)
		s.step(r, buf[:size])
		s.pos += size
		buf = buf[size:]
	}
	// Output before a second top-level value is not final: a later chunk
	// could still start another root, which prepends the array wrap at
	// offset zero. Until then everything stays buffered; Snapshot gives
	// callers the speculative view.
	if s.rootCount < 2 {
		return ""
	}
	return s.drain()
}

// End finalizes the stream against live state: pending tokens are
// completed, open strings closed, owed colons and values filled in, one
// trailing comma stripped, and the remaining context stack drained
// innermost-first. The bytes of an incomplete UTF-8 sequence still carried
// from the last chunk are dropped; emitting them would put invalid encoding
// into otherwise valid output. The closing fragment is returned; state is
// kept (call Reset to reuse the instance).
func (s *Scanner) End() string {
	s.finalize()
	return s.drain()
}

// Snapshot returns what End would produce right now without disturbing the
// live stream: the finalize sequence runs against a deep copy.
func (s *Scanner) Snapshot() string {
	clone := *s
	clone.sink = nil
	clone.out = append([]byte(nil), s.out...)
	clone.carry = append([]byte(nil), s.carry...)
	clone.stack = append([]scope(nil), s.stack...)
	clone.token = append([]byte(nil), s.token...)
	clone.held = append([]byte(nil), s.held...)
	clone.wrapMarks = append([]int(nil), s.wrapMarks...)
	return clone.End()
}

// Reset zeroes all stream state for reuse, keeping the configured sink and
// wrapper set.
func (s *Scanner) Reset() {
	*s = Scanner{sink: s.sink, wrappers: s.wrappers}
}

// MultiRoot reports whether more than one top-level value has started, i.e.
// whether the finished result is (or would have been) array-wrapped.
func (s *Scanner) MultiRoot() bool { return s.rootCount > 1 }

func (s *Scanner) drain() string {
	out := s.out[s.flushed:]
	s.flushed = len(s.out)
	return string(out)
}

func (s *Scanner) event(kind Kind, pos int, note string) {
	if s.sink != nil {
		s.sink(Event{Kind: kind, Pos: pos, Note: note})
	}
}

func (s *Scanner) emit(b byte)        { s.out = append(s.out, b) }
func (s *Scanner) emitStr(str string) { s.out = append(s.out, str...) }

func (s *Scanner) top() (scope, bool) {
	if len(s.stack) == 0 {
		return 0, false
	}
	return s.stack[len(s.stack)-1], true
}

func (s *Scanner) inObject() bool {
	t, ok := s.top()
	return ok && t == scopeObject
}

func (s *Scanner) flushHeld() {
	if len(s.held) > 0 {
		s.out = append(s.out, s.held...)
		s.held = s.held[:0]
	}
	s.heldKind = heldNone
}

// dropTrailingComma discards a held comma together with the whitespace held
// behind it; any other held output is committed.
func (s *Scanner) dropTrailingComma() {
	if s.heldKind == heldComma {
		s.held = s.held[:0]
		s.heldKind = heldNone
		return
	}
	s.flushHeld()
}

func (s *Scanner) isWrapper(name string) bool {
	_, ok := s.wrappers[name]
	return ok
}

// step dispatches one rune according to the active lexical mode.
func (s *Scanner) step(r rune, raw []byte) {
	switch s.mode {
	case modeLineComment:
		if isLineTerm(r) {
			// The terminator survives as a normalized space. U+2028/U+2029
			// terminate comments without being whitespace, so the raw rune
			// cannot be re-dispatched.
			s.mode = modeStructural
			s.structural(' ', []byte{' '})
		}
		return
	case modeBlockComment:
		if s.starHeld {
			s.starHeld = false
			if r == '/' {
				s.mode = modeStructural
				return
			}
		}
		if r == '*' {
			s.starHeld = true
		}
		return
	case modeString:
		s.stringChar(r, raw)
		return
	case modeKey:
		if isIdentCont(r) {
			s.token = append(s.token, raw...)
			return
		}
		if r == '(' && s.isWrapper(string(s.token)) {
			s.beginWrapper()
			return
		}
		s.finishKey()
	case modeValue:
		if isTokenChar(r) {
			s.token = append(s.token, raw...)
			return
		}
		if r == '(' && s.isWrapper(string(s.token)) {
			s.beginWrapper()
			return
		}
		s.finishValue()
	}
	s.structural(r, raw)
}

func (s *Scanner) beginWrapper() {
	s.token = s.token[:0]
	s.mode = modeStructural
	s.parenDepth++
	s.wrapMarks = append(s.wrapMarks, s.parenDepth)
}

// finishKey flushes an accumulated unquoted key as a quoted string and
// marks the colon owed.
func (s *Scanner) finishKey() {
	s.event(KindInsertedQuote, s.tokenPos, "quoted unquoted key "+string(s.token))
	s.emit('"')
	s.out = append(s.out, s.token...)
	s.emit('"')
	s.token = s.token[:0]
	s.colonOwed = true
	s.mode = modeStructural
}

// finishValue flushes an accumulated literal or number, completing it via
// the prefix table when it matches.
func (s *Scanner) finishValue() {
	tok := string(s.token)
	s.token = s.token[:0]
	s.mode = modeStructural
	if full, ok := literalCompletions[tok]; ok {
		if full != tok {
			s.event(KindFixedLiteral, s.tokenPos, "completed literal "+tok+" as "+full)
		}
		s.emitStr(full)
	} else {
		s.emitStr(tok)
	}
	s.valueDone = true
	s.expectValue = false
}

// stringChar handles one rune inside a string. Content is copied verbatim;
// a backslash is held until its escaped character arrives so that a lone
// trailing backslash can be dropped at end of input.
func (s *Scanner) stringChar(r rune, raw []byte) {
	if s.escaped {
		s.emit('\\')
		s.out = append(s.out, raw...)
		s.escaped = false
		return
	}
	if r == '\\' {
		s.escaped = true
		return
	}
	closing := r == '"'
	if s.quote != '"' {
		closing = isQuote(r)
	}
	if closing {
		s.closeString()
		return
	}
	s.out = append(s.out, raw...)
}

func (s *Scanner) closeString() {
	s.stack = s.stack[:len(s.stack)-1]
	s.mode = modeStructural
	s.held = append(s.held[:0], '"')
	s.heldKind = heldCloseQuote
	s.justClosed = true
	if s.keyStr {
		s.keyStr = false
		s.colonOwed = true
		return
	}
	s.valueDone = true
	s.expectValue = false
}

// beginValue prepares the committed output for a new value or container:
// held output is flushed, an owed colon or missing comma is inserted, and
// at depth zero the root counter (and the multi-root array wrap) advances.
func (s *Scanner) beginValue() {
	s.flushHeld()
	s.justClosed = false
	if s.colonOwed && s.inObject() {
		s.emit(':')
		s.colonOwed = false
	}
	if s.valueDone {
		s.event(KindMissingComma, s.pos, "inserted comma between values")
		s.emit(',')
		s.valueDone = false
		if s.inObject() {
			s.expectKey = true
		}
	}
	if len(s.stack) == 0 {
		s.rootCount++
		if s.rootCount == 2 {
			s.out = append([]byte{'['}, s.out...)
			s.wrapped = true
		}
	}
	s.expectValue = false
}

// structural handles one rune in plain structural mode.
func (s *Scanner) structural(r rune, raw []byte) {
	if s.slashHeld {
		s.slashHeld = false
		switch r {
		case '/':
			s.mode = modeLineComment
			return
		case '*':
			s.mode = modeBlockComment
			return
		}
		s.flushHeld()
		s.justClosed = false
		s.emit('/')
	}
	if r == '/' {
		s.slashHeld = true
		return
	}
	if r == '.' {
		s.dots++
		if s.dots == 3 {
			s.dots = 0 // ellipsis discarded
		}
		return
	}
	if s.dots > 0 {
		n := s.dots
		s.dots = 0
		if isDigit(r) {
			// Dots turned out to start a number such as .5
			s.beginValue()
			s.mode = modeValue
			s.tokenPos = s.pos - n
			s.token = s.token[:0]
			for ; n > 0; n-- {
				s.token = append(s.token, '.')
			}
			s.token = append(s.token, raw...)
			return
		}
		s.flushHeld()
		s.justClosed = false
		for ; n > 0; n-- {
			s.emit('.')
		}
	}
	if isSpace(r) {
		if len(s.stack) == 0 {
			return // depth-0 whitespace never reaches the output
		}
		if s.heldKind != heldNone {
			s.held = append(s.held, ' ')
			return
		}
		s.emit(' ')
		return
	}
	if r == '+' && s.justClosed {
		return // concatenation operator, swallowed
	}
	if isQuote(r) {
		s.quoteChar(r)
		return
	}
	switch r {
	case '{':
		s.beginValue()
		if s.expectKey && s.inObject() {
			s.event(KindSyntheticKey, s.pos, "inserted placeholder key before nested object")
			s.emitStr(`"_":`)
			s.expectKey = false
		}
		s.emit('{')
		s.stack = append(s.stack, scopeObject)
		s.expectKey = true
	case '[':
		s.beginValue()
		s.emit('[')
		s.stack = append(s.stack, scopeArray)
		s.expectKey = false
	case '}':
		if !s.inObject() {
			return // a stray } never closes an array or the root
		}
		s.dropTrailingComma()
		s.justClosed = false
		if s.colonOwed {
			s.event(KindInsertedValue, s.pos, "filled missing value with null")
			s.emitStr(":null")
			s.colonOwed = false
		} else if s.expectValue {
			s.event(KindInsertedValue, s.pos, "filled missing value with null")
			s.emitStr("null")
			s.expectValue = false
		}
		s.emit('}')
		s.stack = s.stack[:len(s.stack)-1]
		s.valueDone = true
		s.expectKey = false
	case ']':
		if t, ok := s.top(); !ok || t == scopeObject {
			return // a stray ] never closes an object
		}
		s.dropTrailingComma()
		s.justClosed = false
		s.emit(']')
		s.stack = s.stack[:len(s.stack)-1]
		s.valueDone = true
		s.expectValue = false
	case ':':
		s.justClosed = false
		if s.colonOwed && s.inObject() {
			s.flushHeld()
			s.emit(':')
			s.colonOwed = false
			s.expectValue = true
			s.valueDone = false
		}
		// otherwise discarded: no key pending, or at depth zero
	case ',':
		// A comma arriving while another is still held (nothing committed
		// between them, e.g. across a discarded ellipsis) collapses into one.
		s.dropTrailingComma()
		s.justClosed = false
		if s.inObject() {
			if s.colonOwed {
				s.event(KindInsertedValue, s.pos, "filled missing value with null")
				s.emitStr(":null")
				s.colonOwed = false
			} else if s.expectValue {
				s.event(KindInsertedValue, s.pos, "filled missing value with null")
				s.emitStr("null")
				s.expectValue = false
			}
			s.expectKey = true
		}
		s.held = append(s.held[:0], ',')
		s.heldKind = heldComma
		s.valueDone = false
	case '(':
		if s.parenDepth > 0 {
			s.parenDepth++
			s.flushHeld()
			s.emit('(')
			return
		}
		s.fallback(raw)
	case ')':
		if s.parenDepth > 0 {
			if s.wrapMarks[len(s.wrapMarks)-1] == s.parenDepth {
				s.wrapMarks = s.wrapMarks[:len(s.wrapMarks)-1]
				s.parenDepth--
				return // outer paren of a wrapper call, discarded
			}
			s.parenDepth--
			s.flushHeld()
			s.emit(')')
			return
		}
		s.fallback(raw)
	default:
		if s.expectKey && s.inObject() && (isIdentStart(r) || isDigit(r)) {
			s.flushHeld()
			s.justClosed = false
			s.mode = modeKey
			s.tokenPos = s.pos
			s.token = append(s.token[:0], raw...)
			s.expectKey = false
			return
		}
		if isValueStart(r) || (isIdentStart(r) && !s.expectKey) {
			s.beginValue()
			s.mode = modeValue
			s.tokenPos = s.pos
			s.token = append(s.token[:0], raw...)
			return
		}
		s.fallback(raw)
	}
}

// fallback keeps the automaton total: anything unrecognized passes through
// unchanged.
func (s *Scanner) fallback(raw []byte) {
	s.flushHeld()
	s.justClosed = false
	s.out = append(s.out, raw...)
}

// quoteChar handles a quote glyph in structural mode: either the opening of
// a new string (normalized to ") or, straight after a closed string, the
// continuation of that string by concatenation.
func (s *Scanner) quoteChar(r rune) {
	if s.justClosed {
		// Concatenation: retract the held closing quote and trailing
		// whitespace, then keep writing into the same string.
		s.held = s.held[:0]
		s.heldKind = heldNone
		s.justClosed = false
		s.valueDone = false
		s.mode = modeString
		s.quote = r
		s.escaped = false
		s.stack = append(s.stack, scopeString)
		return
	}
	s.beginValue()
	s.emit('"')
	s.mode = modeString
	s.quote = r
	s.escaped = false
	s.keyStr = s.expectKey && s.inObject()
	if s.keyStr {
		s.expectKey = false
	}
	s.stack = append(s.stack, scopeString)
}

// finalize runs the end-of-input sequence against live state, in order:
// pending key, pending literal, open string, owed colon, owed value,
// trailing comma, remaining stack, multi-root wrap.
func (s *Scanner) finalize() {
	if s.slashHeld {
		s.slashHeld = false
		s.flushHeld()
		s.emit('/')
	}
	if s.dots > 0 {
		s.flushHeld()
		for ; s.dots > 0; s.dots-- {
			s.emit('.')
		}
	}
	if s.heldKind == heldCloseQuote {
		s.flushHeld()
	}
	switch s.mode {
	case modeLineComment, modeBlockComment:
		s.mode = modeStructural
		s.starHeld = false
	case modeKey:
		s.finishKey()
	case modeValue:
		s.finishValue()
	case modeString:
		s.escaped = false // a lone trailing backslash is dropped
		s.event(KindInsertedQuote, s.pos, "closed unterminated string")
		s.emit('"')
		s.stack = s.stack[:len(s.stack)-1]
		s.mode = modeStructural
		if s.keyStr {
			s.keyStr = false
			s.colonOwed = true
		}
	}
	if s.colonOwed {
		s.event(KindInsertedValue, s.pos, "filled missing value with null")
		s.emitStr(":null")
		s.colonOwed = false
	} else if s.expectValue {
		s.event(KindInsertedValue, s.pos, "filled missing value with null")
		s.emitStr("null")
		s.expectValue = false
	}
	s.dropTrailingComma()
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		switch top {
		case scopeObject:
			s.event(KindClosedObject, s.pos, "closed unterminated object")
			s.emit('}')
		case scopeArray:
			s.event(KindClosedArray, s.pos, "closed unterminated array")
			s.emit(']')
		}
	}
	if s.wrapped {
		s.emit(']')
		s.wrapped = false
	}
	s.justClosed = false
}
