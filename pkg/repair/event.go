package repair

// Kind identifies one category of corrective action.
type Kind string

// Event kinds emitted by the automaton.
const (
	KindInsertedQuote Kind = "inserted_quote" // quoted an unquoted key or closed an open string
	KindFixedLiteral  Kind = "fixed_literal"  // completed or normalized a literal token
	KindClosedObject  Kind = "closed_object"  // appended a synthetic }
	KindClosedArray   Kind = "closed_array"   // appended a synthetic ]
	KindMissingComma  Kind = "missing_comma"  // inserted a comma between sibling values
	KindSyntheticKey  Kind = "synthetic_key"  // inserted the placeholder key "_"
	KindInsertedValue Kind = "inserted_value" // inserted a null (or :null) for a missing value
)

// Event records one corrective action taken during repair. Pos is the byte
// offset into the scanned input at which the repair was decided; a single
// pass guarantees events arrive ordered non-decreasing by Pos.
type Event struct {
	Kind Kind   `json:"kind"`
	Pos  int    `json:"position"`
	Note string `json:"note,omitempty"`
}

// Sink receives repair events synchronously, at or before the corresponding
// output write. A sink must not block; it cannot influence repaired output.
type Sink func(Event)

// Option configures a batch repair call or a Scanner.
type Option func(*config)

type config struct {
	sink         Sink
	wrappers     []string
	noPreprocess bool
}

// WithSink registers a callback receiving every repair event in order.
func WithSink(sink Sink) Option {
	return func(c *config) { c.sink = sink }
}

// WithWrappers registers additional wrapper-call names to unwrap, on top of
// the built-in constructor set (NumberLong, ISODate, ObjectId, ...).
func WithWrappers(names ...string) Option {
	return func(c *config) { c.wrappers = append(c.wrappers, names...) }
}

// WithoutPreprocess skips the preprocessing stage (fence, JSONP and
// escaped-JSON stripping) before batch repair. It has no effect on a
// Scanner, which never preprocesses.
func WithoutPreprocess() Option {
	return func(c *config) { c.noPreprocess = true }
}
