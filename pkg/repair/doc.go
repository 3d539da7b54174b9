// Package repair turns almost-JSON into valid JSON.
//
// # Overview
//
// Large language models, log pipelines and shell sessions produce text that
// is nearly JSON: truncated mid-token, fenced in markdown, quoted with curly
// glyphs, commented, concatenated, or wrapped in constructor calls such as
// NumberLong(123). This package repairs all of that in a single
// left-to-right pass over the input. The automaton is total: it never
// returns an error, and for any input it produces output with well-formed
// nesting.
//
// # Batch Repair
//
// [Repair] is the entry point for whole documents:
//
//	out := repair.Repair(`{"name": 'John', "age": 3`)
//	// {"name": "John", "age": 3}
//
// Empty and whitespace-only input yield the empty string. [Preprocess] runs
// first (markdown fences, JSONP wrappers, escaped-JSON unwrapping) unless
// [WithoutPreprocess] is given, and is also exposed standalone.
//
// # Incremental Repair
//
// [Scanner] consumes a stream chunk by chunk. [Scanner.Push] accepts
// arbitrary chunk boundaries, including ones that split a UTF-8 sequence, a
// literal, or an escape; [Scanner.End] finalizes. The concatenation of all
// Push results plus the End result is byte-identical to the batch result
// for every possible partition of the input. [Scanner.Snapshot] returns the
// would-be final output mid-stream without disturbing state, and
// [Scanner.Reset] readies the instance for a new stream.
//
// Multiple top-level values (NDJSON and friends) are joined into one array.
// Because the array's opening bracket precedes the first value, Push holds
// its output until a second top-level value proves the wrap necessary;
// single-root streams deliver everything at End.
//
// # Events
//
// Every semantics-altering correction emits one [Event] through the sink
// registered with [WithSink], synchronously and in input order. Sinks
// observe repairs; they cannot influence output.
//
// # Concurrency
//
// [Repair] and [Preprocess] are safe for concurrent use. A [Scanner] serves
// one logical stream and must not be shared between goroutines without
// external synchronization.
package repair
