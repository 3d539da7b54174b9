// Package pkg provides the core libraries behind the repairjson CLI.
//
// # Overview
//
// repair-json-stream turns the almost-JSON produced by LLMs, logs and shell
// sessions into valid JSON. The pkg directory is organized by concern:
//
//  1. [repair] - the repair automaton (batch, incremental, preprocessing)
//  2. [extract] - locating JSON spans inside surrounding prose
//  3. [cache] - result cache backends (file, redis, null)
//  4. [observability] - hook registry for metrics and tracing backends
//  5. [errors] - structured error codes and config validation
//  6. [buildinfo] - version metadata injected at build time
//
// # Architecture
//
// The typical data flow through repairjson:
//
//	raw model output
//	         ↓
//	    [extract] package (find the JSON span, optional)
//	         ↓
//	    [repair] Preprocess (fences, JSONP, escaped JSON)
//	         ↓
//	    [repair] Scanner (single-pass repair automaton)
//	         ↓
//	    valid JSON + repair events
//
// # Quick Start
//
// Most callers only need the batch entry point:
//
//	fixed := repair.Repair(`{"a": [1, 2`)
//	// fixed == `{"a": [1, 2]}`
//
// Streaming consumers feed chunks to a [repair.Scanner] and read repaired
// output as it becomes final.
package pkg
