package repair

import "strings"

// Repair runs the batch repair automaton over text and returns valid JSON.
// It never fails; empty or whitespace-only input yields the empty string.
// The batch path drives a single Scanner over the whole preprocessed input
// and finalizes it, so batch and incremental repair share one
// implementation and the chunk-boundary guarantee holds by construction.
func Repair(text string, opts ...Option) string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.noPreprocess {
		text = Preprocess(text)
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	s := newScanner(&cfg)
	out := s.Push(text)
	return out + s.End()
}
