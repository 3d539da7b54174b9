package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/prxtenses/repair-json-stream/pkg/observability"
	"github.com/prxtenses/repair-json-stream/pkg/repair"
)

// kindOrder fixes the display order of the event summary.
var kindOrder = []repair.Kind{
	repair.KindInsertedQuote,
	repair.KindFixedLiteral,
	repair.KindMissingComma,
	repair.KindInsertedValue,
	repair.KindSyntheticKey,
	repair.KindClosedObject,
	repair.KindClosedArray,
}

// eventLog collects repair events for one run: each event is logged at
// debug level, forwarded to the observability hooks, and counted for the
// end-of-run summary.
type eventLog struct {
	ctx    context.Context
	logger *log.Logger
	counts map[repair.Kind]int
	total  int
}

func newEventLog(ctx context.Context, logger *log.Logger) *eventLog {
	return &eventLog{
		ctx:    ctx,
		logger: logger,
		counts: make(map[repair.Kind]int),
	}
}

// sink is the repair.Sink bridged into logging and hooks.
func (e *eventLog) sink(ev repair.Event) {
	e.counts[ev.Kind]++
	e.total++
	e.logger.Debug("repair", "kind", ev.Kind, "pos", ev.Pos, "note", ev.Note)
	observability.Repair().OnRepairEvent(e.ctx, string(ev.Kind), ev.Pos)
}

// summary renders a one-line styled count per event kind, e.g.
// "3 corrections · fixed_literal ×2 · closed_object ×1".
func (e *eventLog) summary() string {
	if e.total == 0 {
		return "no corrections needed"
	}
	parts := []string{fmt.Sprintf("%d corrections", e.total)}
	for _, kind := range kindOrder {
		if n := e.counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", kind, StyleNumber.Render(fmt.Sprintf("×%d", n))))
		}
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
