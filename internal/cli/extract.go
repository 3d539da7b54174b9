package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/prxtenses/repair-json-stream/pkg/extract"
	"github.com/prxtenses/repair-json-stream/pkg/repair"
)

// extractCommand creates the extract command for digging JSON out of prose.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		all      bool
		doRepair bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract JSON spans from surrounding prose",
		Long: `Extract JSON spans from surrounding prose.

Scans the input for balanced brace/bracket spans, skipping the chatter
around them. By default only the first span is printed; --all prints every
span, one per line. With --repair each span additionally runs through the
repair automaton, so truncated spans come out as valid JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return c.runExtract(cmd.OutOrStdout(), input, all, doRepair)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every span, not just the first")
	cmd.Flags().BoolVar(&doRepair, "repair", false, "run each span through the repair automaton")

	return cmd
}

func (c *CLI) runExtract(stdout io.Writer, input string, all, doRepair bool) error {
	data, source, err := readInput(input)
	if err != nil {
		return err
	}
	text := string(data)

	spans := extract.Spans(text)
	if len(spans) == 0 {
		c.Logger.Warn("no JSON spans found", "source", source)
		return nil
	}
	if !all {
		spans = spans[:1]
	}

	for _, sp := range spans {
		span := text[sp.Start:sp.End]
		if doRepair {
			span = repair.Repair(span)
		}
		fmt.Fprintln(stdout, span)
	}
	c.Logger.Debug("extracted spans", "source", source, "count", len(spans))

	return nil
}
