package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
)

func (e *rootEnv) convertCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "convert <samples.csv> <trace-file>",
		Short: "Convert a time,value CSV file into a binary trace file",
		Long: `Convert rows of time,value into the binary trace format. Name the output
after the node id (e.g. powerprofiling/13) so the trace directory picks it up.
The sampling period is estimated from the data unless --period is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", in, err)
			}
			samples, err := parser.LoadSamples(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(in), err)
			}

			p, err := timeFlag(period, parser.SamplingPeriod(samples))
			if err != nil {
				return err
			}
			if p < 0 {
				return fmt.Errorf("invalid sampling period %s", period)
			}

			if err := trace.WriteTraceFile(out, samples, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s (period %s s)\n", len(samples), out, parser.FormatTimestamp(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Sampling period in seconds")

	return cmd
}
