package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/render"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

func (e *rootEnv) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [node-id...]",
		Short: "Summarize the traces and event logs of a measurement",
		Long: `Print the time range, sample count and sampling period of every trace,
or of the given nodes, followed by the size of the event logs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := e.open(ctx, true)
			if err != nil {
				return err
			}
			defer closeQuietly(m, e.logger)

			if len(args) == 0 {
				ids, err := m.Traces.Nodes(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					args = append(args, fmt.Sprint(id))
				}
			}
			trs, err := traces(ctx, m.Traces, args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tFIRST\tLAST\tSAMPLES\tPERIOD")
			for _, tr := range trs {
				info := trace.Info(tr)
				first, last := "-", "-"
				if info.HasData() {
					first = parser.FormatTimestamp(*info.FirstTime)
					last = parser.FormatTimestamp(*info.LastTime)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", info.NodeID, first, last, info.SampleCount, parser.FormatTimestamp(info.SamplingPeriod))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if m.Gpio != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "gpio events: %d\n", m.Gpio.Len())
			}
			if m.Serial != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "serial lines: %d\n", m.Serial.Len())
			}
			return nil
		},
	}
}

func (e *rootEnv) interpolateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpolate <node-id> <time>",
		Short: "Print the current of a node at a point in time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			at, err := parser.ParseTimestamp(args[1])
			if err != nil {
				return err
			}

			m, err := e.open(ctx, false)
			if err != nil {
				return err
			}
			defer closeQuietly(m, e.logger)

			trs, err := traces(ctx, m.Traces, args[:1])
			if err != nil {
				return err
			}
			label, err := render.Tooltip(trs[0], at)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}

func (e *rootEnv) averageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "average <node-id> <from> <to>",
		Short: "Print the mean current of a node over an inclusive window",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			from, err := parser.ParseTimestamp(args[1])
			if err != nil {
				return err
			}
			to, err := parser.ParseTimestamp(args[2])
			if err != nil {
				return err
			}

			m, err := e.open(ctx, false)
			if err != nil {
				return err
			}
			defer closeQuietly(m, e.logger)

			trs, err := traces(ctx, m.Traces, args[:1])
			if err != nil {
				return err
			}
			v, ok, err := trs[0].AverageIn(from, to)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "unknown")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f %s\n", v, models.UnitCurrent)
			return nil
		},
	}
}

func (e *rootEnv) samplesCmd() *cobra.Command {
	var start, end, maxDeltaT string

	cmd := &cobra.Command{
		Use:   "samples <node-id>",
		Short: "Print the samples covering a window as time,value CSV",
		Long: `Print the samples of a node covering [start, end] at a resolution of
max-delta-t. The output can be converted back with tracectl convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := e.open(ctx, false)
			if err != nil {
				return err
			}
			defer closeQuietly(m, e.logger)

			trs, err := traces(ctx, m.Traces, args)
			if err != nil {
				return err
			}
			tr := trs[0]

			first, _ := tr.FirstTime()
			last, _ := tr.LastTime()
			from, err := timeFlag(start, first)
			if err != nil {
				return err
			}
			to, err := timeFlag(end, last)
			if err != nil {
				return err
			}
			delta, err := timeFlag(maxDeltaT, max((to-from)/int64(e.cfg.API.DefaultWidth), 1))
			if err != nil {
				return err
			}

			seq, err := tr.MeasurementsCovering(from, to, delta)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "# time,value")
			for seq.Next() {
				fmt.Fprintf(out, "%s,%g\n", parser.FormatTimestamp(seq.Time()), seq.Value())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Window start in seconds (default first sample)")
	cmd.Flags().StringVar(&end, "end", "", "Window end in seconds (default last sample)")
	cmd.Flags().StringVar(&maxDeltaT, "max-delta-t", "", "Resolution in seconds (default one plot pixel)")

	return cmd
}
