package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (e *rootEnv) exportCmd() *cobra.Command {
	var maxDeltaT string

	cmd := &cobra.Command{
		Use:   "export [node-id...]",
		Short: "Export traces to InfluxDB",
		Long: `Write the traces of all nodes, or of the given nodes, to the InfluxDB
bucket configured through INFLUXDB_* or the config file. Points go to the
measurement "current" tagged with node_id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			delta, err := timeFlag(maxDeltaT, 1)
			if err != nil {
				return err
			}

			m, err := e.open(ctx, false)
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

			w, err := e.newWriter(e.cfg.Influx)
			if err != nil {
				return fmt.Errorf("failed to connect to InfluxDB: %w", err)
			}
			defer closeQuietly(w, e.logger)

			total := 0
			for _, tr := range trs {
				n, err := w.ExportTrace(ctx, tr, delta)
				total += n
				if err != nil {
					return fmt.Errorf("failed to export node %d: %w", tr.NodeID(), err)
				}
				e.logger.Info("exported trace", zap.Int("node_id", tr.NodeID()), zap.Int("points", n))
				fmt.Fprintf(cmd.OutOrStdout(), "node %d: %d points\n", tr.NodeID(), n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d points from %d traces\n", total, len(trs))
			return nil
		},
	}

	cmd.Flags().StringVar(&maxDeltaT, "max-delta-t", "", "Resolution in seconds (default every sample)")

	return cmd
}
