package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HappyEnt/flooja-cau-testbed/internal/render"
)

func (e *rootEnv) renderCmd() *cobra.Command {
	var (
		out, start, end string
		width, height   int
	)

	cmd := &cobra.Command{
		Use:   "render <node-id...>",
		Short: "Render the current of one or more nodes to a PNG file",
		Long: `Render the current of the given nodes into one PNG plot. Without
--start and --end the whole measurement is drawn.

Examples:
  tracectl render 13 --out node13.png
  tracectl render 13 14 --start 1600000000 --end 1600000002.5 --width 1600
`,
		Args: cobra.MinimumNArgs(1),
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

			first, last, _ := m.Span()
			win := render.Window{Width: width, Height: height}
			if win.Start, err = timeFlag(start, first); err != nil {
				return err
			}
			if win.End, err = timeFlag(end, last); err != nil {
				return err
			}
			if win.Width <= 0 {
				win.Width = e.cfg.API.DefaultWidth
			}
			if win.Height <= 0 {
				win.Height = e.cfg.API.DefaultHeight
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			opts := render.Options{
				MaxCurrent: e.cfg.API.MaxCurrent,
				Title:      "node " + strings.Join(args, ", "),
			}
			if err := render.PNG(f, trs, win, opts); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, win.Width, win.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "plot.png", "Output PNG file")
	cmd.Flags().StringVar(&start, "start", "", "Window start in seconds (default measurement start)")
	cmd.Flags().StringVar(&end, "end", "", "Window end in seconds (default measurement end)")
	cmd.Flags().IntVar(&width, "width", 0, "Image width in pixels (default PLOT_WIDTH)")
	cmd.Flags().IntVar(&height, "height", 0, "Image height in pixels (default PLOT_HEIGHT)")

	return cmd
}
