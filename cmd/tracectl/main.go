// tracectl inspects, converts, renders and exports testbed current traces.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/log"
	"github.com/HappyEnt/flooja-cau-testbed/internal/measurement"
	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
)

// rootEnv holds the state shared by all subcommands.
type rootEnv struct {
	dir        string
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger

	// newWriter opens the export destination
	newWriter func(cfg config.InfluxConfig) (storage.TraceWriter, error)
}

func newRootEnv() *rootEnv {
	return &rootEnv{
		newWriter: func(cfg config.InfluxConfig) (storage.TraceWriter, error) {
			return storage.NewInfluxDBWriteStorage(cfg)
		},
	}
}

func newRootCmd(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracectl",
		Short: "Inspect and convert testbed current traces",
		Long: `tracectl queries the power traces of a testbed measurement directory.

A measurement directory holds powerprofiling/<node-id> trace files and
optionally serial.csv and gpiotraces.csv. Timestamps on the command line
are decimal seconds since the epoch.

Examples:
  tracectl info --dir ./measurement
  tracectl interpolate 13 1600000000.25 --dir ./measurement
  tracectl render 13 14 --out plot.png --dir ./measurement
`,
		SilenceUsage:      true,
		PersistentPreRunE: env.setup,
	}

	cmd.PersistentFlags().StringVarP(&env.dir, "dir", "d", "", "Measurement directory (default from MEASUREMENT_DIR)")
	cmd.PersistentFlags().StringVar(&env.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(env.infoCmd())
	cmd.AddCommand(env.interpolateCmd())
	cmd.AddCommand(env.averageCmd())
	cmd.AddCommand(env.samplesCmd())
	cmd.AddCommand(env.renderCmd())
	cmd.AddCommand(env.convertCmd())
	cmd.AddCommand(env.exportCmd())

	return cmd
}

func main() {
	if err := newRootCmd(newRootEnv()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func (e *rootEnv) setup(cmd *cobra.Command, args []string) error {
	e.cfg = config.Default()
	if e.configPath != "" {
		cfg, err := config.LoadFile(e.configPath)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if e.dir == "" {
		e.dir = e.cfg.Store.DataDir
	}

	logger, err := log.New(e.logLevel, false)
	if err != nil {
		return err
	}
	e.logger = logger
	log.SetLogger(logger)
	return nil
}

// open loads the measurement directory.
func (e *rootEnv) open(ctx context.Context, events bool) (*measurement.Measurement, error) {
	return measurement.Open(ctx, e.dir, e.logger, measurement.WithEvents(events))
}

// traces resolves node id arguments against the measurement.
func traces(ctx context.Context, store storage.TraceStore, args []string) ([]trace.Trace, error) {
	out := make([]trace.Trace, 0, len(args))
	for _, arg := range args {
		id, err := parseNode(arg)
		if err != nil {
			return nil, err
		}
		tr, err := store.Trace(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

func parseNode(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	return id, nil
}

// timeFlag parses a decimal seconds flag value; an empty value yields def.
func timeFlag(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return parser.ParseTimestamp(s)
}

func closeQuietly(c io.Closer, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", zap.Error(err))
	}
}
