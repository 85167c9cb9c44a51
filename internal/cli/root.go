// Package cli implements the bittranspose command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tuomass/bittranspose-go/internal/config"
	"github.com/tuomass/bittranspose-go/internal/output"
)

// version is set at build time via -ldflags "-X github.com/tuomass/bittranspose-go/internal/cli.version=x.y.z"
var version = "0.1.0"

// app carries state shared by every subcommand once PersistentPreRunE has run.
type app struct {
	cfgFile      string
	outputFormat string
	verbose      bool

	cfg       *config.Config
	log       *zap.Logger
	formatter output.Formatter
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "bittranspose",
		Short: "Bit-plane transposition for parallel LED strip output",
		Long: `bittranspose re-packs pixel data laid out as interleaved per-strand bytes
into bit planes, one output byte per bit time with one bit per strand, ready
for a shift-register or PIO driven parallel output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVarP(&a.outputFormat, "output", "o", "", `report format: table, json, yaml (default "table")`)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newTransposeCmd(a),
		newUntransposeCmd(a),
		newInfoCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if a.outputFormat != "" {
		cfg.Output.Format = a.outputFormat
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger
	a.formatter = output.NewFormatter(cfg.Output.Format)
	return nil
}

// newLogger builds a console logger on stderr so stdout stays free for data.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log.level %q", level)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the bittranspose version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bittranspose version %s\n", version)
			return nil
		},
	}
}
