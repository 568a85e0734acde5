// Package commands implements CLI command handlers for requalify.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/requalify/pkg/config"
	"github.com/Sumatoshi-tech/requalify/pkg/observability"
	"github.com/Sumatoshi-tech/requalify/pkg/version"
)

// Persistent flag names.
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"
	flagColor    = "color"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
	color      string
}

// environment is what a command needs once config and observability are up.
type environment struct {
	cfg       *config.Config
	providers observability.Providers
	out       io.Writer
	useColor  bool
}

// NewRootCommand creates the requalify root command with every subcommand.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "requalify",
		Short: "Rewrite Go test packages to qualify moved symbols",
		Long: `requalify rewrites Go source files after a package split: it renames the
package clause, merges imports and qualifies bare identifiers with the
package that now owns them.

Commands:
  run       Rewrite every group of a manifest
  file      Rewrite a single file from flags
  check     Validate a manifest without touching files
  report    Render a saved run summary`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, flagConfig, "", "Config file (default: .requalify.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, flagLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, flagLogJSON, config.DefaultLogJSON, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.color, flagColor, config.DefaultColor, "Colour output: auto, always, never")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newFileCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}

// setup loads the config, applies explicitly set flags through override and
// brings up logging, tracing and metrics for mode.
func (o *globalOptions) setup(
	cmd *cobra.Command,
	mode observability.AppMode,
	override func(cfg *config.Config),
) (*environment, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed(flagLogLevel) {
		cfg.Log.Level = o.logLevel
	}

	if flags.Changed(flagLogJSON) {
		cfg.Log.JSON = o.logJSON
	}

	if flags.Changed(flagColor) {
		cfg.Output.Color = o.color
	}

	if override != nil {
		override(cfg)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate flags: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Log.JSON
	obsCfg.LogWriter = cmd.ErrOrStderr()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	out := cmd.OutOrStdout()

	return &environment{
		cfg:       cfg,
		providers: providers,
		out:       out,
		useColor:  cfg.UseColor(isTerminal(out)),
	}, nil
}

// close flushes the providers, folding a flush failure into err.
func (e *environment) close(ctx context.Context, err error) error {
	shutdownErr := e.providers.Shutdown(ctx)
	if shutdownErr != nil {
		return errors.Join(err, fmt.Errorf("shutdown observability: %w", shutdownErr))
	}

	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
