package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-ncfilter/internal/config"
	"github.com/robert-malhotra/go-ncfilter/internal/logging"
	"github.com/robert-malhotra/go-ncfilter/ncfilter"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Global flag values.
var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// Cfg holds the loaded configuration, available to all subcommands.
var Cfg *config.Config

// SetVersionInfo is called from main to inject build-time version info.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	buildDate = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("ncfilter version {{.Version}} (commit: %s, built: %s)\n", commit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "ncfilter",
	Short: "Parse filter specs and plan chunked, compressed variable layouts",
	Long: `ncfilter parses compression filter specs, lists the filters each storage
format can run, and plans the filters, chunk shape and storage mode of
array variables being defined or copied.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging first so config loading can log.
		logging.Setup(logFormat, verbose)

		var err error
		Cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		format := Cfg.Logging.Format
		if cmd.Flags().Changed("log-format") {
			format = logFormat
		}
		level, _ := logging.ParseLevel(Cfg.Logging.Level)
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(logging.New(os.Stderr, format, level))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/ncfilter/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text or json)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("ncfilter version {{.Version}} (commit: %s, built: %s)\n", commit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newRegistry builds a registry with the builtin filters and the configured
// plugin path. reg may be nil.
func newRegistry(reg prometheus.Registerer) *ncfilter.Registry {
	opts := []ncfilter.Option{
		ncfilter.WithBuiltins(),
		ncfilter.WithLogger(slog.Default()),
	}
	if len(Cfg.PluginPath) > 0 {
		opts = append(opts, ncfilter.WithPluginPath(Cfg.PluginPath...))
	}
	if reg != nil {
		opts = append(opts, ncfilter.WithMetrics(reg))
	}
	return ncfilter.NewRegistry(opts...)
}

// formatFlag returns the --format flag value, or the configured format.
func formatFlag(cmd *cobra.Command) (ncfilter.FormatTag, error) {
	name, _ := cmd.Flags().GetString("format")
	if name == "" {
		name = Cfg.Filters.Format
	}
	return ncfilter.ParseFormat(name)
}
