package main

import (
	"fmt"
	"os"

	"ttdl-lunar-calendar/internal/config"
	"ttdl-lunar-calendar/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string
	forceInit  bool

	// Logging, set up per invocation
	logs = logging.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Lunar calendar plugin for TTDL",
	Long: `Converts lunar calendar dates in a TTDL task to solar (Gregorian) dates.

TTDL runs the plugin once per task, writing the task as JSON to stdin and
reading the rewritten task from stdout. The fields to convert are listed in
the task's !lunar-calendar special tag:

  !lunar-calendar:created,#due

A name prefixed with # is a special tag, a bare name is an optional field.
The tag may also be a flag (true/false) that converts every "due" field.

Problems with the tag or the dates are written in front of the task
description; the task is otherwise returned unchanged.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logs.Close()
	},
	RunE: runFilter,
}

// dateCmd converts a single date
var dateCmd = &cobra.Command{
	Use:   "date [YYYY-MM-DD]",
	Short: "Convert one lunar date to a solar date",
	Long: `Prints the solar date for a lunar date written as YYYY-MM-DD.
Useful for checking a date before putting it in a task.

Example:
  ttdl-lunar-calendar date 2000-01-01   # prints 2000-02-05`,
	Args: cobra.ExactArgs(1),
	RunE: runDate,
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", config.AppName, version)
	},
}

// configCmd groups the config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// Skips the root hook so a broken file can be replaced.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

// configInitCmd writes the default config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Writes the default configuration to --config, or to
$XDG_CONFIG_HOME/ttdl-lunar-calendar/config.yaml when no path is given.
An existing file is kept unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// setupLogging loads the config and builds the loggers for this invocation.
// The filter has to answer the host on every task, so in filter mode a bad
// config or log sink only produces a warning and the defaults are used.
func setupLogging(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	filter := !cmd.HasParent()

	cfg, err := config.Load(path)
	if err != nil {
		if !filter {
			return err
		}
		warn(cmd, err)
		cfg = config.DefaultConfig()
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}

	m, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		err = fmt.Errorf("failed to initialize logger: %w", err)
		if !filter {
			return err
		}
		warn(cmd, err)
		m = logging.Nop()
	}

	logs = m.With(zap.String("invocation", uuid.NewString()))
	logs.Get(logging.CategoryBoot).Debug("config loaded",
		zap.String("path", path),
		zap.String("version", version))
	return nil
}

func warn(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ttdl-lunar-calendar/config.yaml)")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(dateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
