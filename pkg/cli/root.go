package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagemigrate/pagemigrate/pkg/config"
	"github.com/pagemigrate/pagemigrate/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"

	// cfg and logger are set up before any subcommand runs.
	cfg    *config.Config
	logger = logging.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagemigrate",
	Short: "pagemigrate transforms legacy page controls with mapping files",
	Long: `pagemigrate runs the function pipelines of mapping files against the
properties of legacy page controls and reports the transformed properties and
the target mapping a control should be migrated to.

Configuration can be provided via flags, PAGEMIGRATE_* environment variables,
or a pagemigrate.yaml file in the working directory.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if code := Run(); code != 0 {
		os.Exit(code)
	}
}

// Run executes the command line in os.Args and returns the exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Project config file (default: ./pagemigrate.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Logs go to stderr so stdout carries results only.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := &config.Config{}
	if cmd.Flags().Changed("log-level") {
		flags.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		flags.Log.Format = logFormat
	}
	if jsonOutput {
		flags.Output = config.OutputJSON
	}
	config.Merge(loaded, flags, config.SourceFlag)
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = newLogger(loaded, cmd.ErrOrStderr())
	return nil
}

func newLogger(c *config.Config, w io.Writer) *slog.Logger {
	lc := c.Logging()
	lc.Output = w
	return logging.New(lc)
}

// logHandler returns the handler run loggers observe.
func logHandler() slog.Handler {
	return logger.Handler()
}
