// Package cli provides the command-line interface for authgate.
package cli

import (
	"io"
	"os"

	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"

	"github.com/safedep/authgate/config"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/internal/version"
	"github.com/safedep/authgate/subsystem"
	"github.com/safedep/authgate/subsystem/fanotify"
	"github.com/safedep/authgate/subsystem/memory"
	"github.com/safedep/authgate/tui"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Paths     *config.Paths
	Evaluator *security.Evaluator
	Backends  *subsystem.Registry
	Presenter tui.Presenter
}

// NewApp creates a new App with the given configuration and evaluator.
// Output goes to out in the given format.
func NewApp(cfg *config.Config, evaluator *security.Evaluator, out io.Writer, format tui.Format) *App {
	presenter := tui.NewPresenter(format, tui.PresenterOptions{
		Writer:    out,
		UseColors: cfg.ShouldUseColors(),
		Verbose:   globalFlags.Verbose,
	})

	return &App{
		Config:    cfg,
		Paths:     config.ResolvePaths(),
		Evaluator: evaluator,
		Backends:  newBackendRegistry(),
		Presenter: presenter,
	}
}

func newBackendRegistry() *subsystem.Registry {
	registry := subsystem.NewRegistry()
	registry.Register(subsystem.BackendFanotify, fanotify.Factory)
	registry.Register(subsystem.BackendMemory, memory.Factory)
	return registry
}

// ConfigLocation returns the config file in effect.
func (a *App) ConfigLocation() string {
	if globalFlags.ConfigPath != "" {
		return globalFlags.ConfigPath
	}
	return a.Paths.ConfigFile
}

// GlobalFlags holds the global command flags.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	NoColor    bool
	Format     string
}

var globalFlags GlobalFlags

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "authgate",
		Short: "File access authorization gatekeeper",
		Long: `authgate answers the kernel's file-open permission requests.

Each open is checked against a path blocklist and allowed or denied
exactly once. Malformed requests are denied.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle NO_COLOR environment variable
			if os.Getenv("NO_COLOR") != "" {
				globalFlags.NoColor = true
			}

			if os.Getenv("AUTHGATE_NO_COLOR") != "" {
				globalFlags.NoColor = true
			}

			setupInternalLogger()

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "increase output verbosity")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Format, "format", "table", "output format: table, json, jsonl, csv")

	rootCmd.AddCommand(
		NewRunCmd(),
		NewEvaluateCmd(),
		NewReplayCmd(),
		NewRulesCmd(),
		NewStatusCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupInternalLogger sets up the DRY logger
func setupInternalLogger() {
	// Always skip the stdout logger since we are running in a CLI context.
	// with our own TUI.
	_ = os.Setenv("APP_LOG_SKIP_STDOUT_LOGGER", "true")

	log.Init("authgate", "cli")
}

// loadApp loads configuration and builds the policy evaluator. Unlike most
// settings a broken ruleset is never papered over with defaults.
func loadApp(cmd *cobra.Command) (*App, error) {
	format, err := tui.ParseFormat(globalFlags.Format)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return nil, ErrConfig("failed to load config", err)
	}

	// Override with flags
	if globalFlags.NoColor {
		cfg.Display.Colors = config.ColorNever
	}

	evaluator, err := cfg.Evaluator()
	if err != nil {
		return nil, ErrConfig("invalid policy", err)
	}

	return NewApp(cfg, evaluator, cmd.OutOrStdout(), format), nil
}
