package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safedep/authgate/config"
	"github.com/safedep/authgate/tui"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify configuration",
		Long: `View or modify configuration.

Subcommands work on the file given by --config, or the per-user config
file. Values are validated before they are written, so a "set" that would
leave an invalid policy is rejected.`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigResetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

// configManager opens the config file selected by the global flags. It does
// not require the file to be valid, so a broken config can be repaired.
func configManager() (*config.Manager, error) {
	path := globalFlags.ConfigPath
	if path == "" {
		path = config.ResolvePaths().ConfigFile
	}

	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, ErrConfig("failed to open config", err)
	}
	return mgr, nil
}

func configPresenter(cmd *cobra.Command) (tui.Presenter, error) {
	format, err := tui.ParseFormat(globalFlags.Format)
	if err != nil {
		return nil, err
	}

	return tui.NewPresenter(format, tui.PresenterOptions{
		Writer:    cmd.OutOrStdout(),
		UseColors: !globalFlags.NoColor && tui.IsWriterTerminal(cmd.OutOrStdout()),
	}), nil
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager()
			if err != nil {
				return err
			}

			presenter, err := configPresenter(cmd)
			if err != nil {
				return err
			}

			return presenter.RenderConfig(&tui.ConfigView{
				Location: mgr.ConfigPath(),
				Values:   mgr.AllSettings(),
			})
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get specific config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			mgr, err := configManager()
			if err != nil {
				return err
			}

			if !mgr.HasKey(key) {
				return fmt.Errorf("key not found: %s", key)
			}

			fmt.Fprintln(cmd.OutOrStdout(), mgr.Get(key))
			return nil
		},
	}

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set config value",
		Example: `  authgate config set subsystem.backend memory
  authgate config set subsystem.watch_paths "[/home, /srv]"
  authgate config set metrics.enabled true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			mgr, err := configManager()
			if err != nil {
				return err
			}

			if !mgr.HasKey(key) {
				return fmt.Errorf("key not found: %s", key)
			}

			value := config.ParseValue(args[1])
			if err := mgr.Set(key, value); err != nil {
				return ErrConfig("failed to set "+key, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset to default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager()
			if err != nil {
				return err
			}

			if err := mgr.Reset(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
			return nil
		},
	}

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), mgr.ConfigPath())
			return nil
		},
	}

	return cmd
}
