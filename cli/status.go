package cli

import (
	"github.com/spf13/cobra"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/internal/version"
	"github.com/safedep/authgate/subsystem"
	"github.com/safedep/authgate/tui"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the effective setup and whether the backend can start",
		Long: `Show the effective setup and whether the backend can start.

The configured backend is opened and subscribed, then closed again, so a
missing capability or unsupported kernel shows up here before "run".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			cfg := app.Config
			view := &tui.StatusView{
				Version:          version.Version,
				Platform:         version.Platform(),
				Backend:          cfg.Subsystem.Backend,
				BackendSupported: true,
				WatchPaths:       cfg.Subsystem.WatchPaths,
				ConfigLocation:   app.ConfigLocation(),
				DefaultDecision:  app.Evaluator.DefaultDecision().String(),
				RuleCount:        len(app.Evaluator.Rules()),
			}
			if cfg.Metrics.Enabled {
				view.MetricsListen = cfg.Metrics.Listen
			}

			client, err := app.Backends.Open(cfg.Subsystem.Backend,
				subsystem.Options{WatchPaths: cfg.Subsystem.WatchPaths},
				events.SubscribedTypes())
			if err != nil {
				view.BackendSupported = false
				view.BackendError = err.Error()
			} else {
				_ = client.Close()
			}

			return app.Presenter.RenderStatus(view)
		},
	}

	return cmd
}
