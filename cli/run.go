package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/safedep/dry/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/gate"
	"github.com/safedep/authgate/internal/version"
	"github.com/safedep/authgate/metrics"
	"github.com/safedep/authgate/subsystem"
	"github.com/safedep/authgate/tui/component/livemon"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var (
		backend string
		live    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Authorize file opens until interrupted",
		Long: `Connect to the kernel authorization subsystem and answer every
file-open permission request until SIGINT or SIGTERM.

The process exits with code 3 if the subsystem session cannot be
established, since there is then nothing to protect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			if backend != "" {
				app.Config.Subsystem.Backend = backend
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runGate(ctx, app, live)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "override subsystem.backend (fanotify, memory)")
	cmd.Flags().BoolVar(&live, "live", false, "show a live decision monitor")

	return cmd
}

func runGate(ctx context.Context, app *App, live bool) error {
	cfg := app.Config

	client, err := app.Backends.Open(cfg.Subsystem.Backend,
		subsystem.Options{WatchPaths: cfg.Subsystem.WatchPaths},
		events.SubscribedTypes())
	if err != nil {
		return ErrSubsystem("subsystem unavailable", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Errorf("failed to close %s client: %v", client.Name(), err)
		}
	}()

	observers := []gate.Observer{gate.NewLogObserver(cfg.Diagnostics.LogAllowed)}

	var server *metrics.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		recorder, err := metrics.NewRecorder(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		observers = append(observers, recorder)
		server = metrics.NewServer(cfg.Metrics.Listen, reg)
	}

	var feed *livemon.Feed
	if live {
		feed = livemon.NewFeed(0)
		observers = append(observers, feed)
	}

	handler := gate.NewHandler(app.Evaluator, client,
		gate.WithObservers(observers...),
		gate.WithDisplayMax(cfg.Diagnostics.PathMaxChars))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Infof("authgate %s started: backend=%s rules=%d default=%s",
		version.Version, client.Name(), len(app.Evaluator.Rules()), app.Evaluator.DefaultDecision())

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		if err := client.Start(ctx, handler); err != nil {
			return fmt.Errorf("%s event loop: %w", client.Name(), err)
		}
		return nil
	})

	if server != nil {
		p.Go(func(ctx context.Context) error {
			log.Infof("serving metrics on %s", cfg.Metrics.Listen)
			return server.Run(ctx)
		})
	}

	if feed != nil {
		p.Go(func(ctx context.Context) error {
			// Quitting the monitor stops the gate.
			defer cancel()
			defer feed.Close()

			program := tea.NewProgram(livemon.New(livemon.Options{
				Feed:      feed,
				Backend:   client.Name(),
				RuleCount: len(app.Evaluator.Rules()),
			}), tea.WithContext(ctx), tea.WithAltScreen())

			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("live monitor: %w", err)
			}
			return nil
		})
	}

	err = p.Wait()
	log.Infof("authgate stopped")
	return err
}
