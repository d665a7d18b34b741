package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"

	"github.com/safedep/authgate/internal/release"
	"github.com/safedep/authgate/internal/version"
	"github.com/safedep/authgate/tui"
)

const releaseCheckTimeout = 5 * time.Second

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tui.ParseFormat(globalFlags.Format)
			if err != nil {
				return err
			}

			presenter := tui.NewPresenter(format, tui.PresenterOptions{
				Writer:    cmd.OutOrStdout(),
				UseColors: !globalFlags.NoColor && tui.IsWriterTerminal(cmd.OutOrStdout()),
			})

			if err := presenter.RenderVersion(&tui.VersionView{
				Version:   version.Version,
				Commit:    version.Commit,
				GoVersion: runtime.Version(),
				Platform:  version.Platform(),
			}); err != nil {
				return err
			}

			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), releaseCheckTimeout)
			defer cancel()

			var opts []release.Option
			if api := os.Getenv("AUTHGATE_RELEASE_API"); api != "" {
				opts = append(opts, release.WithBaseURL(api))
			}

			result, err := release.NewChecker(opts...).Check(ctx, version.Version)
			if err != nil {
				// An unreachable release API is reported, not fatal.
				log.Warnf("release check failed: %v", err)
				return presenter.RenderError(fmt.Errorf("failed to check for updates: %w", err))
			}

			if !result.UpdateAvailable {
				return presenter.RenderMessage(fmt.Sprintf("authgate is up to date (latest %s)", result.LatestVersion))
			}

			return presenter.RenderUpdateNotice(&tui.UpdateNoticeView{
				CurrentVersion: result.CurrentVersion,
				LatestVersion:  result.LatestVersion,
				ReleaseURL:     result.ReleaseURL,
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")

	return cmd
}
