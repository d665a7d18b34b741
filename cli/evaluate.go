package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/tui"
)

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	var (
		actor        string
		eventType    string
		targetLength int
	)

	cmd := &cobra.Command{
		Use:   "evaluate <target>",
		Short: "Decide a single file open against the configured policy",
		Long: `Evaluate one file open without talking to the kernel.

The decision and the response payload that would be submitted are
printed. --target-length sets the declared length of the target buffer,
which lets you check how malformed requests are handled.`,
		Example: `  authgate evaluate /etc/passwd
  authgate evaluate /etc/shadow --actor /usr/bin/cat
  authgate evaluate /etc/passwd --target-length 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			t, err := events.ParseEventType(eventType)
			if err != nil {
				return err
			}

			event := events.NewOpenEvent([]byte(actor), []byte(args[0]))
			event.Type = t
			if cmd.Flags().Changed("target-length") {
				event.Open.TargetLength = targetLength
			}

			result := app.Evaluator.Evaluate(event)
			payload := response.PayloadFor(result.Decision)

			view := &tui.DecisionView{
				Actor:       event.DisplayActor(app.Config.Diagnostics.PathMaxChars),
				Target:      event.DisplayTarget(app.Config.Diagnostics.PathMaxChars),
				Decision:    result.Decision.String(),
				Permissions: tui.FormatPermissions(payload.Permissions),
				Cacheable:   payload.Cacheable,
				MatchedRule: result.MatchedRule,
				Reason:      result.Reason,
			}
			if result.Malformed() {
				view.Malformed = result.Err.Error()
			}

			if err := app.Presenter.RenderDecision(view); err != nil {
				return fmt.Errorf("failed to render decision: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "executable path of the acting process")
	cmd.Flags().StringVar(&eventType, "type", string(events.EventTypeAuthOpen), "event type (auth_open, auth_exec, notify_exec)")
	cmd.Flags().IntVar(&targetLength, "target-length", 0, "declared target length, defaults to the path length")

	return cmd
}
