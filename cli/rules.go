package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/safedep/authgate/config"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/tui"
)

// NewRulesCmd creates the rules command.
func NewRulesCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active policy rules",
		Long: `List the active policy rules in evaluation order.

Rules are validated exactly as the gate would load them, so this also
works as a config check. --yaml prints the policy as a config snippet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			if asYAML {
				return writePolicyYAML(cmd, app.Config)
			}

			view := &tui.RulesView{
				DefaultDecision: app.Evaluator.DefaultDecision().String(),
			}
			for i, rule := range app.Evaluator.Rules() {
				rv := &tui.RuleView{
					Index:  i,
					Name:   rule.Name(),
					Action: rule.Decision().String(),
				}
				if pr, ok := rule.(*security.PathRule); ok {
					rv.Match = string(pr.Kind())
					rv.Path = pr.Path()
					rv.Actor = pr.Actor()
				}
				view.Rules = append(view.Rules, rv)
			}

			return app.Presenter.RenderRules(view)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the policy as YAML")

	return cmd
}

func writePolicyYAML(cmd *cobra.Command, cfg *config.Config) error {
	doc := struct {
		Policy struct {
			DefaultDecision string              `yaml:"default_decision"`
			Rules           []config.RuleConfig `yaml:"rules"`
		} `yaml:"policy"`
	}{}
	doc.Policy.DefaultDecision = cfg.Policy.DefaultDecision
	doc.Policy.Rules = cfg.Policy.Rules

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
