package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewComposeCmd creates the compose command
func NewComposeCmd() *cobra.Command {
	var (
		resume bool
		noSave bool
	)

	cmd := &cobra.Command{
		Use:   "compose <plan.yaml>",
		Short: "Deploy several contracts from a YAML plan",
		Long: `Deploy a group of contracts described in a YAML plan. Steps run in
dependency order; constructor arguments may reference earlier steps as
"${step.address}". A failed step stops the run.

Example plan:

  group: core
  steps:
    token:
      contract: Token
      args: ["Token", "TKN", 1000000]
    vault:
      contract: Vault
      args: ["${token.address}"]
      deps: [token]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.ComposeDeployment.Run(cmd.Context(), usecase.ComposeParams{
					PlanPath: args[0],
					Resume:   resume,
					NoSave:   noSave,
				})
				if err != nil {
					return err
				}

				renderer := render.NewComposeRenderer(cmd.OutOrStdout(), a.Config.JSON)
				if err := renderer.RenderComposeResult(result); err != nil {
					return err
				}
				if result.FailedStep != nil {
					return &reportedError{err: result.FailedStep.Error}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip steps already recorded for this group and network")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record deployments in the registry")

	return cmd
}
