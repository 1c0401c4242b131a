package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <deployment>",
		Short: "Show a recorded deployment",
		Long: `Show detailed information about a recorded deployment.

You can specify deployments using:
- Full deployment ID: "zkSyncTestnet/Greeter:0xabc..."
- Contract address: "0x1234..."
- Contract name: "Greeter" (the latest deployment wins)

Use --network to narrow addresses and names to one network.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				dep, err := a.ShowDeployment.Run(cmd.Context(), usecase.ShowDeploymentParams{DeploymentRef: args[0]})
				if err != nil {
					return fmt.Errorf("failed to resolve deployment: %w", err)
				}
				return render.NewDeploymentsRenderer(cmd.OutOrStdout(), a.Config.JSON).RenderDeployment(dep)
			})
		},
	}
}
