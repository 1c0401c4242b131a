package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		contract string
		group    string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments",
		Long: `List deployments recorded in the local registry, grouped by network.
Use --network to restrict the list to a single network.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
					ContractName: contract,
					Group:        group,
				})
				if err != nil {
					return err
				}
				return render.NewDeploymentsRenderer(cmd.OutOrStdout(), a.Config.JSON).RenderDeploymentList(result)
			})
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "Filter by contract name")
	cmd.Flags().StringVar(&group, "group", "", "Filter by compose group")

	return cmd
}
