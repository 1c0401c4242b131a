package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var noProbe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Long: `List networks from zkdeploy.toml and the built-in defaults. Each RPC
endpoint is queried for its chain ID unless --no-probe is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: !noProbe})
				if err != nil {
					return err
				}
				return render.NewNetworksRenderer(cmd.OutOrStdout(), a.Config.JSON).RenderNetworksList(result)
			})
		},
	}

	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "Do not contact the RPC endpoints")

	return cmd
}
