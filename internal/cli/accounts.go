package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
)

// NewAccountsCmd creates the accounts command
func NewAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List configured signing accounts",
		Long: `List the accounts from zkdeploy.toml and $PRIVATE_KEY with their
addresses. Key material is never printed. The default account is marked *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				accounts, err := a.ListAccounts.Run(cmd.Context())
				if err != nil {
					return err
				}
				return render.NewAccountsRenderer(cmd.OutOrStdout(), a.Config.JSON).Render(accounts)
			})
		},
	}
}
