package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage zkdeploy local config",
		Long: `Manage zkdeploy local config stored in .zkdeploy/config.local.json

The config defines defaults that apply when the matching flag is not
given. Environment variables (ZKDEPLOY_NETWORK, ...) take precedence.

Available subcommands:
  config           Show current config
  config set       Set a config value
  config remove    Remove a config value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.ShowConfig.Run(cmd.Context())
				if err != nil {
					return err
				}
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderConfig(result)
			})
		},
	}

	cmd.AddCommand(NewConfigSetCmd())
	cmd.AddCommand(NewConfigRemoveCmd())

	return cmd
}

// NewConfigSetCmd creates the config set subcommand
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a config value.
Available keys: network, default_account (account), confirmations,
confirmation_timeout (timeout)

Examples:
  zkdeploy config set network zkSyncTestnet
  zkdeploy config set account deployer
  zkdeploy config set confirmations 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{
					Key:   args[0],
					Value: args[1],
				})
				if err != nil {
					return err
				}
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
			})
		},
	}
}

// NewConfigRemoveCmd creates the config remove subcommand
func NewConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a config value",
		Long: `Remove a config value so the project default applies again.

Examples:
  zkdeploy config remove network
  zkdeploy config remove confirmations`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				result, err := a.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{Key: args[0]})
				if err != nil {
					return err
				}
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
			})
		},
	}
}
