package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewWaitCmd creates the wait command
func NewWaitCmd() *cobra.Command {
	var (
		contract string
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "wait <txhash>",
		Short: "Wait for a previously submitted deployment",
		Long: `Resume waiting for a deployment transaction, for example after a
confirmation timeout. Nothing is submitted; the transaction is looked up by
hash and awaited until it reaches the configured confirmations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				cfg := a.Config
				if !isTxHash(args[0]) {
					return fmt.Errorf("invalid transaction hash %q", args[0])
				}
				if cfg.NetworkName == "" {
					return fmt.Errorf("no network selected: pass --network or set ZKDEPLOY_NETWORK")
				}

				renderer := render.NewDeploymentRenderer(cmd.OutOrStdout(), cfg.JSON, cfg.Network)
				result, err := a.WaitDeployment.Run(ctx, usecase.WaitDeploymentParams{
					TxHash:   common.HexToHash(args[0]),
					Network:  cfg.NetworkName,
					Contract: contract,
				})
				if err != nil {
					if rerr := renderer.RenderError(err); rerr != nil {
						return rerr
					}
					return &reportedError{err: err}
				}

				if !noSave && contract != "" {
					if _, err := a.RegisterDeployment.Run(ctx, usecase.RegisterDeploymentParams{Result: result}); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), render.FormatWarning(fmt.Sprintf("deployment not recorded: %v", err)))
					}
				}
				return renderer.Render(result)
			})
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "Contract name to record the deployment under (nothing is recorded without it)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record the deployment in the registry")

	return cmd
}

func isTxHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
