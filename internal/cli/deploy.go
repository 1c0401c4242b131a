package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		signer   string
		argsJSON string
		noSave   bool
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <Contract> [args...]",
		Short: "Deploy a compiled contract",
		Long: `Deploy a compiled contract to the selected network.

The contract is looked up by name or by its fully qualified
"path/File.sol:Name" identifier. Constructor arguments are given as
positional arguments or as a JSON array with --args-json.

The transaction is sent once and never resent. If the outcome is unknown
(exit code 3), check the chain or run "zkdeploy wait <txhash>" before
deploying again.`,
		Example: `  zkdeploy deploy Greeter "Hi there!" --network zkSyncTestnet
  zkdeploy deploy src/Token.sol:Token --args-json '["Token", "TKN", 1000000]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				ctorArgs, err := constructorArgs(args[1:], argsJSON)
				if err != nil {
					return err
				}
				return runDeploy(cmd, a, args[0], ctorArgs, signer, noSave, yes)
			})
		},
	}

	cmd.Flags().StringVar(&signer, "signer", "", "Account name or env:NAME to deploy with (default: configured default account)")
	cmd.Flags().StringVar(&argsJSON, "args-json", "", "Constructor arguments as a JSON array")
	cmd.Flags().Uint64("confirmations", 0, "Confirmations to wait for (default from config)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record the deployment in the registry")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runDeploy(cmd *cobra.Command, a *app.App, contractRef string, ctorArgs []any, signer string, noSave, yes bool) error {
	ctx := cmd.Context()
	cfg := a.Config
	renderer := render.NewDeploymentRenderer(cmd.OutOrStdout(), cfg.JSON, cfg.Network)

	if cfg.NetworkName == "" {
		return fmt.Errorf("no network selected: pass --network or set ZKDEPLOY_NETWORK")
	}

	artifact, err := a.ResolveContract.Run(ctx, contractRef)
	if err != nil {
		return err
	}

	if !yes && !cfg.NonInteractive && !cfg.JSON {
		stopProgress(cmd)
		ok, err := a.Selector.Confirm(ctx, fmt.Sprintf("Deploy %s to %s", artifact.Name, cfg.NetworkName))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Deployment cancelled")
			return nil
		}
	}

	req := models.NewDeploymentRequest(artifact.FullyQualifiedName(), cfg.NetworkName, ctorArgs, signer)
	result, err := a.DeployContract.Run(ctx, req)
	if err != nil {
		if rerr := renderer.RenderError(err); rerr != nil {
			return rerr
		}
		return &reportedError{err: err}
	}

	if !noSave {
		if _, err := a.RegisterDeployment.Run(ctx, usecase.RegisterDeploymentParams{Result: result}); err != nil {
			a.Log.Warn("deployment succeeded but was not recorded", "error", err)
			fmt.Fprintln(cmd.ErrOrStderr(), render.FormatWarning(fmt.Sprintf("deployment not recorded: %v", err)))
		}
	}

	return renderer.Render(result)
}

// constructorArgs merges positional args with a JSON array. Numbers in the
// JSON array are kept as json.Number so large integers survive.
func constructorArgs(positional []string, argsJSON string) ([]any, error) {
	if argsJSON != "" && len(positional) > 0 {
		return nil, fmt.Errorf("use either positional arguments or --args-json, not both")
	}
	if argsJSON != "" {
		dec := json.NewDecoder(bytes.NewBufferString(argsJSON))
		dec.UseNumber()
		var out []any
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("invalid --args-json: %w", err)
		}
		return out, nil
	}
	out := make([]any, len(positional))
	for i, arg := range positional {
		out[i] = arg
	}
	return out, nil
}
