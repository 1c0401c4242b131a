package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/progress"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/cli/render"
	"github.com/trebuchet-org/zkdeploy/internal/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
	// progressKey holds the spinner reporter when one is in use
	progressKey contextKey = "progress"
)

// Exit codes reported by Execute
const (
	ExitOK              = 0
	ExitNothingHappened = 1
	ExitReverted        = 2
	ExitOutcomeUnknown  = 3
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zkdeploy",
		Short: "Deploy compiled contracts to zkSync and EVM networks",
		Long: `zkdeploy deploys compiled contract artifacts to a configured network.
Each deployment is submitted at most once and then awaited until it reaches
the configured number of confirmations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			projectRoot, err := config.FindProjectRoot(cwd)
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			ctx := cmd.Context()
			var sink usecase.ProgressSink = usecase.NopProgress{}
			if !v.GetBool("json") {
				reporter := progress.NewSpinnerProgressReporter(cmd.ErrOrStderr())
				cmd.SetOut(reporter.PauseOnWrite(cmd.OutOrStdout()))
				ctx = context.WithValue(ctx, progressKey, reporter)
				sink = reporter
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			cmd.SetContext(context.WithValue(ctx, appKey, appInstance))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g. zkSyncTestnet, localhost)")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Overall command timeout (default from config, 10m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, c := range []*cobra.Command{NewDeployCmd(), NewComposeCmd(), NewWaitCmd()} {
		c.GroupID = "main"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewListCmd(), NewShowCmd(), NewNetworksCmd(), NewAccountsCmd(), NewConfigCmd()} {
		c.GroupID = "management"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	appInstance := ctx.Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// runWithApp calls fn with the app under the configured timeout. The
// timeout, connections and spinner are released however fn returns.
func runWithApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer stopProgress(cmd)

	if a.Config.Timeout > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.Timeout)
		defer cancel()
		cmd.SetContext(ctx)
	}
	return fn(a)
}

func stopProgress(cmd *cobra.Command) {
	if r, ok := cmd.Context().Value(progressKey).(*progress.SpinnerProgressReporter); ok {
		r.Stop()
	}
}

// reportedError marks an error that a command has already rendered
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch domain.ClassifyOutcome(err) {
	case domain.OutcomeReverted:
		return ExitReverted
	case domain.OutcomeUnknown:
		return ExitOutcomeUnknown
	default:
		return ExitNothingHappened
	}
}

// Execute runs the root command and returns the exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(stderr, render.FormatError(err.Error()))
		}
	}
	return ExitCode(err)
}
