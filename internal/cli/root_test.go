package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/app"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

func TestExitCode(t *testing.T) {
	req := models.NewDeploymentRequest("Greeter", "zkSyncTestnet", nil, "")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitNothingHappened},
		{"credential", &domain.CredentialError{Cause: domain.ErrNoSecretMaterial}, ExitNothingHappened},
		{"network", &domain.NetworkUnavailableError{Network: "x", Cause: domain.ErrUnknownNetwork}, ExitNothingHappened},
		{"reverted", &domain.ConstructorRevertedError{Request: req}, ExitReverted},
		{"ambiguous", &domain.AmbiguousSubmissionError{Request: req, Cause: errors.New("eof")}, ExitOutcomeUnknown},
		{"timeout", &domain.ConfirmationTimeoutError{Request: req}, ExitOutcomeUnknown},
		{"wrapped and reported", &reportedError{err: fmt.Errorf("deploy: %w", &domain.ConfirmationTimeoutError{Request: req})}, ExitOutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestConstructorArgs(t *testing.T) {
	t.Run("positional args stay strings", func(t *testing.T) {
		args, err := constructorArgs([]string{"Hi there!", "42"}, "")
		require.NoError(t, err)
		assert.Equal(t, []any{"Hi there!", "42"}, args)
	})

	t.Run("json keeps big numbers exact", func(t *testing.T) {
		args, err := constructorArgs(nil, `["Token", 1000000000000000000000000, ["0x01", "0x02"], true]`)
		require.NoError(t, err)
		require.Len(t, args, 4)
		assert.Equal(t, json.Number("1000000000000000000000000"), args[1])
		assert.Equal(t, []any{"0x01", "0x02"}, args[2])
		assert.Equal(t, true, args[3])
	})

	t.Run("rejects both forms", func(t *testing.T) {
		_, err := constructorArgs([]string{"a"}, `["b"]`)
		assert.Error(t, err)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := constructorArgs(nil, `{"a": 1}`)
		assert.ErrorContains(t, err, "--args-json")
	})

	t.Run("no args", func(t *testing.T) {
		args, err := constructorArgs(nil, "")
		require.NoError(t, err)
		assert.Empty(t, args)
	})
}

func TestIsTxHash(t *testing.T) {
	assert.True(t, isTxHash(common.HexToHash("0xabc").Hex()))
	assert.False(t, isTxHash("0xabc"))
	assert.False(t, isTxHash("not-a-hash"))
}

// runCLI executes the root command inside a fresh project directory
func TestRunWithAppReleasesTimeout(t *testing.T) {
	a := &app.App{Config: &config.RuntimeConfig{Timeout: time.Hour}}

	for _, tt := range []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "failure", err: errors.New("boom")},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetContext(context.WithValue(context.Background(), appKey, a))

			var runCtx context.Context
			err := runWithApp(cmd, func(*app.App) error {
				runCtx = cmd.Context()
				_, hasDeadline := runCtx.Deadline()
				assert.True(t, hasDeadline)
				assert.NoError(t, runCtx.Err())
				return tt.err
			})

			assert.Equal(t, tt.err, err)
			require.NotNil(t, runCtx)
			assert.ErrorIs(t, runCtx.Err(), context.Canceled)
		})
	}
}

func runCLI(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("ZKDEPLOY_NETWORK", "")
	t.Setenv("PRIVATE_KEY", "")

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeProject(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zkdeploy.toml"), []byte(contents), 0o644))
	return dir
}

func TestExecute(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		code, stdout, _ := runCLI(t, t.TempDir(), "version")
		assert.Equal(t, ExitOK, code)
		assert.Contains(t, stdout, "zkdeploy version")
	})

	t.Run("unknown command", func(t *testing.T) {
		code, _, stderr := runCLI(t, t.TempDir(), "frobnicate")
		assert.Equal(t, ExitNothingHappened, code)
		assert.Contains(t, stderr, "Unknown command")
	})

	t.Run("deploy requires a network", func(t *testing.T) {
		code, _, stderr := runCLI(t, t.TempDir(), "deploy", "Greeter", "--non-interactive")
		assert.Equal(t, ExitNothingHappened, code)
		assert.Contains(t, stderr, "No network selected")
	})

	t.Run("networks lists built-ins without probing", func(t *testing.T) {
		code, stdout, _ := runCLI(t, t.TempDir(), "networks", "--no-probe", "--json")
		require.Equal(t, ExitOK, code)

		var networks []map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &networks))
		var names []string
		for _, n := range networks {
			names = append(names, n["name"].(string))
		}
		assert.Contains(t, names, "zkSyncTestnet")
		assert.Contains(t, names, "localhost")
	})

	t.Run("accounts never prints keys", func(t *testing.T) {
		dir := writeProject(t, `
default_account = "deployer"

[accounts.deployer]
type = "private_key"
private_key = "${DEPLOYER_KEY}"
`)
		key := "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		t.Setenv("DEPLOYER_KEY", key)

		code, stdout, _ := runCLI(t, dir, "accounts", "--json")
		require.Equal(t, ExitOK, code)
		assert.Contains(t, stdout, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
		assert.Contains(t, stdout, `"default": true`)
		assert.NotContains(t, stdout, key[2:])
	})

	t.Run("list on an empty registry", func(t *testing.T) {
		code, stdout, _ := runCLI(t, t.TempDir(), "list")
		assert.Equal(t, ExitOK, code)
		assert.Contains(t, stdout, "No deployments found")
	})

	t.Run("config set feeds later commands", func(t *testing.T) {
		dir := t.TempDir()

		code, stdout, _ := runCLI(t, dir, "config", "set", "network", "zksynctestnet")
		require.Equal(t, ExitOK, code)
		assert.Contains(t, stdout, "Set network to: zkSyncTestnet")
		assert.FileExists(t, filepath.Join(dir, ".zkdeploy", "config.local.json"))

		code, stdout, _ = runCLI(t, dir, "config")
		require.Equal(t, ExitOK, code)
		assert.Contains(t, stdout, "zkSyncTestnet")

		code, _, stderr := runCLI(t, dir, "deploy", "Greeter", "--non-interactive", "--json")
		assert.Equal(t, ExitNothingHappened, code)
		assert.NotContains(t, stderr, "No network selected")

		code, _, _ = runCLI(t, dir, "config", "remove", "network")
		require.Equal(t, ExitOK, code)
		code, _, stderr = runCLI(t, dir, "deploy", "Greeter", "--non-interactive", "--json")
		assert.Equal(t, ExitNothingHappened, code)
		assert.Contains(t, stderr, "No network selected")
	})

	t.Run("config rejects unknown networks", func(t *testing.T) {
		code, _, stderr := runCLI(t, t.TempDir(), "config", "set", "network", "mainnet")
		assert.Equal(t, ExitNothingHappened, code)
		assert.Contains(t, stderr, "Unknown network: mainnet")
	})
}
