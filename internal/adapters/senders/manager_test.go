package senders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
)

const (
	// anvil development accounts #0 and #1
	key0     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	address0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	key1     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	address1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	testMnemonic = "test test test test test test test test test test test junk"
)

func newTestService(t *testing.T, project *config.ProjectConfig, env map[string]string) *Service {
	t.Helper()
	cfg := &config.RuntimeConfig{
		ProjectRoot: t.TempDir(),
		Project:     project,
		Deploy:      config.DeploySettings{DefaultAccount: project.DefaultAccount},
	}
	s := NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("PRIVATE_KEY when nothing is configured", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{}, map[string]string{"PRIVATE_KEY": key0})

		material, err := s.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, address0, material.Address().Hex())
		assert.Equal(t, "env:PRIVATE_KEY", material.Source())
	})

	t.Run("default account wins over PRIVATE_KEY", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{
			DefaultAccount: "deployer",
			Accounts: map[string]config.AccountConfig{
				"deployer": {Type: config.AccountTypePrivateKey, PrivateKey: "${DEPLOYER_KEY}"},
			},
		}, map[string]string{"PRIVATE_KEY": key0, "DEPLOYER_KEY": key1})

		material, err := s.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, address1, material.Address().Hex())
		assert.Equal(t, "deployer", material.Source())
	})

	t.Run("single account is the implicit default", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{
			Accounts: map[string]config.AccountConfig{
				"dev": {Type: config.AccountTypeMnemonic, Mnemonic: testMnemonic},
			},
		}, nil)

		material, err := s.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, address0, material.Address().Hex())
	})

	t.Run("override by name is case-insensitive", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{
			Accounts: map[string]config.AccountConfig{
				"Ops": {Type: config.AccountTypePrivateKey, PrivateKey: key1},
			},
		}, nil)

		material, err := s.Resolve(ctx, "ops")
		require.NoError(t, err)
		assert.Equal(t, address1, material.Address().Hex())
	})

	t.Run("override from environment", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{}, map[string]string{"OPS_KEY": key1})

		material, err := s.Resolve(ctx, "env:OPS_KEY")
		require.NoError(t, err)
		assert.Equal(t, address1, material.Address().Hex())
	})

	t.Run("mnemonic with derivation path", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{
			Accounts: map[string]config.AccountConfig{
				"second": {Type: config.AccountTypeMnemonic, Mnemonic: "${MNEMONIC}", DerivationPath: "m/44'/60'/0'/0/1"},
			},
		}, map[string]string{"MNEMONIC": testMnemonic})

		material, err := s.Resolve(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, address1, material.Address().Hex())
	})

	t.Run("keystore", func(t *testing.T) {
		s := newTestService(t, &config.ProjectConfig{}, map[string]string{"KS_PASSWORD": "hunter2"})
		path := writeKeystore(t, s.projectRoot, key1, "hunter2")
		rel, err := filepath.Rel(s.projectRoot, path)
		require.NoError(t, err)
		s.accounts = map[string]config.AccountConfig{
			"cold": {Type: config.AccountTypeKeystore, Keystore: rel, Password: "${KS_PASSWORD}"},
		}

		material, err := s.Resolve(ctx, "cold")
		require.NoError(t, err)
		assert.Equal(t, address1, material.Address().Hex())

		s.getenv = func(string) string { return "wrong" }
		_, err = s.Resolve(ctx, "cold")
		var credErr *domain.CredentialError
		require.ErrorAs(t, err, &credErr)
		assert.Contains(t, err.Error(), "failed to decrypt keystore")
	})

	failures := []struct {
		name     string
		project  *config.ProjectConfig
		env      map[string]string
		override string
		is       error
		contains string
	}{
		{
			name:     "unknown override",
			project:  &config.ProjectConfig{},
			override: "ghost",
			is:       domain.ErrNotFound,
		},
		{
			name:    "nothing configured",
			project: &config.ProjectConfig{},
			is:      domain.ErrNoSecretMaterial,
		},
		{
			name:     "unset env var",
			project:  &config.ProjectConfig{},
			override: "env:MISSING",
			is:       domain.ErrNoSecretMaterial,
		},
		{
			name: "empty expanded key",
			project: &config.ProjectConfig{Accounts: map[string]config.AccountConfig{
				"deployer": {Type: config.AccountTypePrivateKey, PrivateKey: "${UNSET}"},
			}},
			override: "deployer",
			is:       domain.ErrNoSecretMaterial,
		},
		{
			name: "address mismatch",
			project: &config.ProjectConfig{Accounts: map[string]config.AccountConfig{
				"deployer": {Type: config.AccountTypePrivateKey, PrivateKey: key0, Address: address1},
			}},
			override: "deployer",
			contains: "configured address is " + address1,
		},
		{
			name: "missing default account",
			project: &config.ProjectConfig{
				DefaultAccount: "nope",
			},
			is: domain.ErrNotFound,
		},
		{
			name: "unsupported type",
			project: &config.ProjectConfig{Accounts: map[string]config.AccountConfig{
				"hw": {Type: "ledger"},
			}},
			override: "hw",
			contains: `unsupported account type "ledger"`,
		},
		{
			name: "bad derivation path",
			project: &config.ProjectConfig{Accounts: map[string]config.AccountConfig{
				"dev": {Type: config.AccountTypeMnemonic, Mnemonic: testMnemonic, DerivationPath: "m/x"},
			}},
			override: "dev",
			contains: "invalid derivation path",
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, tt.project, tt.env)
			_, err := s.Resolve(ctx, tt.override)

			var credErr *domain.CredentialError
			require.ErrorAs(t, err, &credErr)
			assert.Equal(t, tt.override, credErr.Signer)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestService_InvalidKeyIsNotEchoed(t *testing.T) {
	s := newTestService(t, &config.ProjectConfig{}, map[string]string{"PRIVATE_KEY": "0xnotakey-but-secret"})
	_, err := s.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "notakey-but-secret")
}

func TestService_RawKeyOverrideIsRefused(t *testing.T) {
	s := newTestService(t, &config.ProjectConfig{
		Accounts: map[string]config.AccountConfig{
			"deployer": {Type: config.AccountTypePrivateKey, PrivateKey: key1},
		},
	}, nil)

	for _, override := range []string{key0, key0[2:], " " + key0 + " "} {
		_, err := s.Resolve(context.Background(), override)

		var credErr *domain.CredentialError
		require.ErrorAs(t, err, &credErr)
		assert.ErrorIs(t, err, domain.ErrRawPrivateKey)
		assert.NotContains(t, err.Error(), key0[2:])
		assert.NotContains(t, credErr.Signer, key0[2:])
		assert.Contains(t, err.Error(), "env:NAME")
	}
}

func TestService_MaterialIsRedacted(t *testing.T) {
	s := newTestService(t, &config.ProjectConfig{}, map[string]string{"PRIVATE_KEY": key0})
	material, err := s.Resolve(context.Background(), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("signer", "secret", material)
	rendered := buf.String() + fmt.Sprintf("%v %+v %#v %s", material, material, material, material)
	assert.NotContains(t, rendered, key0[2:])
	assert.Contains(t, buf.String(), "[REDACTED]")

	material.Wipe()
	assert.True(t, material.Wiped())
}

func TestService_ListAccounts(t *testing.T) {
	s := newTestService(t, &config.ProjectConfig{
		DefaultAccount: "deployer",
	}, map[string]string{"DEPLOYER_KEY": key0})
	path := writeKeystore(t, s.projectRoot, key1, "pw")
	s.accounts = map[string]config.AccountConfig{
		"deployer": {Type: config.AccountTypePrivateKey, PrivateKey: "${DEPLOYER_KEY}"},
		"cold":     {Type: config.AccountTypeKeystore, Keystore: path},
		"broken":   {Type: config.AccountTypePrivateKey, PrivateKey: "${NOPE}"},
	}

	infos := s.ListAccounts(context.Background())
	require.Len(t, infos, 3)

	assert.Equal(t, "broken", infos[0].Name)
	assert.Error(t, infos[0].Error)

	assert.Equal(t, "cold", infos[1].Name)
	assert.NoError(t, infos[1].Error)
	assert.Equal(t, common.HexToAddress(address1), infos[1].Address)

	assert.Equal(t, "deployer", infos[2].Name)
	assert.True(t, infos[2].Default)
	assert.Equal(t, common.HexToAddress(address0), infos[2].Address)
}

func writeKeystore(t *testing.T, root, hexKey, password string) string {
	t.Helper()
	key, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)
	ks := keystore.NewKeyStore(filepath.Join(root, "keystore"), keystore.LightScryptN, keystore.LightScryptP)
	account, err := ks.ImportECDSA(key, password)
	require.NoError(t, err)
	return account.URL.Path
}
