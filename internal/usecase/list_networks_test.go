package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

type staticResolver map[string]*config.Network

func (r staticResolver) GetNetworks(context.Context) []string {
	return []string{"broken", "local", "zkSyncTestnet"}
}

func (r staticResolver) ResolveNetwork(_ context.Context, name string) (*config.Network, error) {
	n, ok := r[name]
	if !ok {
		return nil, domain.ErrUnknownNetwork
	}
	return n, nil
}

type staticProber map[string]uint64

func (p staticProber) ProbeChainID(_ context.Context, rpcURL string) (uint64, error) {
	id, ok := p[rpcURL]
	if !ok {
		return 0, errors.New("connection refused")
	}
	return id, nil
}

func TestListNetworks(t *testing.T) {
	resolver := staticResolver{
		"local":         {Name: "local", RPCURL: "http://localhost:8011", ChainID: 270},
		"zkSyncTestnet": {Name: "zkSyncTestnet", RPCURL: "https://zksync2-testnet.zksync.dev", ChainID: 280},
	}
	prober := staticProber{"https://zksync2-testnet.zksync.dev": 280, "http://localhost:8011": 9}

	t.Run("without probing", func(t *testing.T) {
		uc := usecase.NewListNetworks(resolver, prober)
		result, err := uc.Run(context.Background(), usecase.ListNetworksParams{})

		require.NoError(t, err)
		require.Len(t, result.Networks, 3)
		assert.ErrorIs(t, result.Networks[0].Error, domain.ErrUnknownNetwork)
		assert.NoError(t, result.Networks[1].Error)
		assert.Zero(t, result.Networks[2].ReportedChainID)
	})

	t.Run("with probing", func(t *testing.T) {
		uc := usecase.NewListNetworks(resolver, prober)
		result, err := uc.Run(context.Background(), usecase.ListNetworksParams{Probe: true})

		require.NoError(t, err)
		require.Len(t, result.Networks, 3)
		assert.ErrorIs(t, result.Networks[1].Error, domain.ErrChainIDMismatch)
		assert.Equal(t, uint64(9), result.Networks[1].ReportedChainID)
		assert.NoError(t, result.Networks[2].Error)
		assert.Equal(t, uint64(280), result.Networks[2].ReportedChainID)
	})
}

type staticAccounts []usecase.AccountInfo

func (a staticAccounts) ListAccounts(context.Context) []usecase.AccountInfo { return a }

func TestListAccounts(t *testing.T) {
	uc := usecase.NewListAccounts(staticAccounts{
		{Name: "ops", Type: config.AccountTypeKeystore},
		{Name: "deployer", Type: config.AccountTypePrivateKey},
		{Name: "zeta", Type: config.AccountTypeMnemonic, Default: true},
	})

	accounts, err := uc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "zeta", accounts[0].Name)
	assert.Equal(t, "deployer", accounts[1].Name)
	assert.Equal(t, "ops", accounts[2].Name)
}
