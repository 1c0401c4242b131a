package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// MockDeploymentRepository is a mock implementation of DeploymentRepository
type MockDeploymentRepository struct {
	mock.Mock
}

func (m *MockDeploymentRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("list all deployments", func(t *testing.T) {
		deployments := []*models.Deployment{
			{
				ID:           "zkSyncTestnet/MyToken:0x02",
				Network:      "zkSyncTestnet",
				ContractName: "MyToken",
				Address:      "0x2222222222222222222222222222222222222222",
				CreatedAt:    now,
			},
			{
				ID:           "local/MyToken:0x03",
				Network:      "local",
				ContractName: "MyToken",
				Address:      "0x3333333333333333333333333333333333333333",
				CreatedAt:    now,
			},
			{
				ID:           "zkSyncTestnet/MyToken:0x01",
				Network:      "zkSyncTestnet",
				ContractName: "MyToken",
				Address:      "0x1111111111111111111111111111111111111111",
				CreatedAt:    now.Add(-time.Hour),
			},
			{
				ID:           "zkSyncTestnet/MultiSigWallet:0x04",
				Network:      "zkSyncTestnet",
				ContractName: "MultiSigWallet",
				Address:      "0x4444444444444444444444444444444444444444",
				CreatedAt:    now,
			},
		}

		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{}).Return(deployments, nil)
		progress := &recordingSink{}

		cfg := testConfig()
		cfg.NetworkName = ""
		uc := usecase.NewListDeployments(cfg, repo, progress)
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})

		require.NoError(t, err)
		require.Len(t, result.Deployments, 4)
		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 3, result.Summary.ByNetwork["zkSyncTestnet"])
		assert.Equal(t, 1, result.Summary.ByNetwork["local"])
		assert.Equal(t, 3, result.Summary.ByContract["MyToken"])

		assert.Equal(t, []string{
			"local/MyToken:0x03",
			"zkSyncTestnet/MultiSigWallet:0x04",
			"zkSyncTestnet/MyToken:0x01",
			"zkSyncTestnet/MyToken:0x02",
		}, []string{
			result.Deployments[0].ID,
			result.Deployments[1].ID,
			result.Deployments[2].ID,
			result.Deployments[3].ID,
		})

		require.Len(t, progress.events, 1)
		assert.Equal(t, usecase.ExecutionStage("loading"), progress.events[0].Stage)
		repo.AssertExpectations(t)
	})

	t.Run("filters by runtime network", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		expected := domain.DeploymentFilter{Network: "zkSyncTestnet", ContractName: "MyToken", Group: "core"}
		repo.On("ListDeployments", ctx, expected).Return([]*models.Deployment{}, nil)

		uc := usecase.NewListDeployments(testConfig(), repo, usecase.NopProgress{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{ContractName: "MyToken", Group: "core"})

		require.NoError(t, err)
		assert.Empty(t, result.Deployments)
		assert.Equal(t, 0, result.Summary.Total)
		assert.Empty(t, result.Summary.ByNetwork)
		repo.AssertExpectations(t)
	})
}
