package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

func TestDeploymentFilterMatches(t *testing.T) {
	dep := &models.Deployment{
		Network:      "zkSyncTestnet",
		ChainID:      280,
		ContractName: "contracts/Greeter.sol:Greeter",
		Group:        "core",
		Step:         "greeter",
	}

	tests := []struct {
		name   string
		filter DeploymentFilter
		want   bool
	}{
		{"empty filter", DeploymentFilter{}, true},
		{"network", DeploymentFilter{Network: "zkSyncTestnet"}, true},
		{"other network", DeploymentFilter{Network: "localhost"}, false},
		{"chain id", DeploymentFilter{ChainID: 324}, false},
		{"qualified name", DeploymentFilter{ContractName: "contracts/Greeter.sol:Greeter"}, true},
		{"short name any case", DeploymentFilter{ContractName: "greeter"}, true},
		{"other contract", DeploymentFilter{ContractName: "Token"}, false},
		{"group and step", DeploymentFilter{Group: "core", Step: "greeter"}, true},
		{"other step", DeploymentFilter{Group: "core", Step: "token"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(dep))
		})
	}
}

func TestShortContractName(t *testing.T) {
	assert.Equal(t, "Greeter", models.ShortContractName("contracts/Greeter.sol:Greeter"))
	assert.Equal(t, "Greeter", models.ShortContractName("Greeter"))
}
