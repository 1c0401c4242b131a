package domain

import (
	"strings"

	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// DeploymentFilter defines filtering options for deployments
type DeploymentFilter struct {
	Network      string
	ChainID      uint64
	ContractName string
	Group        string
	Step         string
}

// Matches reports whether a deployment passes every set field of the filter
func (f DeploymentFilter) Matches(dep *models.Deployment) bool {
	if f.Network != "" && dep.Network != f.Network {
		return false
	}
	if f.ChainID != 0 && dep.ChainID != f.ChainID {
		return false
	}
	if f.ContractName != "" &&
		!strings.EqualFold(dep.ContractName, f.ContractName) &&
		!strings.EqualFold(models.ShortContractName(dep.ContractName), f.ContractName) {
		return false
	}
	if f.Group != "" && dep.Group != f.Group {
		return false
	}
	if f.Step != "" && dep.Step != f.Step {
		return false
	}
	return true
}
