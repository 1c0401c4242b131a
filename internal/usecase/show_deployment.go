package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// ShowDeploymentParams contains parameters for showing a deployment
type ShowDeploymentParams struct {
	// Registry ID, contract address or contract name
	DeploymentRef string
}

// ShowDeployment is the use case for showing deployment details
type ShowDeployment struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
	lookup DeploymentLookup
	sink   ProgressSink
}

// NewShowDeployment creates a new ShowDeployment use case
func NewShowDeployment(cfg *config.RuntimeConfig, repo DeploymentRepository, lookup DeploymentLookup, sink ProgressSink) *ShowDeployment {
	return &ShowDeployment{
		config: cfg,
		repo:   repo,
		lookup: lookup,
		sink:   sink,
	}
}

// Run resolves the reference in order: full ID, address, contract name.
// A contract name deployed more than once resolves to the latest record.
func (uc *ShowDeployment) Run(ctx context.Context, params ShowDeploymentParams) (*models.Deployment, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployment details",
		Spinner: true,
	})

	ref := strings.TrimSpace(params.DeploymentRef)
	if ref == "" {
		return nil, fmt.Errorf("deployment reference is required")
	}

	dep, err := uc.lookup.GetDeployment(ctx, ref)
	if err == nil {
		return dep, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	filter := domain.DeploymentFilter{Network: uc.config.NetworkName}

	if common.IsHexAddress(ref) {
		if uc.config.Network != nil && uc.config.Network.ChainID != 0 {
			return uc.lookup.GetDeploymentByAddress(ctx, uc.config.Network.ChainID, ref)
		}
		return uc.byAddress(ctx, filter, ref)
	}

	filter.ContractName = ref
	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(deployments) == 0 {
		return nil, fmt.Errorf("deployment %q: %w", ref, domain.ErrNotFound)
	}
	return deployments[len(deployments)-1], nil
}

func (uc *ShowDeployment) byAddress(ctx context.Context, filter domain.DeploymentFilter, address string) (*models.Deployment, error) {
	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, err
	}

	var matches []*models.Deployment
	for _, dep := range deployments {
		if strings.EqualFold(dep.Address, address) {
			matches = append(matches, dep)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("deployment at %s: %w", address, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		networks := make([]string, len(matches))
		for i, dep := range matches {
			networks[i] = dep.Network
		}
		return nil, fmt.Errorf("address %s is recorded on several networks (%s), pass --network", address, strings.Join(networks, ", "))
	}
}
