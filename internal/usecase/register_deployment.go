package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// RegisterDeploymentParams contains parameters for recording a deployment
type RegisterDeploymentParams struct {
	Result *models.DeploymentResult
	Group  string // optional, set for compose steps
	Step   string
}

// RegisterDeployment records confirmed deployments in the registry
type RegisterDeployment struct {
	repo DeploymentRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewRegisterDeployment creates a new RegisterDeployment use case
func NewRegisterDeployment(repo DeploymentRepository, log *slog.Logger) *RegisterDeployment {
	return &RegisterDeployment{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Run stores the record for a confirmed deployment. Records are keyed by
// network, contract and transaction, so recording twice overwrites.
func (uc *RegisterDeployment) Run(ctx context.Context, params RegisterDeploymentParams) (*models.Deployment, error) {
	if params.Result == nil || params.Result.Request == nil {
		return nil, fmt.Errorf("nothing to register")
	}

	record := models.NewDeploymentRecord(params.Result, uc.now())
	record.Group = params.Group
	record.Step = params.Step

	if err := uc.repo.SaveDeployment(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record deployment %s: %w", record.ID, err)
	}
	uc.log.Debug("deployment recorded", "id", record.ID, "address", record.Address)
	return record, nil
}
