package render

import (
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*models.DeploymentResult] = (*DeploymentRenderer)(nil)
	_ Renderer[[]usecase.AccountInfo]    = (*AccountsRenderer)(nil)
)
