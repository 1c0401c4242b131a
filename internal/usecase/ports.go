package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// ChainConnector binds a network name to a chain client. It must never
// fall back to a different network than the one requested.
type ChainConnector interface {
	Connect(ctx context.Context, network string) (ChainClient, error)
}

// ChainClient submits transactions and reports their status. It owns the
// account nonce: PrepareDeployment assigns the next nonce for from.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	// PrepareDeployment returns an unsigned contract creation transaction
	PrepareDeployment(ctx context.Context, from common.Address, initCode []byte) (*types.Transaction, error)
	// Submit broadcasts a signed transaction once. Errors wrapping
	// domain.ErrTxRejected mean the node refused it; any other error
	// leaves delivery unknown.
	Submit(ctx context.Context, signedTx *types.Transaction) (*models.TransactionHandle, error)
	Status(ctx context.Context, handle models.TransactionHandle) (*models.TxStatus, error)
}

// SecretProvider resolves signing material. An empty override selects the
// configured default.
type SecretProvider interface {
	Resolve(ctx context.Context, override string) (*models.SecretMaterial, error)
}

// AccountLister lists configured accounts without exposing key material
type AccountLister interface {
	ListAccounts(ctx context.Context) []AccountInfo
}

// AccountInfo describes one configured account
type AccountInfo struct {
	Name    string
	Type    config.AccountType
	Address common.Address
	Default bool
	Error   error
}

// ArtifactRepository finds compiled contracts
type ArtifactRepository interface {
	FindArtifact(ctx context.Context, identifier string) (*models.Artifact, error)
	ListArtifacts(ctx context.Context) ([]*models.Artifact, error)
}

// ConstructorEncoder builds creation code from an artifact and arguments
type ConstructorEncoder interface {
	EncodeDeployment(artifact *models.Artifact, args []any) ([]byte, error)
}

// DeploymentRepository persists confirmed deployments
type DeploymentRepository interface {
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error)
}

// DeploymentLookup finds single registry records
type DeploymentLookup interface {
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error)
}

// LocalConfigRepository manages local configuration persistence
type LocalConfigRepository interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
}

// ChainIDProber asks an endpoint which chain it serves
type ChainIDProber interface {
	ProbeChainID(ctx context.Context, rpcURL string) (uint64, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    ExecutionStage
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ExecutionStage represents a stage in the deployment process
type ExecutionStage string

const (
	StageResolvingSigner ExecutionStage = "Resolving signer"
	StageConnecting      ExecutionStage = "Connecting"
	StagePreparing       ExecutionStage = "Preparing"
	StageSubmitting      ExecutionStage = "Submitting"
	StageConfirming      ExecutionStage = "Confirming"
	StageCompleted       ExecutionStage = "Completed"
	StageFailed          ExecutionStage = "Failed"

	// Compose stages
	StagePlanCreated   ExecutionStage = "Plan created"
	StageStepStarting  ExecutionStage = "Step starting"
	StageStepSkipped   ExecutionStage = "Step skipped"
	StageStepCompleted ExecutionStage = "Step completed"
)
