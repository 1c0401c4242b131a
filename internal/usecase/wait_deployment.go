package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// TransactionLocator is implemented by chain clients that can rebuild a
// handle (sender, nonce) from a transaction hash.
type TransactionLocator interface {
	LocateTransaction(ctx context.Context, txHash common.Hash) (*models.TransactionHandle, error)
}

// WaitDeploymentParams identifies a previously submitted deployment
type WaitDeploymentParams struct {
	TxHash   common.Hash
	Network  string
	Contract string // optional, used in messages and the result
}

// WaitDeployment resumes the confirmation wait for a transaction that was
// submitted earlier, e.g. after a ConfirmationTimeoutError. It never submits.
type WaitDeployment struct {
	connector ChainConnector
	waiter    *confirmationWaiter
	progress  ProgressSink
}

// NewWaitDeployment creates a new WaitDeployment use case
func NewWaitDeployment(cfg *config.RuntimeConfig, connector ChainConnector, progress ProgressSink, log *slog.Logger) *WaitDeployment {
	return &WaitDeployment{
		connector: connector,
		waiter:    newConfirmationWaiter(cfg.Deploy, progress, log),
		progress:  progress,
	}
}

// Run waits for the transaction and assembles its deployment result
func (uc *WaitDeployment) Run(ctx context.Context, params WaitDeploymentParams) (*models.DeploymentResult, error) {
	if params.TxHash == (common.Hash{}) {
		return nil, fmt.Errorf("transaction hash is required")
	}
	contract := params.Contract
	if contract == "" {
		contract = "contract"
	}
	req := models.NewDeploymentRequest(contract, params.Network, nil, "")

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageConnecting,
		Message: fmt.Sprintf("Connecting to %s", params.Network),
		Spinner: true,
	})
	client, err := uc.connector.Connect(ctx, params.Network)
	if err != nil {
		return nil, asNetworkError(params.Network, err)
	}

	handle := &models.TransactionHandle{TxHash: params.TxHash, Network: params.Network}
	if locator, ok := client.(TransactionLocator); ok {
		located, err := locator.LocateTransaction(ctx, params.TxHash)
		if err != nil {
			return nil, fmt.Errorf("looking up %s: %w", params.TxHash.Hex(), err)
		}
		handle = located
		handle.Network = params.Network
	} else {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, &domain.NetworkUnavailableError{Network: params.Network, Cause: err}
		}
		handle.ChainID = chainID.Uint64()
	}

	return uc.waiter.await(ctx, client, req, *handle)
}
