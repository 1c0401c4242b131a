package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// confirmationWaiter polls a submitted transaction until it reaches the
// configured depth, fails, or the wait is abandoned. It is shared by
// DeployContract and WaitDeployment.
type confirmationWaiter struct {
	confirmations uint64
	pollInterval  time.Duration
	timeout       time.Duration
	progress      ProgressSink
	log           *slog.Logger
}

func newConfirmationWaiter(settings config.DeploySettings, progress ProgressSink, log *slog.Logger) *confirmationWaiter {
	w := &confirmationWaiter{
		confirmations: settings.Confirmations,
		pollInterval:  settings.PollInterval,
		timeout:       settings.ConfirmationTimeout,
		progress:      progress,
		log:           log,
	}
	if w.confirmations == 0 {
		w.confirmations = 1
	}
	if w.pollInterval <= 0 {
		w.pollInterval = config.DefaultPollInterval
	}
	if w.timeout <= 0 {
		w.timeout = config.DefaultConfirmationTimeout
	}
	return w
}

func (w *confirmationWaiter) await(
	ctx context.Context,
	client ChainClient,
	req *models.DeploymentRequest,
	handle models.TransactionHandle,
) (*models.DeploymentResult, error) {
	started := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	w.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageConfirming,
		Message: fmt.Sprintf("Waiting for %d confirmation(s) of %s", w.confirmations, handle.TxHash.Hex()),
		Spinner: true,
	})

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	lastState := models.TxStatePending
	var lastErr error
	for {
		status, err := client.Status(waitCtx, handle)
		switch {
		case err != nil:
			// Lookup failures are transient; the tx may still be in flight.
			if waitCtx.Err() == nil {
				w.log.Debug("status lookup failed", "tx", handle.TxHash.Hex(), "error", err)
				lastErr = err
			}
		case status.State == models.TxStateFailed:
			return nil, &domain.ConstructorRevertedError{
				Request: req,
				Handle:  handle,
				Receipt: status.Receipt,
				Reason:  status.RevertReason,
			}
		case status.State == models.TxStateConfirmed && status.Receipt != nil:
			lastState = status.State
			if status.Confirmations >= w.confirmations {
				return w.assemble(req, handle, status)
			}
			w.progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageConfirming,
				Message: fmt.Sprintf("%d/%d confirmations", status.Confirmations, w.confirmations),
				Spinner: true,
			})
		default:
			lastState = status.State
		}

		select {
		case <-waitCtx.Done():
			cause := ctx.Err()
			if cause == nil {
				cause = waitCtx.Err()
			}
			if lastErr != nil {
				cause = fmt.Errorf("%w (last lookup error: %v)", cause, lastErr)
			}
			return nil, &domain.ConfirmationTimeoutError{
				Request:   req,
				Handle:    handle,
				Waited:    time.Since(started),
				LastState: lastState,
				Cancelled: ctx.Err() != nil,
				Cause:     cause,
			}
		case <-ticker.C:
		}
	}
}

func (w *confirmationWaiter) assemble(req *models.DeploymentRequest, handle models.TransactionHandle, status *models.TxStatus) (*models.DeploymentResult, error) {
	receipt := status.Receipt
	if receipt.ContractAddress == (common.Address{}) {
		return nil, &domain.AmbiguousSubmissionError{
			Request: req,
			TxHash:  handle.TxHash,
			Cause:   fmt.Errorf("receipt for %s carries no contract address", handle.TxHash.Hex()),
		}
	}
	return &models.DeploymentResult{
		ContractAddress: receipt.ContractAddress,
		TxHash:          handle.TxHash,
		BlockNumber:     receipt.BlockNumber,
		Confirmations:   status.Confirmations,
		Deployer:        handle.From,
		ChainID:         handle.ChainID,
		GasUsed:         receipt.GasUsed,
		Request:         req,
	}, nil
}
