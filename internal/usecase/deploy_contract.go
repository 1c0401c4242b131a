package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// DeployContract resolves a signer, binds the requested network, submits a
// contract creation transaction at most once and waits for it to confirm.
type DeployContract struct {
	secrets   SecretProvider
	connector ChainConnector
	artifacts ArtifactRepository
	encoder   ConstructorEncoder
	locks     *SignerLocks
	waiter    *confirmationWaiter
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	secrets SecretProvider,
	connector ChainConnector,
	artifacts ArtifactRepository,
	encoder ConstructorEncoder,
	locks *SignerLocks,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		secrets:   secrets,
		connector: connector,
		artifacts: artifacts,
		encoder:   encoder,
		locks:     locks,
		waiter:    newConfirmationWaiter(cfg.Deploy, progress, log),
		progress:  progress,
		log:       log,
	}
}

// Run deploys the requested contract. It never resubmits: every error it
// returns can be classified with domain.ClassifyOutcome.
func (uc *DeployContract) Run(ctx context.Context, req *models.DeploymentRequest) (*models.DeploymentResult, error) {
	log := uc.log.With("contract", req.ContractIdentifier(), "network", req.Network())

	// 1. Signer resolution
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageResolvingSigner,
		Message: "Resolving signer",
		Spinner: true,
	})
	material, err := uc.resolveSecret(ctx, req.SignerOverride())
	if err != nil {
		return nil, uc.fail(ctx, err)
	}
	defer material.Wipe()
	log.Debug("resolved secret material", "secret", material)

	// 2. Network binding
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageConnecting,
		Message: fmt.Sprintf("Connecting to %s", req.Network()),
		Spinner: true,
	})
	client, err := uc.connector.Connect(ctx, req.Network())
	if err != nil {
		return nil, uc.fail(ctx, asNetworkError(req.Network(), err))
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, uc.fail(ctx, &domain.NetworkUnavailableError{Network: req.Network(), Cause: err})
	}

	signer, err := models.NewSigner(material, chainID)
	if err != nil {
		return nil, uc.fail(ctx, &domain.CredentialError{Signer: req.SignerOverride(), Cause: err})
	}
	log = log.With("deployer", signer.Address().Hex(), "chainId", chainID.Uint64())

	// Creation code
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StagePreparing,
		Message: fmt.Sprintf("Preparing %s", req.ContractIdentifier()),
		Spinner: true,
	})
	artifact, err := uc.artifacts.FindArtifact(ctx, req.ContractIdentifier())
	if err != nil {
		return nil, uc.fail(ctx, &domain.ArtifactError{Contract: req.ContractIdentifier(), Cause: err})
	}
	initCode, err := uc.encoder.EncodeDeployment(artifact, req.ConstructorArgs())
	if err != nil {
		return nil, uc.fail(ctx, &domain.ArtifactError{Contract: req.ContractIdentifier(), Cause: err})
	}

	// The lock covers nonce assignment through the end of the wait.
	release, err := uc.locks.Acquire(ctx, signer.LockKey())
	if err != nil {
		return nil, uc.fail(ctx, fmt.Errorf("waiting for signer %s: %w", signer.Address().Hex(), err))
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, uc.fail(ctx, fmt.Errorf("deployment of %s cancelled before submission: %w", req, err))
	}

	// 3. Submission
	unsigned, err := client.PrepareDeployment(ctx, signer.Address(), initCode)
	if err != nil {
		return nil, uc.fail(ctx, &domain.SubmissionRejectedError{Request: req, Cause: err})
	}
	signed, err := signer.SignTx(unsigned)
	if err != nil {
		return nil, uc.fail(ctx, &domain.SubmissionRejectedError{Request: req, Cause: fmt.Errorf("signing: %w", err)})
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Submitting %s", signed.Hash().Hex()),
		Spinner: true,
	})
	log.Info("submitting deployment", "tx", signed.Hash().Hex(), "nonce", signed.Nonce())
	handle, err := client.Submit(ctx, signed)
	if err != nil {
		if errors.Is(err, domain.ErrTxRejected) {
			return nil, uc.fail(ctx, &domain.SubmissionRejectedError{Request: req, Cause: err})
		}
		return nil, uc.fail(ctx, &domain.AmbiguousSubmissionError{Request: req, TxHash: signed.Hash(), Cause: err})
	}

	// 4-5. Confirmation wait and result assembly
	result, err := uc.waiter.await(ctx, client, req, *handle)
	if err != nil {
		return nil, uc.fail(ctx, err)
	}

	log.Info("deployment confirmed",
		"address", result.ContractAddress.Hex(),
		"block", result.BlockNumber,
		"confirmations", result.Confirmations)
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageCompleted,
		Message:  fmt.Sprintf("%s deployed to: %s", req.ContractIdentifier(), result.ContractAddress.Hex()),
		Metadata: result,
	})
	return result, nil
}

func (uc *DeployContract) resolveSecret(ctx context.Context, override string) (*models.SecretMaterial, error) {
	material, err := uc.secrets.Resolve(ctx, override)
	if err != nil {
		var credErr *domain.CredentialError
		if errors.As(err, &credErr) {
			return nil, err
		}
		return nil, &domain.CredentialError{Signer: override, Cause: err}
	}
	if material == nil || material.Wiped() {
		return nil, &domain.CredentialError{Signer: override, Cause: domain.ErrNoSecretMaterial}
	}
	return material, nil
}

func (uc *DeployContract) fail(ctx context.Context, err error) error {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageFailed,
		Message:  err.Error(),
		Metadata: domain.ClassifyOutcome(err),
	})
	return err
}

func asNetworkError(network string, err error) error {
	var netErr *domain.NetworkUnavailableError
	if errors.As(err, &netErr) {
		return err
	}
	return &domain.NetworkUnavailableError{Network: network, Cause: err}
}
