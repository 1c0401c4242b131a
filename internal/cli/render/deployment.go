package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// DeploymentRenderer renders the outcome of a single deployment
type DeploymentRenderer struct {
	out     io.Writer
	json    bool
	network *config.Network
}

// NewDeploymentRenderer creates a new deployment renderer. network is used
// for explorer links and may be nil.
func NewDeploymentRenderer(out io.Writer, jsonOutput bool, network *config.Network) *DeploymentRenderer {
	return &DeploymentRenderer{
		out:     out,
		json:    jsonOutput,
		network: network,
	}
}

// Render prints "<Contract> deployed to: <address>" followed by details
func (r *DeploymentRenderer) Render(result *models.DeploymentResult) error {
	if r.json {
		return WriteJSON(r.out, result)
	}

	fmt.Fprintf(r.out, "%s deployed to: %s\n", models.ShortContractName(result.Request.ContractIdentifier()), addressStyle.Sprint(result.ContractAddress.Hex()))
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Contract:     "), result.Request.ContractIdentifier())
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Network:      "), result.Request.Network())
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Transaction:  "), result.TxHash.Hex())
	fmt.Fprintf(r.out, "  %s %d (%d confirmations)\n", labelStyle.Sprint("Block:        "), result.BlockNumber, result.Confirmations)
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Deployer:     "), result.Deployer.Hex())
	fmt.Fprintf(r.out, "  %s %d\n", labelStyle.Sprint("Gas used:     "), result.GasUsed)
	if r.network != nil && r.network.ExplorerURL != "" {
		fmt.Fprintf(r.out, "  %s %s/address/%s\n", labelStyle.Sprint("Explorer:     "), r.network.ExplorerURL, result.ContractAddress.Hex())
	}
	return nil
}

// DeploymentErrorView is the JSON shape of a failed deployment
type DeploymentErrorView struct {
	Error       string                    `json:"error"`
	Outcome     string                    `json:"outcome"`
	SafeToRetry bool                      `json:"safeToRetry"`
	TxHash      string                    `json:"txHash,omitempty"`
	Handle      *models.TransactionHandle `json:"handle,omitempty"`
}

// NewDeploymentErrorView classifies err for display
func NewDeploymentErrorView(err error) DeploymentErrorView {
	outcome := domain.ClassifyOutcome(err)
	view := DeploymentErrorView{
		Error:       err.Error(),
		Outcome:     outcome.String(),
		SafeToRetry: outcome.SafeToRetry(),
	}

	var ambiguous *domain.AmbiguousSubmissionError
	var timeout *domain.ConfirmationTimeoutError
	var reverted *domain.ConstructorRevertedError
	switch {
	case errors.As(err, &timeout):
		view.TxHash = timeout.Handle.TxHash.Hex()
		view.Handle = &timeout.Handle
	case errors.As(err, &reverted):
		view.TxHash = reverted.Handle.TxHash.Hex()
	case errors.As(err, &ambiguous):
		view.TxHash = ambiguous.TxHash.Hex()
	}
	return view
}

// RenderError prints err with a hint about what happened on-chain
func (r *DeploymentRenderer) RenderError(err error) error {
	view := NewDeploymentErrorView(err)
	if r.json {
		return WriteJSON(r.out, view)
	}

	fmt.Fprintln(r.out, FormatError(view.Error))
	if view.TxHash != "" {
		fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Transaction:"), view.TxHash)
	}
	fmt.Fprintf(r.out, "  %s %s\n", color.New(color.Bold).Sprint(title(view.Outcome)+":"), hintStyle.Sprint(OutcomeHint(domain.ClassifyOutcome(err))))
	return nil
}
