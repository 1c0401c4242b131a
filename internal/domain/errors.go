package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrNoSecretMaterial is returned when no signing key is configured
	ErrNoSecretMaterial = errors.New("no secret material configured")

	// ErrRawPrivateKey is returned when a private key is passed as a signer reference
	ErrRawPrivateKey = errors.New("raw private keys are not accepted as a signer; use an account name or env:NAME")

	// ErrUnknownNetwork is returned when a network name is not configured
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrChainIDMismatch is returned when an RPC endpoint serves a different chain
	ErrChainIDMismatch = errors.New("chain ID mismatch")

	// ErrContractNotFound is returned when no artifact matches an identifier
	ErrContractNotFound = errors.New("contract not found")

	// ErrAmbiguousContract is returned when several artifacts match an identifier
	ErrAmbiguousContract = errors.New("ambiguous contract identifier")

	// ErrUnlinkedLibraries is returned for bytecode with library placeholders
	ErrUnlinkedLibraries = errors.New("bytecode has unlinked libraries")

	// ErrInvalidArgument is returned when constructor args don't match the ABI
	ErrInvalidArgument = errors.New("invalid constructor argument")

	// ErrTxRejected marks a submission the node answered and refused
	ErrTxRejected = errors.New("transaction rejected by node")
)

// Outcome tells a caller what a failed deployment left behind on-chain.
type Outcome int

const (
	// OutcomeNothingHappened means no transaction reached the network.
	OutcomeNothingHappened Outcome = iota
	// OutcomeReverted means the transaction was mined and reverted, so no
	// contract exists.
	OutcomeReverted
	// OutcomeUnknown means a transaction may have landed; check on-chain
	// state before submitting again.
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNothingHappened:
		return "nothing happened"
	case OutcomeReverted:
		return "reverted"
	case OutcomeUnknown:
		return "outcome unknown"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SafeToRetry reports whether resubmitting cannot produce a second instance
func (o Outcome) SafeToRetry() bool {
	return o != OutcomeUnknown
}

type outcomer interface {
	Outcome() Outcome
}

// ClassifyOutcome walks the error chain for a typed deployment error.
// Errors without one come from before submission and are classified as
// OutcomeNothingHappened.
func ClassifyOutcome(err error) Outcome {
	var o outcomer
	if errors.As(err, &o) {
		return o.Outcome()
	}
	return OutcomeNothingHappened
}

// CredentialError means no signing material could be resolved. It points
// at misconfiguration and is never retried.
type CredentialError struct {
	Signer string // override that was requested, "" for the default
	Cause  error
}

func (e *CredentialError) Error() string {
	name := models.RedactSigner(e.Signer)
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("credential error: cannot resolve %s signer: %v", name, e.Cause)
}

func (e *CredentialError) Unwrap() error    { return e.Cause }
func (e *CredentialError) Outcome() Outcome { return OutcomeNothingHappened }

// NetworkUnavailableError means the requested network could not be bound.
type NetworkUnavailableError struct {
	Network string
	Cause   error
}

func (e *NetworkUnavailableError) Error() string {
	return fmt.Sprintf("network %q unavailable: %v", e.Network, e.Cause)
}

func (e *NetworkUnavailableError) Unwrap() error    { return e.Cause }
func (e *NetworkUnavailableError) Outcome() Outcome { return OutcomeNothingHappened }

// ArtifactError means the contract could not be loaded or encoded
type ArtifactError struct {
	Contract string
	Cause    error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("cannot prepare %s: %v", e.Contract, e.Cause)
}

func (e *ArtifactError) Unwrap() error    { return e.Cause }
func (e *ArtifactError) Outcome() Outcome { return OutcomeNothingHappened }

// SubmissionRejectedError means the node definitively refused the
// transaction (e.g. insufficient funds) or it could not be built.
type SubmissionRejectedError struct {
	Request *models.DeploymentRequest
	Cause   error
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("deployment of %s rejected: %v", e.Request, e.Cause)
}

func (e *SubmissionRejectedError) Unwrap() error    { return e.Cause }
func (e *SubmissionRejectedError) Outcome() Outcome { return OutcomeNothingHappened }

// AmbiguousSubmissionError means the transaction may or may not have been
// accepted. TxHash is the locally computed hash of the signed transaction
// and can be looked up before deciding to resubmit.
type AmbiguousSubmissionError struct {
	Request *models.DeploymentRequest
	TxHash  common.Hash
	Cause   error
}

func (e *AmbiguousSubmissionError) Error() string {
	return fmt.Sprintf("submission of %s is ambiguous (tx %s may have been broadcast): %v",
		e.Request, e.TxHash.Hex(), e.Cause)
}

func (e *AmbiguousSubmissionError) Unwrap() error    { return e.Cause }
func (e *AmbiguousSubmissionError) Outcome() Outcome { return OutcomeUnknown }

// ConfirmationTimeoutError means waiting stopped before the transaction
// reached the configured depth. Handle can be used to resume polling.
type ConfirmationTimeoutError struct {
	Request   *models.DeploymentRequest
	Handle    models.TransactionHandle
	Waited    time.Duration
	LastState models.TxState
	Cancelled bool // the caller's context ended rather than our own deadline
	Cause     error
}

func (e *ConfirmationTimeoutError) Error() string {
	var b strings.Builder
	if e.Cancelled {
		b.WriteString("confirmation wait cancelled")
	} else {
		b.WriteString("timed out waiting for confirmation")
	}
	fmt.Fprintf(&b, " of %s after %s (last state: %s)", e.Handle, e.Waited.Round(time.Millisecond), e.LastState)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ConfirmationTimeoutError) Unwrap() error    { return e.Cause }
func (e *ConfirmationTimeoutError) Outcome() Outcome { return OutcomeUnknown }

// ConstructorRevertedError means the creation transaction was mined but
// failed, so no contract exists.
type ConstructorRevertedError struct {
	Request *models.DeploymentRequest
	Handle  models.TransactionHandle
	Receipt *models.Receipt
	Reason  string
}

func (e *ConstructorRevertedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no reason given"
	}
	return fmt.Sprintf("constructor of %s reverted in tx %s: %s", e.Request, e.Handle.TxHash.Hex(), reason)
}

func (e *ConstructorRevertedError) Outcome() Outcome { return OutcomeReverted }
