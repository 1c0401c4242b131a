package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentRequest describes a single contract deployment. It is immutable
// once constructed: accessors hand out copies of the argument list.
type DeploymentRequest struct {
	contractIdentifier string
	constructorArgs    []any
	network            string
	signerOverride     string
}

// NewDeploymentRequest creates a request. Args may hold primitives, address
// strings or nested slices of those; they are deep-copied.
func NewDeploymentRequest(contract, network string, args []any, signerOverride string) *DeploymentRequest {
	return &DeploymentRequest{
		contractIdentifier: contract,
		constructorArgs:    cloneArgs(args),
		network:            network,
		signerOverride:     signerOverride,
	}
}

// ContractIdentifier returns the artifact reference, e.g. "MyToken" or
// "contracts/MyToken.sol:MyToken".
func (r *DeploymentRequest) ContractIdentifier() string { return r.contractIdentifier }

// ConstructorArgs returns a copy of the ordered constructor arguments.
func (r *DeploymentRequest) ConstructorArgs() []any { return cloneArgs(r.constructorArgs) }

// Network returns the target network name.
func (r *DeploymentRequest) Network() string { return r.network }

// SignerOverride returns the explicit signer reference, or "" for the default.
func (r *DeploymentRequest) SignerOverride() string { return r.signerOverride }

func (r *DeploymentRequest) String() string {
	return fmt.Sprintf("%s@%s", r.contractIdentifier, r.network)
}

type requestJSON struct {
	Contract        string `json:"contract"`
	ConstructorArgs []any  `json:"constructorArgs"`
	Network         string `json:"network"`
	Signer          string `json:"signer,omitempty"`
}

func (r *DeploymentRequest) MarshalJSON() ([]byte, error) {
	args := r.constructorArgs
	if args == nil {
		args = []any{}
	}
	return json.Marshal(requestJSON{
		Contract:        r.contractIdentifier,
		ConstructorArgs: args,
		Network:         r.network,
		Signer:          RedactSigner(r.signerOverride),
	})
}

func (r *DeploymentRequest) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = *NewDeploymentRequest(raw.Contract, raw.Network, raw.ConstructorArgs, raw.Signer)
	return nil
}

func cloneArgs(args []any) []any {
	if args == nil {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		if nested, ok := arg.([]any); ok {
			out[i] = cloneArgs(nested)
			continue
		}
		if strs, ok := arg.([]string); ok {
			out[i] = slices.Clone(strs)
			continue
		}
		out[i] = arg
	}
	return out
}

// DeploymentResult is produced exactly once per successful deployment.
type DeploymentResult struct {
	ContractAddress common.Address     `json:"contractAddress"`
	TxHash          common.Hash        `json:"txHash"`
	BlockNumber     uint64             `json:"blockNumber"`
	Confirmations   uint64             `json:"confirmations"`
	Deployer        common.Address     `json:"deployer"`
	ChainID         uint64             `json:"chainId"`
	GasUsed         uint64             `json:"gasUsed"`
	Request         *DeploymentRequest `json:"request"`
}

// Deployment is a persisted record of a confirmed deployment
type Deployment struct {
	ID              string    `json:"id"` // e.g. "zkSyncTestnet/MyToken:0xabc..."
	Network         string    `json:"network"`
	ChainID         uint64    `json:"chainId"`
	ContractName    string    `json:"contractName"`
	Address         string    `json:"address"`
	TxHash          string    `json:"txHash"`
	BlockNumber     uint64    `json:"blockNumber"`
	Deployer        string    `json:"deployer"`
	ConstructorArgs []any     `json:"constructorArgs"`
	Group           string    `json:"group,omitempty"`
	Step            string    `json:"step,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewDeploymentRecord builds the registry record for a result
func NewDeploymentRecord(result *DeploymentResult, now time.Time) *Deployment {
	req := result.Request
	args := req.ConstructorArgs()
	if args == nil {
		args = []any{}
	}
	return &Deployment{
		ID:              fmt.Sprintf("%s/%s:%s", req.Network(), req.ContractIdentifier(), result.TxHash.Hex()),
		Network:         req.Network(),
		ChainID:         result.ChainID,
		ContractName:    req.ContractIdentifier(),
		Address:         result.ContractAddress.Hex(),
		TxHash:          result.TxHash.Hex(),
		BlockNumber:     result.BlockNumber,
		Deployer:        result.Deployer.Hex(),
		ConstructorArgs: args,
		CreatedAt:       now,
	}
}
