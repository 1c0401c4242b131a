package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	NetworkName string   // requested network name, may be empty
	Network     *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	Deploy DeploySettings

	// Resolved project file (zkdeploy.toml), never nil
	Project *ProjectConfig
}

// Network represents network configuration
type Network struct {
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ChainID     uint64 `json:"chainId,omitempty"` // 0 means "accept whatever the endpoint reports"
	EthNetwork  string `json:"ethNetwork,omitempty"`
	ZkSync      bool   `json:"zksync,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// DeploySettings controls the confirmation wait and artifact lookup
type DeploySettings struct {
	Confirmations       uint64
	PollInterval        time.Duration
	ConfirmationTimeout time.Duration
	ArtifactDirs        []string
	DefaultAccount      string
}

const (
	DefaultConfirmations       = 1
	DefaultPollInterval        = 2 * time.Second
	DefaultConfirmationTimeout = 5 * time.Minute
)

// DefaultArtifactDirs are searched when the project file doesn't list any.
// "artifacts-zk" is where the zkSync hardhat plugin writes its output.
var DefaultArtifactDirs = []string{"artifacts-zk", "artifacts", "out"}
