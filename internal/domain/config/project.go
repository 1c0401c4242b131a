package config

// ProjectConfig represents the zkdeploy.toml project file
type ProjectConfig struct {
	DefaultAccount string                   `toml:"default_account,omitempty"`
	Networks       map[string]NetworkConfig `toml:"networks"`
	Accounts       map[string]AccountConfig `toml:"accounts"`
	Deploy         DeployConfig             `toml:"deploy"`
}

// NetworkConfig represents a [networks.<name>] section
type NetworkConfig struct {
	URL        string `toml:"url"`
	ChainID    uint64 `toml:"chain_id,omitempty"`
	EthNetwork string `toml:"eth_network,omitempty"` // settlement layer, informational
	ZkSync     bool   `toml:"zksync,omitempty"`
	Explorer   string `toml:"explorer,omitempty"`
}

type AccountType string

var (
	AccountTypePrivateKey AccountType = "private_key"
	AccountTypeKeystore   AccountType = "keystore"
	AccountTypeMnemonic   AccountType = "mnemonic"
)

// AccountConfig represents a named signing entity in [accounts.*] sections.
// Secret-bearing fields hold ${VAR} references that are expanded at
// resolution time, not literal secrets.
type AccountConfig struct {
	Type           AccountType `toml:"type"`
	Address        string      `toml:"address,omitempty"`         // optional, checked against the derived key
	PrivateKey     string      `toml:"private_key,omitempty"`     //nolint:gosec // holds env var reference, not a literal secret
	Keystore       string      `toml:"keystore,omitempty"`        // For keystore accounts: path to the JSON key file
	Password       string      `toml:"password,omitempty"`        //nolint:gosec // For keystore accounts: env var reference
	Mnemonic       string      `toml:"mnemonic,omitempty"`        //nolint:gosec // For mnemonic accounts: env var reference
	DerivationPath string      `toml:"derivation_path,omitempty"` // For mnemonic accounts
}

// DeployConfig represents the [deploy] section
type DeployConfig struct {
	Confirmations uint64   `toml:"confirmations,omitempty"`
	PollInterval  string   `toml:"poll_interval,omitempty"`
	Timeout       string   `toml:"timeout,omitempty"`
	Artifacts     []string `toml:"artifacts,omitempty"`
}
