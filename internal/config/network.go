package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
)

// BuiltinNetworks are available without a project file. Entries in
// zkdeploy.toml with the same name replace them.
var BuiltinNetworks = map[string]config.NetworkConfig{
	"zkSyncTestnet": {
		URL:        "https://zksync2-testnet.zksync.dev",
		ChainID:    280,
		EthNetwork: "rinkeby",
		ZkSync:     true,
	},
	"localhost": {
		URL: "http://127.0.0.1:8545",
	},
}

// NetworkResolver resolves network names to configurations
type NetworkResolver struct {
	networks map[string]config.NetworkConfig
}

// NewNetworkResolver merges the project's networks over the built-in ones
func NewNetworkResolver(project *config.ProjectConfig) *NetworkResolver {
	networks := make(map[string]config.NetworkConfig, len(BuiltinNetworks))
	for name, n := range BuiltinNetworks {
		networks[name] = n
	}
	if project != nil {
		for name, n := range project.Networks {
			networks[name] = n
		}
	}
	return &NetworkResolver{networks: networks}
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.Project)
}

// GetNetworks returns all network names, sorted
func (r *NetworkResolver) GetNetworks() []string {
	names := lo.Keys(r.networks)
	sort.Strings(names)
	return names
}

// Resolve looks up a network by exact name, then case-insensitively. It
// never substitutes a different network.
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	if networkName == "" {
		return nil, fmt.Errorf("%w: no network specified", domain.ErrUnknownNetwork)
	}

	name := networkName
	n, ok := r.networks[name]
	if !ok {
		matches := lo.Filter(r.GetNetworks(), func(candidate string, _ int) bool {
			return strings.EqualFold(candidate, networkName)
		})
		if len(matches) != 1 {
			return nil, r.unknown(networkName)
		}
		name = matches[0]
		n = r.networks[name]
	}

	if n.URL == "" {
		return nil, fmt.Errorf("network %q has no url configured", name)
	}

	explorer := n.Explorer
	if explorer == "" {
		explorer = defaultExplorerURL(n.ChainID)
	}

	return &config.Network{
		Name:        name,
		RPCURL:      n.URL,
		ChainID:     n.ChainID,
		EthNetwork:  n.EthNetwork,
		ZkSync:      n.ZkSync,
		ExplorerURL: explorer,
	}, nil
}

func (r *NetworkResolver) unknown(name string) error {
	matches := fuzzy.Find(name, r.GetNetworks())
	if len(matches) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, name)
	}
	suggestions := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return fmt.Errorf("%w: %s (did you mean %s?)", domain.ErrUnknownNetwork, name, strings.Join(suggestions, ", "))
}

// defaultExplorerURL returns a block explorer for well-known chains
func defaultExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 5:
		return "https://goerli.etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 280:
		return "https://goerli.explorer.zksync.io"
	case 300:
		return "https://sepolia.explorer.zksync.io"
	case 324:
		return "https://explorer.zksync.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 42161:
		return "https://arbiscan.io"
	case 8453:
		return "https://basescan.org"
	default:
		return ""
	}
}
