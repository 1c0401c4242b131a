package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// DialFunc opens a backend for an RPC URL
type DialFunc func(ctx context.Context, rpcURL string) (Backend, error)

// Connector binds network names to verified clients, one per network
type Connector struct {
	resolver usecase.NetworkResolver
	dial     DialFunc
	log      *slog.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewConnector creates a connector that dials with ethclient
func NewConnector(resolver usecase.NetworkResolver, log *slog.Logger) *Connector {
	return NewConnectorWithDialer(resolver, dialEthClient, log)
}

// NewConnectorWithDialer creates a connector with a custom dialer
func NewConnectorWithDialer(resolver usecase.NetworkResolver, dial DialFunc, log *slog.Logger) *Connector {
	return &Connector{
		resolver: resolver,
		dial:     dial,
		log:      log,
		clients:  make(map[string]*Client),
	}
}

func dialEthClient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Connect returns the client for network. The endpoint's chain ID must
// match the configured one when the configuration sets it.
func (c *Connector) Connect(ctx context.Context, network string) (usecase.ChainClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[network]; ok {
		return client, nil
	}

	info, err := c.resolver.ResolveNetwork(ctx, network)
	if err != nil {
		return nil, &domain.NetworkUnavailableError{Network: network, Cause: err}
	}

	backend, err := c.dial(ctx, info.RPCURL)
	if err != nil {
		return nil, &domain.NetworkUnavailableError{Network: network, Cause: fmt.Errorf("failed to connect to RPC: %w", err)}
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, &domain.NetworkUnavailableError{Network: network, Cause: fmt.Errorf("failed to get chain ID: %w", err)}
	}
	if info.ChainID != 0 && chainID.Uint64() != info.ChainID {
		backend.Close()
		return nil, &domain.NetworkUnavailableError{
			Network: network,
			Cause:   fmt.Errorf("%w: expected %d, got %d", domain.ErrChainIDMismatch, info.ChainID, chainID.Uint64()),
		}
	}

	c.log.Debug("connected", "network", network, "chainId", chainID.Uint64())
	client := NewClient(network, chainID, backend, c.log)
	c.clients[network] = client
	return client, nil
}

// ProbeChainID implements usecase.ChainIDProber
func (c *Connector) ProbeChainID(ctx context.Context, rpcURL string) (uint64, error) {
	backend, err := c.dial(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}

// Close closes every cached client
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, client := range c.clients {
		client.backend.Close()
		delete(c.clients, name)
	}
}

var (
	_ usecase.ChainConnector = (*Connector)(nil)
	_ usecase.ChainIDProber  = (*Connector)(nil)
)
