package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

const networkProbeTimeout = 5 * time.Second

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	Probe bool // ask each endpoint for its chain ID
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string
	Network *config.Network
	// ReportedChainID is what the endpoint answered, 0 if not probed
	ReportedChainID uint64
	Error           error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	resolver NetworkResolver
	prober   ChainIDProber
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver, prober ChainIDProber) *ListNetworks {
	return &ListNetworks{
		resolver: resolver,
		prober:   prober,
	}
}

// Run executes the use case. Probe failures are reported per network.
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := uc.resolver.GetNetworks(ctx)
	networks := make([]NetworkStatus, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		networks[i].Name = name
		info, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			networks[i].Error = err
			continue
		}
		networks[i].Network = info
		if !params.Probe {
			continue
		}
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gctx, networkProbeTimeout)
			defer cancel()
			chainID, err := uc.prober.ProbeChainID(probeCtx, info.RPCURL)
			if err != nil {
				networks[i].Error = err
				return nil
			}
			networks[i].ReportedChainID = chainID
			if info.ChainID != 0 && info.ChainID != chainID {
				networks[i].Error = fmt.Errorf("%w: configured %d, endpoint reports %d", domain.ErrChainIDMismatch, info.ChainID, chainID)
			}
			return nil
		})
	}
	_ = g.Wait()

	return &ListNetworksResult{Networks: networks}, nil
}
