package adapters

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/abi"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/zkdeploy/internal/adapters/config"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/fs"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/interactive"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/zkdeploy/internal/adapters/senders"
	"github.com/trebuchet-org/zkdeploy/internal/config"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// ProvideConnector provides the chain connector, dialing with ethclient
func ProvideConnector(resolver usecase.NetworkResolver, log *slog.Logger) *blockchain.Connector {
	return blockchain.NewConnector(resolver, log)
}

// RepositorySet provides file-backed repositories
var RepositorySet = wire.NewSet(
	deployments.NewFileRepository,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),
	wire.Bind(new(usecase.DeploymentLookup), new(*deployments.FileRepository)),

	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.Repository)),
)

// SignerSet provides secret resolution
var SignerSet = wire.NewSet(
	senders.NewService,
	wire.Bind(new(usecase.SecretProvider), new(*senders.Service)),
	wire.Bind(new(usecase.AccountLister), new(*senders.Service)),
)

// AbiSet provides constructor encoding
var AbiSet = wire.NewSet(
	abi.NewConstructorEncoder,
	wire.Bind(new(usecase.ConstructorEncoder), new(*abi.ConstructorEncoder)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigRepository), new(*fs.LocalConfigStoreAdapter)),

	config.ProvideNetworkResolver,
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	ProvideConnector,
	wire.Bind(new(usecase.ChainConnector), new(*blockchain.Connector)),
	wire.Bind(new(usecase.ChainIDProber), new(*blockchain.Connector)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	SignerSet,
	AbiSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
)
