package app

import (
	"log/slog"

	"github.com/trebuchet-org/zkdeploy/internal/adapters/blockchain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector  usecase.InteractiveSelector
	Connector *blockchain.Connector

	// Use cases
	DeployContract     *usecase.DeployContract
	ComposeDeployment  *usecase.ComposeDeployment
	WaitDeployment     *usecase.WaitDeployment
	ResolveContract    *usecase.ResolveContract
	RegisterDeployment *usecase.RegisterDeployment
	ListDeployments    *usecase.ListDeployments
	ListNetworks       *usecase.ListNetworks
	ListAccounts       *usecase.ListAccounts
	ShowDeployment     *usecase.ShowDeployment
	ShowConfig         *usecase.ShowConfig
	SetConfig          *usecase.SetConfig
	RemoveConfig       *usecase.RemoveConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.InteractiveSelector,
	connector *blockchain.Connector,
	deployContract *usecase.DeployContract,
	composeDeployment *usecase.ComposeDeployment,
	waitDeployment *usecase.WaitDeployment,
	resolveContract *usecase.ResolveContract,
	registerDeployment *usecase.RegisterDeployment,
	listDeployments *usecase.ListDeployments,
	listNetworks *usecase.ListNetworks,
	listAccounts *usecase.ListAccounts,
	showDeployment *usecase.ShowDeployment,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
) (*App, error) {
	return &App{
		Config:             cfg,
		Log:                log,
		Selector:           selector,
		Connector:          connector,
		DeployContract:     deployContract,
		ComposeDeployment:  composeDeployment,
		WaitDeployment:     waitDeployment,
		ResolveContract:    resolveContract,
		RegisterDeployment: registerDeployment,
		ListDeployments:    listDeployments,
		ListNetworks:       listNetworks,
		ListAccounts:       listAccounts,
		ShowDeployment:     showDeployment,
		ShowConfig:         showConfig,
		SetConfig:          setConfig,
		RemoveConfig:       removeConfig,
	}, nil
}

// Close releases network connections
func (a *App) Close() {
	if a.Connector != nil {
		a.Connector.Close()
	}
}
