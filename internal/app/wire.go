//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/zkdeploy/internal/adapters"
	"github.com/trebuchet-org/zkdeploy/internal/config"
	"github.com/trebuchet-org/zkdeploy/internal/logging"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewSignerLocks,
		usecase.NewDeployContract,
		usecase.NewComposeDeployment,
		usecase.NewWaitDeployment,
		usecase.NewResolveContract,
		usecase.NewRegisterDeployment,
		usecase.NewListDeployments,
		usecase.NewListNetworks,
		usecase.NewListAccounts,
		usecase.NewShowDeployment,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,

		// App
		NewApp,
	)
	return nil, nil
}
