package usecase_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// Well-known anvil development key #0
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testChainID = big.NewInt(280)
	tokenAddr   = common.HexToAddress("0xABC0000000000000000000000000000000000001")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		NetworkName: "zkSyncTestnet",
		Deploy: config.DeploySettings{
			Confirmations:       1,
			PollInterval:        5 * time.Millisecond,
			ConfirmationTimeout: 2 * time.Second,
		},
		Project: &config.ProjectConfig{},
	}
}

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	return key
}

// keySecrets hands out fresh material for every Resolve call
type keySecrets struct {
	t        *testing.T
	mu       sync.Mutex
	resolved []*models.SecretMaterial
}

func (s *keySecrets) Resolve(_ context.Context, override string) (*models.SecretMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	source := override
	if source == "" {
		source = "default"
	}
	m := models.NewSecretMaterial(source, testKey(s.t))
	s.resolved = append(s.resolved, m)
	return m, nil
}

// MockSecretProvider is a mock implementation of SecretProvider
type MockSecretProvider struct {
	mock.Mock
}

func (m *MockSecretProvider) Resolve(ctx context.Context, override string) (*models.SecretMaterial, error) {
	args := m.Called(ctx, override)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecretMaterial), args.Error(1)
}

// fakeArtifacts serves artifacts by name and "encodes" by returning bytecode
// followed by one byte per argument.
type fakeArtifacts struct {
	artifacts map[string]*models.Artifact

	mu      sync.Mutex
	encoded map[string][]any
}

func newFakeArtifacts(names ...string) *fakeArtifacts {
	f := &fakeArtifacts{
		artifacts: make(map[string]*models.Artifact),
		encoded:   make(map[string][]any),
	}
	for _, name := range names {
		f.artifacts[name] = &models.Artifact{Name: name, Bytecode: []byte{0x60, 0x80, 0x60, 0x40}}
	}
	return f
}

func (f *fakeArtifacts) FindArtifact(_ context.Context, identifier string) (*models.Artifact, error) {
	a, ok := f.artifacts[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContractNotFound, identifier)
	}
	return a, nil
}

func (f *fakeArtifacts) ListArtifacts(context.Context) ([]*models.Artifact, error) {
	var out []*models.Artifact
	for _, a := range f.artifacts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeArtifacts) EncodeDeployment(artifact *models.Artifact, args []any) ([]byte, error) {
	f.mu.Lock()
	f.encoded[artifact.Name] = args
	f.mu.Unlock()

	code := append([]byte{}, artifact.Bytecode...)
	for range args {
		code = append(code, 0x01)
	}
	return code, nil
}

// fakeChain implements ChainConnector and ChainClient and records calls
type fakeChain struct {
	mu        sync.Mutex
	networks  map[string]bool
	connected []string
	nonces    map[common.Address]uint64
	submitted []*types.Transaction
	events    []string
	polls     int

	// submitErr is returned by Submit after recording the transaction
	submitErr error
	// status decides what Status reports; defaults to confirmed at depth 1
	status func(poll int, handle models.TransactionHandle) (*models.TxStatus, error)
	// address is the contract address in confirmed receipts
	address func(handle models.TransactionHandle) common.Address
}

func newFakeChain(networks ...string) *fakeChain {
	f := &fakeChain{
		networks: make(map[string]bool),
		nonces:   make(map[common.Address]uint64),
	}
	for _, n := range networks {
		f.networks[n] = true
	}
	return f
}

func (f *fakeChain) Connect(_ context.Context, network string) (usecase.ChainClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = append(f.connected, network)
	if !f.networks[network] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, network)
	}
	return &fakeClient{chain: f, network: network}, nil
}

func (f *fakeChain) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeChain) submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

func (f *fakeChain) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func confirmedAt(depth uint64, address common.Address, handle models.TransactionHandle) *models.TxStatus {
	return &models.TxStatus{
		State:         models.TxStateConfirmed,
		Confirmations: depth,
		Receipt: &models.Receipt{
			TxHash:          handle.TxHash,
			ContractAddress: address,
			BlockNumber:     100,
			GasUsed:         21000,
			Success:         true,
		},
	}
}

type fakeClient struct {
	chain   *fakeChain
	network string
}

func (c *fakeClient) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(testChainID), nil
}

func (c *fakeClient) PrepareDeployment(_ context.Context, from common.Address, initCode []byte) (*types.Transaction, error) {
	c.chain.mu.Lock()
	nonce := c.chain.nonces[from]
	c.chain.nonces[from] = nonce + 1
	c.chain.mu.Unlock()

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   testChainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       1_000_000,
		Data:      initCode,
	}), nil
}

func (c *fakeClient) Submit(_ context.Context, tx *types.Transaction) (*models.TransactionHandle, error) {
	from, err := types.Sender(types.LatestSignerForChainID(testChainID), tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTxRejected, err)
	}

	c.chain.mu.Lock()
	c.chain.submitted = append(c.chain.submitted, tx)
	c.chain.events = append(c.chain.events, fmt.Sprintf("submit %d", tx.Nonce()))
	submitErr := c.chain.submitErr
	c.chain.mu.Unlock()

	if submitErr != nil {
		return nil, submitErr
	}
	return &models.TransactionHandle{
		TxHash:      tx.Hash(),
		Network:     c.network,
		ChainID:     testChainID.Uint64(),
		From:        from,
		Nonce:       tx.Nonce(),
		SubmittedAt: time.Now(),
	}, nil
}

func (c *fakeClient) Status(_ context.Context, handle models.TransactionHandle) (*models.TxStatus, error) {
	c.chain.mu.Lock()
	c.chain.polls++
	poll := c.chain.polls
	statusFn := c.chain.status
	addressFn := c.chain.address
	c.chain.mu.Unlock()

	if statusFn != nil {
		return statusFn(poll, handle)
	}
	address := tokenAddr
	if addressFn != nil {
		address = addressFn(handle)
	}
	c.chain.record(fmt.Sprintf("confirmed %d", handle.Nonce))
	return confirmedAt(1, address, handle), nil
}

// recordingSink captures progress events
type recordingSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	errors []string
}

func (s *recordingSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Info(string) {}

func (s *recordingSink) Error(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

func (s *recordingSink) stages() []usecase.ExecutionStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]usecase.ExecutionStage, len(s.events))
	for i, e := range s.events {
		out[i] = e.Stage
	}
	return out
}

var errConnectionReset = errors.New("read tcp 10.0.0.1:443: connection reset by peer")

func newDeployer(cfg *config.RuntimeConfig, secrets usecase.SecretProvider, chain *fakeChain, sink usecase.ProgressSink) *usecase.DeployContract {
	return newDeployerWith(cfg, secrets, chain, newFakeArtifacts("MyToken", "MultiSigWallet", "Greeter"), sink)
}

func newDeployerWith(cfg *config.RuntimeConfig, secrets usecase.SecretProvider, chain *fakeChain, artifacts *fakeArtifacts, sink usecase.ProgressSink) *usecase.DeployContract {
	if sink == nil {
		sink = usecase.NopProgress{}
	}
	return usecase.NewDeployContract(cfg, secrets, chain, artifacts, artifacts, usecase.NewSignerLocks(), sink, testLogger())
}
