package senders

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	hdwallet "github.com/ethereum-optimism/go-ethereum-hdwallet"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

const (
	// EnvPrivateKey is read when no account is selected or configured
	EnvPrivateKey = "PRIVATE_KEY"
	// EnvPrefix selects an environment variable as the key source
	EnvPrefix = "env:"

	DefaultDerivationPath = "m/44'/60'/0'/0/0"
)

// Service resolves signing material from [accounts] in zkdeploy.toml or
// from environment variables.
type Service struct {
	projectRoot    string
	accounts       map[string]config.AccountConfig
	defaultAccount string
	getenv         func(string) string
	log            *slog.Logger
}

// NewService creates a new sender service
func NewService(cfg *config.RuntimeConfig, log *slog.Logger) *Service {
	var accts map[string]config.AccountConfig
	if cfg.Project != nil {
		accts = cfg.Project.Accounts
	}
	return &Service{
		projectRoot:    cfg.ProjectRoot,
		accounts:       accts,
		defaultAccount: cfg.Deploy.DefaultAccount,
		getenv:         os.Getenv,
		log:            log,
	}
}

// Resolve implements usecase.SecretProvider. The override is an account
// name or env:NAME. An empty override selects default_account, then
// $PRIVATE_KEY, then the only configured account. Raw keys are refused
// without being echoed.
func (s *Service) Resolve(ctx context.Context, override string) (*models.SecretMaterial, error) {
	if models.LooksLikePrivateKey(override) {
		return nil, &domain.CredentialError{Signer: models.RedactSigner(override), Cause: domain.ErrRawPrivateKey}
	}
	material, err := s.resolve(override)
	if err != nil {
		return nil, &domain.CredentialError{Signer: override, Cause: err}
	}
	s.log.Debug("resolved signer", "secret", material)
	return material, nil
}

func (s *Service) resolve(override string) (*models.SecretMaterial, error) {
	if strings.HasPrefix(override, EnvPrefix) {
		return s.fromEnv(strings.TrimPrefix(override, EnvPrefix))
	}
	if override != "" {
		name, account, err := s.getAccount(override)
		if err != nil {
			return nil, err
		}
		return s.fromAccount(name, account)
	}

	if s.defaultAccount != "" {
		name, account, err := s.getAccount(s.defaultAccount)
		if err != nil {
			return nil, fmt.Errorf("default_account: %w", err)
		}
		return s.fromAccount(name, account)
	}
	if s.getenv(EnvPrivateKey) != "" {
		return s.fromEnv(EnvPrivateKey)
	}
	if len(s.accounts) == 1 {
		for name, account := range s.accounts {
			return s.fromAccount(name, account)
		}
	}
	return nil, fmt.Errorf("%w: set default_account in zkdeploy.toml, export %s, or pass --signer",
		domain.ErrNoSecretMaterial, EnvPrivateKey)
}

// getAccount looks an account up by name, falling back to a
// case-insensitive match.
func (s *Service) getAccount(name string) (string, config.AccountConfig, error) {
	if account, ok := s.accounts[name]; ok {
		return name, account, nil
	}
	for key, account := range s.accounts {
		if strings.EqualFold(key, name) {
			return key, account, nil
		}
	}
	return "", config.AccountConfig{}, fmt.Errorf("account %q: %w", name, domain.ErrNotFound)
}

func (s *Service) fromEnv(name string) (*models.SecretMaterial, error) {
	if name == "" {
		return nil, fmt.Errorf("empty environment variable name")
	}
	value := s.getenv(name)
	if value == "" {
		return nil, fmt.Errorf("%w: $%s is not set", domain.ErrNoSecretMaterial, name)
	}
	key, err := parsePrivateKey(value)
	if err != nil {
		return nil, fmt.Errorf("$%s: %w", name, err)
	}
	return models.NewSecretMaterial(EnvPrefix+name, key), nil
}

func (s *Service) fromAccount(name string, account config.AccountConfig) (*models.SecretMaterial, error) {
	key, err := s.loadKey(account)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", name, err)
	}
	material := models.NewSecretMaterial(name, key)
	if account.Address != "" && !strings.EqualFold(common.HexToAddress(account.Address).Hex(), material.Address().Hex()) {
		material.Wipe()
		return nil, fmt.Errorf("account %q: key derives %s, configured address is %s",
			name, material.Address().Hex(), account.Address)
	}
	return material, nil
}

func (s *Service) expand(value string) string {
	return os.Expand(value, s.getenv)
}

func (s *Service) loadKey(account config.AccountConfig) (*ecdsa.PrivateKey, error) {
	switch account.Type {
	case config.AccountTypePrivateKey:
		value := s.expand(account.PrivateKey)
		if value == "" {
			return nil, fmt.Errorf("%w: private_key is empty", domain.ErrNoSecretMaterial)
		}
		return parsePrivateKey(value)

	case config.AccountTypeKeystore:
		data, err := os.ReadFile(s.keystorePath(account))
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore: %w", err)
		}
		key, err := keystore.DecryptKey(data, s.expand(account.Password))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
		}
		return key.PrivateKey, nil

	case config.AccountTypeMnemonic:
		mnemonic := strings.TrimSpace(s.expand(account.Mnemonic))
		if mnemonic == "" {
			return nil, fmt.Errorf("%w: mnemonic is empty", domain.ErrNoSecretMaterial)
		}
		wallet, err := hdwallet.NewFromMnemonic(mnemonic)
		if err != nil {
			return nil, fmt.Errorf("invalid mnemonic: %w", err)
		}
		path := account.DerivationPath
		if path == "" {
			path = DefaultDerivationPath
		}
		if _, err := accounts.ParseDerivationPath(path); err != nil {
			return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
		}
		key, err := wallet.PrivateKey(accounts.Account{URL: accounts.URL{Path: path}})
		if err != nil {
			return nil, fmt.Errorf("failed to derive key at %s: %w", path, err)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("unsupported account type %q", account.Type)
	}
}

func (s *Service) keystorePath(account config.AccountConfig) string {
	path := s.expand(account.Keystore)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.projectRoot, path)
	}
	return path
}

func parsePrivateKey(value string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(value), "0x"))
	if err != nil {
		// never echo the value
		return nil, fmt.Errorf("invalid private key")
	}
	return key, nil
}

// ListAccounts implements usecase.AccountLister. Keystore addresses are
// read from the key file without decrypting it.
func (s *Service) ListAccounts(ctx context.Context) []usecase.AccountInfo {
	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]usecase.AccountInfo, 0, len(names))
	for _, name := range names {
		account := s.accounts[name]
		info := usecase.AccountInfo{
			Name:    name,
			Type:    account.Type,
			Default: strings.EqualFold(name, s.defaultAccount),
		}
		address, err := s.accountAddress(name, account)
		if err != nil {
			info.Error = err
		} else {
			info.Address = address
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *Service) accountAddress(name string, account config.AccountConfig) (common.Address, error) {
	if account.Type == config.AccountTypeKeystore {
		data, err := os.ReadFile(s.keystorePath(account))
		if err != nil {
			return common.Address{}, fmt.Errorf("failed to read keystore: %w", err)
		}
		var header struct {
			Address string `json:"address"`
		}
		if err := json.Unmarshal(data, &header); err != nil || !common.IsHexAddress(header.Address) {
			return common.Address{}, fmt.Errorf("keystore has no address")
		}
		return common.HexToAddress(header.Address), nil
	}

	material, err := s.fromAccount(name, account)
	if err != nil {
		return common.Address{}, err
	}
	defer material.Wipe()
	return material.Address(), nil
}

var (
	_ usecase.SecretProvider = (*Service)(nil)
	_ usecase.AccountLister  = (*Service)(nil)
)
