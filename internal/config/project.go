package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
)

const (
	ProjectFile = "zkdeploy.toml"
	DataDirName = ".zkdeploy"
)

// FindProjectRoot walks up from dir to the first directory holding
// zkdeploy.toml. Without one, dir itself is the project root.
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for current := abs; ; {
		if _, err := os.Stat(filepath.Join(current, ProjectFile)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		current = parent
	}
}

// LoadEnvFiles loads .env and .env.local from the project root. Variables
// already set in the environment win.
func LoadEnvFiles(projectRoot string) error {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// LoadProjectConfig parses zkdeploy.toml. A missing file yields an empty
// config. Network URLs are expanded from the environment here; account
// secrets stay as references until a signer is resolved.
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, []string, error) {
	cfg := &config.ProjectConfig{
		Networks: make(map[string]config.NetworkConfig),
		Accounts: make(map[string]config.AccountConfig),
	}

	path := filepath.Join(projectRoot, ProjectFile)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}

	var undecoded []string
	for _, key := range md.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	sort.Strings(undecoded)

	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.NetworkConfig)
	}
	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]config.AccountConfig)
	}

	for name, network := range cfg.Networks {
		network.URL = os.ExpandEnv(network.URL)
		network.Explorer = os.ExpandEnv(network.Explorer)
		cfg.Networks[name] = network
	}
	for name, account := range cfg.Accounts {
		account.Type = config.AccountType(strings.ToLower(string(account.Type)))
		account.Address = os.ExpandEnv(account.Address)
		cfg.Accounts[name] = account
	}

	return cfg, undecoded, nil
}
