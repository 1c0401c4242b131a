package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LocalConfig holds per-checkout defaults stored in .zkdeploy/config.local.json.
// Field names match the viper keys they override.
type LocalConfig struct {
	Network             string `json:"network,omitempty"`
	DefaultAccount      string `json:"default_account,omitempty"`
	Confirmations       uint64 `json:"confirmations,omitempty"`
	ConfirmationTimeout string `json:"confirmation_timeout,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork             ConfigKey = "network"
	ConfigKeyDefaultAccount      ConfigKey = "default_account"
	ConfigKeyConfirmations       ConfigKey = "confirmations"
	ConfigKeyConfirmationTimeout ConfigKey = "confirmation_timeout"
)

// DefaultLocalConfig returns the default local configuration
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{}
}

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyDefaultAccount,
		ConfigKeyConfirmations,
		ConfigKeyConfirmationTimeout,
	}
}

// NormalizeConfigKey maps aliases and dashes onto a ConfigKey ("account" and
// "default-account" both become default_account).
func NormalizeConfigKey(key string) ConfigKey {
	key = strings.ReplaceAll(strings.ToLower(key), "-", "_")
	switch key {
	case "account", "signer":
		return ConfigKeyDefaultAccount
	case "timeout":
		return ConfigKeyConfirmationTimeout
	}
	return ConfigKey(key)
}

// IsValidConfigKey checks if a key is valid
func IsValidConfigKey(key string) bool {
	normalized := NormalizeConfigKey(key)
	for _, validKey := range ValidConfigKeys() {
		if validKey == normalized {
			return true
		}
	}
	return false
}

// Get returns the value of key as a string, "" when unset
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyDefaultAccount:
		return c.DefaultAccount
	case ConfigKeyConfirmations:
		if c.Confirmations == 0 {
			return ""
		}
		return strconv.FormatUint(c.Confirmations, 10)
	case ConfigKeyConfirmationTimeout:
		return c.ConfirmationTimeout
	}
	return ""
}

// Set validates and stores value under key
func (c *LocalConfig) Set(key ConfigKey, value string) error {
	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyDefaultAccount:
		c.DefaultAccount = value
	case ConfigKeyConfirmations:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("confirmations must be a positive integer, got %q", value)
		}
		c.Confirmations = n
	case ConfigKeyConfirmationTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("confirmation_timeout must be a positive duration like 5m, got %q", value)
		}
		c.ConfirmationTimeout = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Unset clears key and returns its previous value
func (c *LocalConfig) Unset(key ConfigKey) string {
	old := c.Get(key)
	switch key {
	case ConfigKeyNetwork:
		c.Network = ""
	case ConfigKeyDefaultAccount:
		c.DefaultAccount = ""
	case ConfigKeyConfirmations:
		c.Confirmations = 0
	case ConfigKeyConfirmationTimeout:
		c.ConfirmationTimeout = ""
	}
	return old
}
