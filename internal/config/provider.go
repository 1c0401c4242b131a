package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot(".")
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	if err := LoadEnvFiles(projectRoot); err != nil {
		return nil, err
	}

	project, undecoded, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	if len(undecoded) > 0 {
		slog.Warn("unknown keys in project file", "file", ProjectFile, "keys", strings.Join(undecoded, ", "))
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, DataDirName),
		NetworkName:    v.GetString("network"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		Project:        project,
	}

	deploy, err := deploySettings(project, v)
	if err != nil {
		return nil, err
	}
	cfg.Deploy = deploy

	// Unknown networks are left unresolved here; binding one fails with a
	// typed error at connect time.
	if cfg.NetworkName != "" {
		if network, err := NewNetworkResolver(project).Resolve(cfg.NetworkName); err == nil {
			cfg.Network = network
		}
	}

	return cfg, nil
}

// deploySettings layers viper overrides on top of the [deploy] section
func deploySettings(project *config.ProjectConfig, v *viper.Viper) (config.DeploySettings, error) {
	settings := config.DeploySettings{
		Confirmations:       config.DefaultConfirmations,
		PollInterval:        config.DefaultPollInterval,
		ConfirmationTimeout: config.DefaultConfirmationTimeout,
		ArtifactDirs:        config.DefaultArtifactDirs,
		DefaultAccount:      project.DefaultAccount,
	}

	d := project.Deploy
	if d.Confirmations > 0 {
		settings.Confirmations = d.Confirmations
	}
	if len(d.Artifacts) > 0 {
		settings.ArtifactDirs = d.Artifacts
	}
	if d.PollInterval != "" {
		interval, err := time.ParseDuration(d.PollInterval)
		if err != nil || interval <= 0 {
			return settings, fmt.Errorf("invalid [deploy] poll_interval %q", d.PollInterval)
		}
		settings.PollInterval = interval
	}
	if d.Timeout != "" {
		timeout, err := time.ParseDuration(d.Timeout)
		if err != nil || timeout <= 0 {
			return settings, fmt.Errorf("invalid [deploy] timeout %q", d.Timeout)
		}
		settings.ConfirmationTimeout = timeout
	}

	if v.IsSet("confirmations") && v.GetUint64("confirmations") > 0 {
		settings.Confirmations = v.GetUint64("confirmations")
	}
	if v.IsSet("confirmation_timeout") && v.GetDuration("confirmation_timeout") > 0 {
		settings.ConfirmationTimeout = v.GetDuration("confirmation_timeout")
	}
	if account := v.GetString("default_account"); account != "" {
		settings.DefaultAccount = account
	}

	return settings, nil
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	v.SetEnvPrefix("ZKDEPLOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Missing config.local.json is fine
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}
