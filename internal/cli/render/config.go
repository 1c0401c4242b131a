package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{
		out: out,
	}
}

// getRelativePath returns the relative path from current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}

	return relPath
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// RenderConfig renders the stored values next to the effective ones
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "No %s file found\n", getRelativePath(result.ConfigPath))
	} else {
		fmt.Fprintln(r.out, "📋 Current config:")
		for _, key := range config.ValidConfigKeys() {
			fmt.Fprintf(r.out, "%-22s %s\n", string(key)+":", orNotSet(result.Config.Get(key)))
		}
		fmt.Fprintf(r.out, "📁 config file: %s\n", getRelativePath(result.ConfigPath))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, labelStyle.Sprint("Effective settings:"))
	fmt.Fprintf(r.out, "%-22s %s\n", "network:", orNotSet(result.Network))
	fmt.Fprintf(r.out, "%-22s %s\n", "default_account:", orNotSet(result.Settings.DefaultAccount))
	fmt.Fprintf(r.out, "%-22s %d\n", "confirmations:", result.Settings.Confirmations)
	fmt.Fprintf(r.out, "%-22s %s\n", "confirmation_timeout:", result.Settings.ConfirmationTimeout)
	fmt.Fprintf(r.out, "%-22s %s\n", "poll_interval:", result.Settings.PollInterval)
	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s to: %s", result.Key, result.Value)))
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	if result.RemovedValue == "" {
		fmt.Fprintf(r.out, "%s was not set\n", result.Key)
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s (was %s)", result.Key, result.RemovedValue)))
	}
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}
