package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		env       string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{name: "default is quiet", wantWarn: true},
		{name: "debug flag", debug: true, wantDebug: true, wantInfo: true, wantWarn: true},
		{name: "env level", env: "INFO", wantInfo: true, wantWarn: true},
		{name: "env wins over flag", debug: true, env: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(&config.RuntimeConfig{Debug: tt.debug}, &buf, tt.env)

			log.Debug("debug-line")
			log.Info("info-line")
			log.Warn("warn-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info-line"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn-line"))
			assert.NotContains(t, out, "time=")
		})
	}
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/deploy_contract.go", shortPath("/home/dev/zkdeploy/internal/usecase/deploy_contract.go"))
	assert.Equal(t, "main.go", shortPath("/somewhere/else/main.go"))
}
