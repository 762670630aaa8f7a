package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/application/config"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[context]
name = "pairs-host"
version = 1
max_handles = 512
debug = true

[wasm]
max_string_size = 4096

[log]
level = "debug"
format = "json"

[[extension]]
manifest = "ext/pairs.yaml"

[[extension]]
manifest = "/opt/ext/counter.yaml"

[vars]
suffix = "v1"
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "pairs-host", cfg.Context.Name)
	assert.Equal(t, 1, cfg.Context.Version)
	assert.Equal(t, 512, cfg.Context.MaxHandles)
	assert.True(t, cfg.Context.Debug)
	assert.Equal(t, "abi_ctx", cfg.Wasm.ModuleName, "unset keys keep defaults")
	assert.Equal(t, uint32(4096), cfg.Wasm.MaxStringSize)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Len(t, cfg.Extensions, 2)
	assert.Equal(t, "v1", cfg.Vars["suffix"])
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, abi.CurrentVersion, cfg.Context.Version)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{name: "syntax", input: "[context\nname = 1"},
		{name: "unknown key", input: "[context]\nflavour = \"x\"", wantField: "context.flavour"},
		{name: "empty name", input: "[context]\nname = \"\"", wantField: "HostConfig.Context.Name"},
		{name: "zero handles", input: "[context]\nmax_handles = 0", wantField: "HostConfig.Context.MaxHandles"},
		{name: "bad level", input: "[log]\nlevel = \"loud\"", wantField: "HostConfig.Log.Level"},
		{name: "extension without manifest", input: "[[extension]]\nmanifest = \"\"", wantField: "HostConfig.Extensions[0].Manifest"},
		{name: "version too new", input: "[context]\nversion = 99", wantField: "HostConfig.Context.Version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.input))
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}

	_, err := config.Parse([]byte("[context]\nversion = 99"))
	var verr *errors.VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 99, verr.Required)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "ext/pairs.yaml"),
		"/opt/ext/counter.yaml",
	}, cfg.ManifestPaths())

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestNewLogger(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Debug("loaded", "n", 2)
	assert.Contains(t, buf.String(), `"msg":"loaded"`)

	buf.Reset()
	cfg.Log = config.LogConfig{Level: "warn", Format: "text"}
	cfg.NewLogger(&buf).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestContextOptions(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	ctx, err := host.NewContext(cfg.ContextOptions()...)
	require.NoError(t, err)
	defer func() { _ = host.CloseContext(ctx) }()

	assert.Equal(t, "pairs-host", ctx.Name)
	assert.Equal(t, abi.Version1, ctx.Version)
}

func TestExecutorOptions(t *testing.T) {
	cfg, err := config.Parse([]byte("[context]\nname = \"exec\"\nversion = 1\n\n[wasm]\nmodule_name = \"abi_v1\"\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	e, err := host.NewExecutor(context.Background(), cfg.ExecutorOptions(cfg.NewLogger(&buf))...)
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Close(context.Background())) }()

	assert.Equal(t, "exec", e.Context().Name)
	assert.Equal(t, abi.Version1, e.Context().Version)
}
