package config_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/elementsproject/lightning-integration/config"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), fs.ModePerm))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultTestDir, cfg.TestDir)
		assert.Equal(t, config.DefaultAddFundsMaxAttempts, cfg.AddFundsMaxAttempts)
		kinds, err := cfg.Kinds()
		require.NoError(t, err)
		assert.Equal(t, node.AllKinds, kinds)
		assert.Equal(t, config.DefaultTimeout, cfg.Timeout())
	})

	t.Run("toml file", func(t *testing.T) {
		path := writeConfig(t, `
test_dir = "/tmp/lnint"
impls = "lnd,eclair"
addfunds_max_attempts = 0

[binaries]
lnd = "/opt/lnd/lnd"

[extra_args]
lnd = ["--hodl.exit-settle"]
cln = ["--dev-fast-gossip"]
`)
		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/lnint", cfg.TestDir)
		assert.Equal(t, 0, cfg.AddFundsMaxAttempts)
		assert.Equal(t, "/opt/lnd/lnd", cfg.Binary(node.KindLnd))
		assert.Equal(t, []string{"--hodl.exit-settle"}, cfg.Args(node.KindLnd))
		assert.Equal(t, []string{"--dev-fast-gossip"}, cfg.Args(node.KindCLightning))
		assert.Empty(t, cfg.Args(node.KindEclair))

		kinds, err := cfg.Kinds()
		require.NoError(t, err)
		assert.Equal(t, []node.Kind{node.KindLnd, node.KindEclair}, kinds)
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeConfig(t, `impls = "lnd"`)
		cfg, err := config.Load(path, []string{"--impls=eclair,ptarmigan", "--bin.eclair=/opt/eclair", "--debug"})
		require.NoError(t, err)
		assert.Equal(t, "eclair,ptarmigan", cfg.Impls)
		assert.Equal(t, "/opt/eclair", cfg.Binary(node.KindEclair))
		assert.True(t, cfg.Debug)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("SLOW_MACHINE", "1")
		t.Setenv("LIGHTNING_IMPLS", "electrum")
		t.Setenv("TEST_DIR", "/tmp/from-env")
		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.True(t, cfg.SlowMachine)
		assert.Equal(t, config.SlowMachineTimeout, cfg.Timeout())
		assert.Equal(t, "/tmp/from-env", cfg.TestDir)
		kinds, err := cfg.Kinds()
		require.NoError(t, err)
		assert.Equal(t, []node.Kind{node.KindElectrum}, kinds)
	})
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown impl":      `impls = "lnd,bolt12d"`,
		"negative attempts": `addfunds_max_attempts = -1`,
		"unknown extra arg": "[extra_args]\nfoo = [\"--x\"]",
		"malformed":         `impls = `,
	}
	for name, content := range tests {
		content := content
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, content), nil)
			assert.Error(t, err)
		})
	}
}
