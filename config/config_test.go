package config

import (
	"testing"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/generator/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(fs.NewMemoryFileSystem(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	memFS := fs.NewMemoryFileSystem()
	_, err := memFS.WriteText("shop/modkit.yaml", "organization: com.Example-Org\nroot: app\ndi: koin-annotations\ndatasource: remote-and-local\napi: true\n", false)
	require.NoError(t, err)

	cfg, err := LoadConfig(memFS, "shop")
	require.NoError(t, err)
	assert.Equal(t, "com.Example-Org", cfg.Organization)
	assert.Equal(t, "app", cfg.Root)
	assert.Equal(t, "koin-annotations", cfg.DI)
	assert.True(t, cfg.API)
	assert.True(t, cfg.Presentation)

	p, err := cfg.ModuleParams("checkout")
	require.NoError(t, err)
	assert.Equal(t, module.Koin{UseAnnotations: true}, p.DI)
	assert.Equal(t, module.DatasourceRemoteAndLocal, p.Datasource)
	assert.Equal(t, []string{"domain", "data", "presentation", "api", "remote", "local"}, p.Layers())
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	memFS := fs.NewMemoryFileSystem()
	_, err := memFS.WriteText("conf/custom.yaml", "presentation: false\n", false)
	require.NoError(t, err)

	cfg, err := LoadConfig(memFS, "conf/custom.yaml")
	require.NoError(t, err)
	assert.False(t, cfg.Presentation)
	assert.Equal(t, "hilt", cfg.DI)

	_, err = LoadConfig(memFS, "conf/missing.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MODKIT_DI", "metro")
	t.Setenv("MODKIT_ORGANIZATION", "org.acme")

	cfg, err := LoadConfig(fs.NewMemoryFileSystem(), "")
	require.NoError(t, err)
	assert.Equal(t, "metro", cfg.DI)
	assert.Equal(t, "org.acme", cfg.Organization)
}

func TestLoadConfig_Invalid(t *testing.T) {
	memFS := fs.NewMemoryFileSystem()
	_, err := memFS.WriteText("modkit.yaml", "di: dagger\n", false)
	require.NoError(t, err)

	_, err = LoadConfig(memFS, "")
	assert.Error(t, err)

	t.Setenv("MODKIT_ORGANIZATION", " ")
	_, err = LoadConfig(fs.NewMemoryFileSystem(), "")
	assert.EqualError(t, err, "organization is required")
}
