package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Default configuration
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 64, cfg.Limits.MaxTerms)
	assert.Equal(t, 25, cfg.Limits.MaxResults)
	assert.Equal(t, 4, cfg.Limits.MinMatchLength)
	assert.Equal(t, 2, cfg.Transform.MaxDepth)
	assert.Equal(t, int64(-5), cfg.Combination.CoeffMin)
	assert.Equal(t, int64(5), cfg.Combination.CoeffMax)
	assert.True(t, cfg.Combination.EnableTriples)
	assert.Equal(t, runtime.NumCPU(), cfg.Performance.IndexWorkers)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
	assert.NotEmpty(t, cfg.Paths.DB)
}

func TestCombinationConfig_CoeffRange(t *testing.T) {
	c := CombinationConfig{CoeffMin: -2, CoeffMax: 2}
	assert.Equal(t, []int64{-2, -1, 0, 1, 2}, c.CoeffRange())
}

func TestCombinationConfig_CoeffRangeEmptyWhenInverted(t *testing.T) {
	c := CombinationConfig{CoeffMin: 5, CoeffMax: 1}
	assert.Nil(t, c.CoeffRange())
}

// =============================================================================
// Configuration file loading
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 64, cfg.Limits.MaxTerms)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
limits:
  max_terms: 128
  max_results: 50
combination:
  coeff_min: -3
  coeff_max: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(configContent), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Limits.MaxTerms)
	assert.Equal(t, 50, cfg.Limits.MaxResults)
	assert.Equal(t, int64(-3), cfg.Combination.CoeffMin)
	assert.Equal(t, int64(3), cfg.Combination.CoeffMax)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
server:
  log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yml"), []byte(configContent), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte("version: 1\nserver:\n  log_level: warn\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yml"), []byte("version: 1\nserver:\n  log_level: error\n"), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	invalidContent := "version: 1\nlimits:\n  max_terms: [invalid yaml syntax\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(invalidContent), 0o644))

	cfg, err := Load(tmpDir)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_InvalidFieldType_ReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	invalidContent := "version: 1\nlimits:\n  max_terms: \"not-a-number\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(invalidContent), 0o644))

	cfg, err := Load(tmpDir)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_RejectsInvertedCoeffRange(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte("version: 1\ncombination:\n  coeff_min: 5\n  coeff_max: 1\n"), 0o644))

	cfg, err := Load(tmpDir)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

// =============================================================================
// Project root discovery
// =============================================================================

func TestFindProjectRoot_GitDirectory_ReturnsGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "src", "internal")
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	root, err := FindProjectRoot(nestedDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_ConfigFile_ReturnsConfigLocation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "src", "internal")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte("version: 1"), 0o644))

	root, err := FindProjectRoot(nestedDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_NoMarkers_ReturnsCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()
	root, err := FindProjectRoot(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

// =============================================================================
// Environment variable overrides
// =============================================================================

func TestLoad_EnvVarOverridesMaxTerms(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := "version: 1\nlimits:\n  max_terms: 32\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(configContent), 0o644))
	t.Setenv("OEISMATCH_MAX_TERMS", "200")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Limits.MaxTerms)
}

func TestLoad_EnvVarOverridesLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OEISMATCH_LOG_LEVEL", "debug")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_EnvVarOverridesTransport(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OEISMATCH_TRANSPORT", "unix")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "unix", cfg.Server.Transport)
}

func TestLoad_EnvVarOverridesCombinationMaxTimeS(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := "version: 1\ncombination:\n  max_time_s: 1.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(configContent), 0o644))
	t.Setenv("OEISMATCH_COMBINATION_MAX_TIME_S", "5.5")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 5.5, cfg.Combination.MaxTimeS)
}

func TestLoad_EnvVarEmptyString_DoesNotOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OEISMATCH_DB_PATH", "")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Paths.DB)
}

// =============================================================================
// User/global configuration
// =============================================================================

func TestGetUserConfigPath_DefaultsToXDGLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := GetUserConfigPath()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "oeismatch", "config.yaml"), path)
}

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	customConfig := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", customConfig)

	path := GetUserConfigPath()
	assert.Equal(t, filepath.Join(customConfig, "oeismatch", "config.yaml"), path)
}

func TestGetUserConfigDir_ReturnsParentOfConfigPath(t *testing.T) {
	dir := GetUserConfigDir()
	path := GetUserConfigPath()
	assert.Equal(t, filepath.Dir(path), dir)
}

func TestUserConfigExists_ReturnsFalseWhenMissing(t *testing.T) {
	emptyDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", emptyDir)

	assert.False(t, UserConfigExists())
}

func TestUserConfigExists_ReturnsTrueWhenPresent(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	oeisDir := filepath.Join(configDir, "oeismatch")
	require.NoError(t, os.MkdirAll(oeisDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(oeisDir, "config.yaml"), []byte("version: 1"), 0o644))

	assert.True(t, UserConfigExists())
}

func TestLoad_UserConfigOverridesDefaults(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	oeisDir := filepath.Join(configDir, "oeismatch")
	require.NoError(t, os.MkdirAll(oeisDir, 0o755))
	userConfig := "version: 1\nlimits:\n  max_results: 99\n"
	require.NoError(t, os.WriteFile(filepath.Join(oeisDir, "config.yaml"), []byte(userConfig), 0o644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Limits.MaxResults)
}

func TestLoad_ProjectConfigOverridesUserConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	oeisDir := filepath.Join(configDir, "oeismatch")
	require.NoError(t, os.MkdirAll(oeisDir, 0o755))
	userConfig := "version: 1\nlimits:\n  max_terms: 16\n  max_results: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(oeisDir, "config.yaml"), []byte(userConfig), 0o644))

	projectConfig := "version: 1\nlimits:\n  max_results: 40\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".oeismatch.yaml"), []byte(projectConfig), 0o644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Limits.MaxResults)
	assert.Equal(t, 16, cfg.Limits.MaxTerms)
}

func TestLoad_EnvVarOverridesUserAndProjectConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("OEISMATCH_MAX_RESULTS", "7")

	oeisDir := filepath.Join(configDir, "oeismatch")
	require.NoError(t, os.MkdirAll(oeisDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(oeisDir, "config.yaml"), []byte("version: 1\nlimits:\n  max_results: 10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".oeismatch.yaml"), []byte("version: 1\nlimits:\n  max_results: 40\n"), 0o644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Limits.MaxResults)
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	oeisDir := filepath.Join(configDir, "oeismatch")
	require.NoError(t, os.MkdirAll(oeisDir, 0o755))
	invalidConfig := "version: 1\nlimits:\n  max_terms: [invalid yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(oeisDir, "config.yaml"), []byte(invalidConfig), 0o644))

	cfg, err := Load(projectDir)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "user config")
}
