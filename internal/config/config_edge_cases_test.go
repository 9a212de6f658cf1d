package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Edge case tests for scenarios that could cause silent failures or
// unexpected behavior.

// =============================================================================
// FindProjectRoot edge cases
// =============================================================================

func TestFindProjectRoot_NonExistentDir_ReturnsErrorOrPath(t *testing.T) {
	nonExistent := "/nonexistent/path/that/does/not/exist"
	root, err := FindProjectRoot(nonExistent)
	if err != nil {
		assert.Error(t, err)
	} else {
		assert.NotEmpty(t, root)
	}
}

func TestFindProjectRoot_DeepNesting_FindsGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	deepNested := filepath.Join(tmpDir, "a", "b", "c", "d", "e", "f", "g", "h")
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(deepNested, 0o755))

	root, err := FindProjectRoot(deepNested)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_RelativePath_ResolvesToAbsolute(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))

	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	root, err := FindProjectRoot(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root), "root should be absolute path")
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, expectedRoot, actualRoot)
}

func TestFindProjectRoot_EmptyString_UsesCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))

	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	root, err := FindProjectRoot("")
	require.NoError(t, err)
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, expectedRoot, actualRoot)
}

// =============================================================================
// Config merge edge cases
// =============================================================================

func TestLoad_ZeroValuesNotMerged(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
limits:
  max_results: 0
  max_terms: 0
performance:
  index_workers: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".oeismatch.yaml"), []byte(configContent), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Limits.MaxResults, "zero should not override default max_results")
	assert.Equal(t, 64, cfg.Limits.MaxTerms, "zero should not override default max_terms")
}

func TestLoad_NegativeValues_Validated(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := NewConfig()
	cfg.Limits.MaxResults = -10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_results must be non-negative")
	_ = tmpDir
}

func TestLoad_CoeffRangeValidated(t *testing.T) {
	cfg := NewConfig()
	cfg.Combination.CoeffMin = 10
	cfg.Combination.CoeffMax = 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coeff_min")
}

// =============================================================================
// Config file permission edge cases
// =============================================================================

func TestLoad_UnreadableConfigFile_ReturnsError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("test requires non-root user")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".oeismatch.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0o000))
	defer func() { _ = os.Chmod(configPath, 0o644) }()

	cfg, err := Load(tmpDir)
	require.Error(t, err, "Load should fail for unreadable config file")
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read", "error should mention read failure")
}

// =============================================================================
// Config JSON marshaling edge cases
// =============================================================================

func TestConfig_JSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Limits.MaxTerms = 200
	cfg.Combination.CoeffMin = -3
	cfg.Combination.CoeffMax = 3
	cfg.Server.LogLevel = "debug"

	data, err := jsonMarshal(cfg)
	require.NoError(t, err)

	var parsed Config
	require.NoError(t, jsonUnmarshal(data, &parsed))

	assert.Equal(t, 200, parsed.Limits.MaxTerms)
	assert.Equal(t, int64(-3), parsed.Combination.CoeffMin)
	assert.Equal(t, int64(3), parsed.Combination.CoeffMax)
	assert.Equal(t, "debug", parsed.Server.LogLevel)
}

func TestConfig_UnmarshalJSON_InvalidJSON_ReturnsError(t *testing.T) {
	invalidJSON := []byte("{invalid json")
	var cfg Config
	err := jsonUnmarshal(invalidJSON, &cfg)
	require.Error(t, err, "unmarshal should fail for invalid JSON")
}

// =============================================================================
// Cache config edge cases
// =============================================================================

func TestNewConfig_CacheDefaultsEnabledWithSize(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 512, cfg.Cache.Size)
}
