package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete oeismatch configuration: search limits and
// budgets plus the paths and server knobs the CLI and daemon share.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	Paths       PathsConfig       `yaml:"paths" json:"paths"`
	Limits      LimitsConfig      `yaml:"limits" json:"limits"`
	Transform   TransformConfig   `yaml:"transform" json:"transform"`
	Combination CombinationConfig `yaml:"combination" json:"combination"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
}

// PathsConfig locates the on-disk artifacts the matcher reads and writes.
type PathsConfig struct {
	Stripped  string `yaml:"stripped" json:"stripped"`     // raw OEIS stripped.gz dump
	Names     string `yaml:"names" json:"names"`           // raw OEIS names.gz dump
	Keywords  string `yaml:"keywords" json:"keywords"`     // optional raw keywords dump
	DB        string `yaml:"db" json:"db"`                 // built SQLite IndexStore
	NameIndex string `yaml:"name_index" json:"name_index"` // bleve full-text index over names
}

// LimitsConfig bounds query size and result volume.
type LimitsConfig struct {
	MaxTerms         int `yaml:"max_terms" json:"max_terms"`
	MaxResults       int `yaml:"max_results" json:"max_results"`
	MinMatchLength   int `yaml:"min_match_length" json:"min_match_length"`
	MaxBucketRecords int `yaml:"max_bucket_records" json:"max_bucket_records"`
}

// TransformConfig bounds the transform-chain search.
type TransformConfig struct {
	MaxDepth   int `yaml:"max_depth" json:"max_depth"`
	SnippetLen int `yaml:"snippet_len" json:"snippet_len"`
}

// CombinationConfig bounds the 2-/3-sequence combination search.
type CombinationConfig struct {
	CoeffMin        int64   `yaml:"coeff_min" json:"coeff_min"`
	CoeffMax        int64   `yaml:"coeff_max" json:"coeff_max"`
	MaxShift        int     `yaml:"max_shift" json:"max_shift"`
	MaxShiftBack    int     `yaml:"max_shift_back" json:"max_shift_back"`
	MaxCandidates   int     `yaml:"max_candidates" json:"max_candidates"`
	MaxChecks       int     `yaml:"max_checks" json:"max_checks"`
	MaxCombinations int     `yaml:"max_combinations" json:"max_combinations"`
	MaxTimeS        float64 `yaml:"max_time_s" json:"max_time_s"`
	UseRational     bool    `yaml:"use_rational" json:"use_rational"`
	EnableTriples   bool    `yaml:"enable_triples" json:"enable_triples"`
}

// PerformanceConfig configures index build and candidate-selection tuning.
type PerformanceConfig struct {
	IndexWorkers  int    `yaml:"index_workers" json:"index_workers"`
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
	SQLiteCacheMB int    `yaml:"sqlite_cache_mb" json:"sqlite_cache_mb"`
}

// ServerConfig configures the daemon/MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"` // "stdio" or "unix"
	SocketDir string `yaml:"socket_dir" json:"socket_dir"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// CacheConfig configures the LRU candidate-bucket cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Size    int  `yaml:"size" json:"size"`
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Stripped:  defaultDataPath("stripped.gz"),
			Names:     defaultDataPath("names.gz"),
			Keywords:  defaultDataPath("keywords"),
			DB:        defaultDataPath("oeis.db"),
			NameIndex: defaultDataPath("names.bleve"),
		},
		Limits: LimitsConfig{
			MaxTerms:         64,
			MaxResults:       25,
			MinMatchLength:   4,
			MaxBucketRecords: 200,
		},
		Transform: TransformConfig{
			MaxDepth:   2,
			SnippetLen: 10,
		},
		Combination: CombinationConfig{
			CoeffMin:        -5,
			CoeffMax:        5,
			MaxShift:        2,
			MaxShiftBack:    2,
			MaxCandidates:   500,
			MaxChecks:       200000,
			MaxCombinations: 50000,
			MaxTimeS:        2.0,
			UseRational:     false,
			EnableTriples:   true,
		},
		Performance: PerformanceConfig{
			IndexWorkers:  runtime.NumCPU(),
			WatchDebounce: "500ms",
			SQLiteCacheMB: 64,
		},
		Server: ServerConfig{
			Transport: "stdio",
			SocketDir: defaultSocketDir(),
			LogLevel:  "info",
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    512,
		},
	}
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".oeismatch", name)
	}
	return filepath.Join(home, ".oeismatch", name)
}

func defaultSocketDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".oeismatch")
	}
	return filepath.Join(home, ".oeismatch")
}

// GetUserConfigPath follows the XDG Base Directory convention.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "oeismatch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "oeismatch", "config.yaml")
	}
	return filepath.Join(home, ".config", "oeismatch", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from dir in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/oeismatch/config.yaml)
//  3. Project config (.oeismatch.yaml in dir)
//  4. Environment variables (OEISMATCH_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".oeismatch.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".oeismatch.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero fields of other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.Stripped != "" {
		c.Paths.Stripped = other.Paths.Stripped
	}
	if other.Paths.Names != "" {
		c.Paths.Names = other.Paths.Names
	}
	if other.Paths.Keywords != "" {
		c.Paths.Keywords = other.Paths.Keywords
	}
	if other.Paths.DB != "" {
		c.Paths.DB = other.Paths.DB
	}
	if other.Paths.NameIndex != "" {
		c.Paths.NameIndex = other.Paths.NameIndex
	}

	if other.Limits.MaxTerms != 0 {
		c.Limits.MaxTerms = other.Limits.MaxTerms
	}
	if other.Limits.MaxResults != 0 {
		c.Limits.MaxResults = other.Limits.MaxResults
	}
	if other.Limits.MinMatchLength != 0 {
		c.Limits.MinMatchLength = other.Limits.MinMatchLength
	}
	if other.Limits.MaxBucketRecords != 0 {
		c.Limits.MaxBucketRecords = other.Limits.MaxBucketRecords
	}

	if other.Transform.MaxDepth != 0 {
		c.Transform.MaxDepth = other.Transform.MaxDepth
	}
	if other.Transform.SnippetLen != 0 {
		c.Transform.SnippetLen = other.Transform.SnippetLen
	}

	if other.Combination.CoeffMin != 0 {
		c.Combination.CoeffMin = other.Combination.CoeffMin
	}
	if other.Combination.CoeffMax != 0 {
		c.Combination.CoeffMax = other.Combination.CoeffMax
	}
	if other.Combination.MaxShift != 0 {
		c.Combination.MaxShift = other.Combination.MaxShift
	}
	if other.Combination.MaxShiftBack != 0 {
		c.Combination.MaxShiftBack = other.Combination.MaxShiftBack
	}
	if other.Combination.MaxCandidates != 0 {
		c.Combination.MaxCandidates = other.Combination.MaxCandidates
	}
	if other.Combination.MaxChecks != 0 {
		c.Combination.MaxChecks = other.Combination.MaxChecks
	}
	if other.Combination.MaxCombinations != 0 {
		c.Combination.MaxCombinations = other.Combination.MaxCombinations
	}
	if other.Combination.MaxTimeS != 0 {
		c.Combination.MaxTimeS = other.Combination.MaxTimeS
	}
	if other.Combination.UseRational {
		c.Combination.UseRational = true
	}
	if other.Combination.EnableTriples {
		c.Combination.EnableTriples = true
	}

	if other.Performance.IndexWorkers != 0 {
		c.Performance.IndexWorkers = other.Performance.IndexWorkers
	}
	if other.Performance.WatchDebounce != "" {
		c.Performance.WatchDebounce = other.Performance.WatchDebounce
	}
	if other.Performance.SQLiteCacheMB != 0 {
		c.Performance.SQLiteCacheMB = other.Performance.SQLiteCacheMB
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.SocketDir != "" {
		c.Server.SocketDir = other.Server.SocketDir
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Cache.Enabled {
		c.Cache.Enabled = true
	}
	if other.Cache.Size != 0 {
		c.Cache.Size = other.Cache.Size
	}
}

// applyEnvOverrides applies OEISMATCH_* environment variable overrides,
// the highest-precedence configuration tier.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OEISMATCH_DB_PATH"); v != "" {
		c.Paths.DB = v
	}
	if v := os.Getenv("OEISMATCH_MAX_TERMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxTerms = n
		}
	}
	if v := os.Getenv("OEISMATCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxResults = n
		}
	}
	if v := os.Getenv("OEISMATCH_TRANSFORM_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Transform.MaxDepth = n
		}
	}
	if v := os.Getenv("OEISMATCH_COMBINATION_MAX_TIME_S"); v != "" {
		if f, err := parseFloat64(v); err == nil && f > 0 {
			c.Combination.MaxTimeS = f
		}
	}
	if v := os.Getenv("OEISMATCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("OEISMATCH_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("OEISMATCH_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
}

func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// FindProjectRoot walks up from startDir looking for .git or a
// .oeismatch.yaml/.yml project config.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".oeismatch.yaml")) ||
			fileExists(filepath.Join(currentDir, ".oeismatch.yml")) {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.Limits.MaxTerms <= 0 {
		return fmt.Errorf("limits.max_terms must be positive, got %d", c.Limits.MaxTerms)
	}
	if c.Limits.MaxResults < 0 {
		return fmt.Errorf("limits.max_results must be non-negative, got %d", c.Limits.MaxResults)
	}
	if c.Limits.MinMatchLength <= 0 {
		return fmt.Errorf("limits.min_match_length must be positive, got %d", c.Limits.MinMatchLength)
	}
	if c.Combination.CoeffMin > c.Combination.CoeffMax {
		return fmt.Errorf("combination.coeff_min (%d) must be <= combination.coeff_max (%d)", c.Combination.CoeffMin, c.Combination.CoeffMax)
	}
	if c.Combination.MaxTimeS <= 0 {
		return fmt.Errorf("combination.max_time_s must be positive, got %f", c.Combination.MaxTimeS)
	}

	validTransports := map[string]bool{"stdio": true, "unix": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'unix', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file, or returns a nil
// config and nil error if it doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// CoeffRange returns the inclusive integer coefficient range configured
// for the combination search.
func (c CombinationConfig) CoeffRange() []int64 {
	if c.CoeffMin > c.CoeffMax {
		return nil
	}
	out := make([]int64, 0, c.CoeffMax-c.CoeffMin+1)
	for v := c.CoeffMin; v <= c.CoeffMax; v++ {
		out = append(out, v)
	}
	return out
}
