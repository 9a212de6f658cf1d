package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.oeismatch/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".oeismatch", "logs")
	}
	return filepath.Join(home, ".oeismatch", "logs")
}

// DefaultLogPath returns the default server log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}

// MCPLogPath returns the MCP server log path. MCP mode logs to its own file
// because stdout/stderr belong to the JSON-RPC stream.
func MCPLogPath() string {
	return filepath.Join(DefaultLogDir(), "mcp.log")
}

// LogSource represents the source of logs to view.
type LogSource string

const (
	// LogSourceServer is the daemon/CLI logs (default).
	LogSourceServer LogSource = "server"
	// LogSourceMCP is the MCP server logs.
	LogSourceMCP LogSource = "mcp"
	// LogSourceAll combines all log sources.
	LogSourceAll LogSource = "all"
)

// FindLogFile attempts to find the log file for viewing.
// Priority:
// 1. Explicit path (if provided)
// 2. ~/.oeismatch/logs/server.log
//
// Returns an error if no log file is found.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	globalPath := DefaultLogPath()
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", fmt.Errorf("no log file found. Server may not have run with --debug yet.\nExpected at: %s", globalPath)
}

// FindLogFileBySource finds log files based on the source type.
// Returns a list of log file paths that exist.
func FindLogFileBySource(source LogSource, explicit string) ([]string, error) {
	// Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return []string{explicit}, nil
		}
		return nil, fmt.Errorf("log file not found: %s", explicit)
	}

	var paths []string
	var checked []string

	switch source {
	case LogSourceServer:
		serverPath := DefaultLogPath()
		checked = append(checked, serverPath)
		if _, err := os.Stat(serverPath); err == nil {
			paths = append(paths, serverPath)
		}

	case LogSourceMCP:
		mcpPath := MCPLogPath()
		checked = append(checked, mcpPath)
		if _, err := os.Stat(mcpPath); err == nil {
			paths = append(paths, mcpPath)
		}

	case LogSourceAll:
		serverPath := DefaultLogPath()
		mcpPath := MCPLogPath()
		checked = append(checked, serverPath, mcpPath)

		if _, err := os.Stat(serverPath); err == nil {
			paths = append(paths, serverPath)
		}
		if _, err := os.Stat(mcpPath); err == nil {
			paths = append(paths, mcpPath)
		}

	default:
		return nil, fmt.Errorf("unknown log source: %s (use: server, mcp, all)", source)
	}

	if len(paths) == 0 {
		hint := getLogHint(source)
		return nil, fmt.Errorf("no log files found for source '%s'.\nChecked: %v\n\n%s", source, checked, hint)
	}

	return paths, nil
}

// ParseLogSource parses a string into a LogSource.
func ParseLogSource(s string) LogSource {
	switch s {
	case "mcp":
		return LogSourceMCP
	case "all":
		return LogSourceAll
	default:
		return LogSourceServer
	}
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	dir := DefaultLogDir()
	return os.MkdirAll(dir, 0o755)
}

// getLogHint returns a helpful message on how to generate logs for the given source.
func getLogHint(source LogSource) string {
	switch source {
	case LogSourceServer:
		return "To generate server logs:\n  oeismatch --debug serve"
	case LogSourceMCP:
		return "To generate MCP logs:\n  oeismatch mcp"
	case LogSourceAll:
		return "To generate logs:\n  server: oeismatch --debug serve\n  MCP:    oeismatch mcp"
	default:
		return ""
	}
}
