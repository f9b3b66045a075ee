// Package config loads ushell's runtime configuration entirely from
// environment variables, following the teacher repo's envInt/required-
// field Load() pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds every environment-tunable setting ushell reads at startup.
type Config struct {
	HistFile      string
	HistSize      int
	EnvMax        int
	MCPPort       int
	MCPMaxClients int
	AptHome       string
	LogFile       string
}

// Load populates a Config from the environment, applying defaults for
// anything unset and returning a descriptive error for a malformed
// integer value.
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()

	histFile := os.Getenv("USHELL_HISTFILE")
	if histFile == "" {
		histFile = filepath.Join(home, ".ushell_history")
	}

	histSize, err := envInt("USHELL_HISTSIZE", 1000)
	if err != nil {
		return nil, err
	}
	envMax, err := envInt("USHELL_ENV_MAX", 100)
	if err != nil {
		return nil, err
	}
	mcpPort, err := envInt("USHELL_MCP_PORT", 9000)
	if err != nil {
		return nil, err
	}
	mcpMaxClients, err := envInt("USHELL_MCP_MAX_CLIENTS", 10)
	if err != nil {
		return nil, err
	}

	aptHome := os.Getenv("USHELL_APT_HOME")
	if aptHome == "" {
		aptHome = filepath.Join(home, ".ushell", "apt")
	}

	return &Config{
		HistFile:      histFile,
		HistSize:      histSize,
		EnvMax:        envMax,
		MCPPort:       mcpPort,
		MCPMaxClients: mcpMaxClients,
		AptHome:       aptHome,
		LogFile:       os.Getenv("USHELL_LOGFILE"),
	}, nil
}

// envInt reads key as an integer, returning def if unset and an error if
// set but not parseable.
func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}
