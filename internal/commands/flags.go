package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/signoff/internal/core/config"
	"golang.org/x/term"
)

type Flags struct {
	LogLevel    string
	LogFile     string
	ConfigPath  string
	DataDir     string
	MetricsFile string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "signoff", "config.yaml")
}

// DefaultDataDir is the working-directory relative state directory shared
// with the agent tooling that writes bundles.
func DefaultDataDir() string {
	return ".agents"
}

// interactive reports whether stdin is a terminal a prompt can read from.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
