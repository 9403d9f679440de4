package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/MarisaKirisame/mdo/internal/config"
	"github.com/MarisaKirisame/mdo/internal/task"
	"github.com/MarisaKirisame/mdo/internal/when"
)

// Flags holds the global options plus the state the Before hook prepares
// for every command.
type Flags struct {
	ConfigPath    string
	StorePath     string
	LogLevel      string
	TodayOverride string

	Config *config.Config
	Store  *task.Store
	Logger zerolog.Logger
}

// Today returns the reference day: the wall clock, unless --today pinned a
// fixed date for reproducible output.
func (f *Flags) Today() (when.Date, error) {
	if f.TodayOverride == "" {
		return when.Today(), nil
	}
	d, err := when.ParseDate(f.TodayOverride)
	if err != nil {
		return when.Date{}, fmt.Errorf("--today must be a YYYY-MM-DD date: %w", err)
	}
	return d, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mdo", "config.yaml")
}
