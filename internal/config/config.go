// Package config resolves the two required files - relay and key -
// plus the optional ambient settings.yaml, from a single directory
// under the user's XDG config home. It generalizes the teacher's
// project-local/XDG/home config.yaml walk into the single-directory
// layout §6 specifies.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
)

const dirName = "mostr"

// Files names the two required configuration files plus the
// directory they live in.
type Files struct {
	Dir       string
	RelayPath string
	KeyPath   string
}

// Locate resolves the configuration directory under XDG config home
// (falling back to ~/.config as os.UserConfigDir already does on
// platforms without XDG_CONFIG_HOME set) and names the two required
// files inside it. It does not create the directory or require the
// files to exist - callers check Missing and run the setup wizard.
func Locate() (*Files, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	dir := filepath.Join(base, dirName)
	return &Files{
		Dir:       dir,
		RelayPath: filepath.Join(dir, "relay"),
		KeyPath:   filepath.Join(dir, "key"),
	}, nil
}

// Missing reports whether either required file is absent - the
// trigger for the interactive setup wizard.
func (f *Files) Missing() bool {
	if _, err := os.Stat(f.RelayPath); err != nil {
		return true
	}
	if _, err := os.Stat(f.KeyPath); err != nil {
		return true
	}
	return false
}

// LoadRelays reads the newline-separated relay URL list. A blank or
// absent file is a valid ephemeral/offline session, not an error.
func (f *Files) LoadRelays() ([]string, error) {
	data, err := os.ReadFile(f.RelayPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading relay file: %w", err)
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, nil
}

// LoadKey reads the single private key line (hex or bech32).
func (f *Files) LoadKey() (string, error) {
	data, err := os.ReadFile(f.KeyPath)
	if err != nil {
		return "", fmt.Errorf("reading key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteRelays atomically replaces the relay file, one URL per line.
func (f *Files) WriteRelays(urls []string) error {
	return f.writeAtomic(f.RelayPath, []byte(strings.Join(urls, "\n")+"\n"), 0644)
}

// WriteKey atomically replaces the key file. Mode 0600 since it
// carries a private key.
func (f *Files) WriteKey(key string) error {
	return f.writeAtomic(f.KeyPath, []byte(strings.TrimSpace(key)+"\n"), 0600)
}

// writeAtomic writes to a temp file in the same directory, syncs, and
// renames over the destination - the same write-then-rename sequence
// the daemon registry uses for its JSON file, guarded by an flock so
// a concurrent writer (another mostr process mid-wizard) can't
// interleave a partial write with ours.
func (f *Files) writeAtomic(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(f.Dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	lock := flock.New(filepath.Join(f.Dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(f.Dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Settings carries ambient, non-domain knobs from an optional
// settings.yaml in the same directory. Never required, never holds
// task/event data.
type Settings struct {
	UndoWindow time.Duration
	ViewDepth  int
	Columns    []string
	LogLevel   string
	LogPath    string
	ColorMode  string
}

// LoadSettings reads settings.yaml from dir if present, applying
// defaults and MOSTR_-prefixed environment overrides exactly the way
// the teacher's config.go binds BD_-prefixed variables over its own
// config.yaml defaults.
func LoadSettings(dir string) (Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	settingsPath := filepath.Join(dir, "settings.yaml")
	v.SetConfigFile(settingsPath)

	v.SetEnvPrefix("MOSTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("undo-window", "60s")
	v.SetDefault("view-depth", 1)
	v.SetDefault("columns", []string{"name", "state", "progress", "time"})
	v.SetDefault("log-level", "info")
	v.SetDefault("log-path", "")
	v.SetDefault("color-mode", "auto")

	if _, err := os.Stat(settingsPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading settings.yaml: %w", err)
		}
	}

	undoWindow, err := time.ParseDuration(v.GetString("undo-window"))
	if err != nil {
		return Settings{}, fmt.Errorf("parsing undo-window: %w", err)
	}

	return Settings{
		UndoWindow: undoWindow,
		ViewDepth:  v.GetInt("view-depth"),
		Columns:    v.GetStringSlice("columns"),
		LogLevel:   v.GetString("log-level"),
		LogPath:    v.GetString("log-path"),
		ColorMode:  v.GetString("color-mode"),
	}, nil
}
