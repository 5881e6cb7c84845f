package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration. Every field is optional; command line
// flags override whatever is set here.
type File struct {
	Format    string   `yaml:"format"`
	Sort      string   `yaml:"sort"`
	DirsFirst *bool    `yaml:"dirs_first"`
	Hidden    bool     `yaml:"hidden"`
	NoColors  *bool    `yaml:"no_colors"`
	Threads   int      `yaml:"threads"`
	Rules     []string `yaml:"rules"`
	Groups    []Group  `yaml:"groups"`
}

// Group describes one colour group.
type Group struct {
	Name  string `yaml:"name"`
	Style Style  `yaml:"style"`
	Match Match  `yaml:"match"`
}

// Style is a terminal text style. Colours use lipgloss notation, either an
// ANSI index such as "4" or a hex value such as "#ff00ff".
type Style struct {
	Foreground string `yaml:"fg"`
	Background string `yaml:"bg"`
	Bold       bool   `yaml:"bold"`
	Underline  bool   `yaml:"underline"`
	Italic     bool   `yaml:"italic"`
	Faint      bool   `yaml:"faint"`
}

// Match lists the matchers of a group. Any one matching selects the group.
type Match struct {
	Directory  bool     `yaml:"directory"`
	Hidden     bool     `yaml:"hidden"`
	Executable bool     `yaml:"executable"`
	StartsWith []string `yaml:"starts_with"`
	EndsWith   []string `yaml:"ends_with"`
	Filenames  []string `yaml:"filenames"`
	Extensions []string `yaml:"extensions"`
}

// DefaultPath returns $XDG_CONFIG_HOME/xf/config.yaml (or the platform
// equivalent), or "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "xf", "config.yaml")
}

// LoadFile reads the configuration at path. An empty path means the default
// location, which is allowed to be missing.
func LoadFile(fsys afero.Fs, path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return &File{}, nil
		}
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}
