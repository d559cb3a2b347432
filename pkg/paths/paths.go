package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/serverwrap/pkg/errors"
)

// Environment variable names
const (
	// EnvConfig overrides the configuration file location
	EnvConfig = "SERVERWRAP_CONFIG"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name under the XDG base directories
	AppDirName = "serverwrap"

	// DefaultConfigFile is the configuration file in the working directory
	DefaultConfigFile = "config.toml"
)

// Paths resolves serverwrap's files relative to a working directory.
type Paths struct {
	workDir    string
	configPath string
}

// New resolves paths against workDir, or the current directory when empty.
// configFlag has priority over SERVERWRAP_CONFIG.
func New(workDir, configFlag string) (*Paths, error) {
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrIO, "failed to get current directory")
		}
		workDir = cwd
	}
	abs, err := filepath.Abs(expandHome(workDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to get absolute path for %s", workDir)
	}

	p := &Paths{workDir: abs}

	configPath := configFlag
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	p.configPath = p.Resolve(configPath)
	return p, nil
}

// WorkDir returns the directory relative paths resolve against.
func (p *Paths) WorkDir() string {
	return p.workDir
}

// ConfigPath returns the configuration file.
func (p *Paths) ConfigPath() string {
	return p.configPath
}

// Resolve expands ~ and makes path absolute against the working directory.
// URLs and empty strings are not paths and are returned unchanged.
func (p *Paths) Resolve(path string) string {
	if path == "" || isURL(path) {
		return path
	}
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.workDir, path)
}

// CacheRoot returns the cache root for the configured cache_dir. Empty means
// $XDG_CACHE_HOME/serverwrap.
func (p *Paths) CacheRoot(configured string) string {
	if configured == "" {
		return filepath.Join(xdg.CacheHome, AppDirName)
	}
	return p.Resolve(configured)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
