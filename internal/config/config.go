// Package config resolves the paths and host-level settings that
// kolibri-server-ctl operates on.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

const (
	// DefaultToolConfigPath is where the package installs the optional
	// host-level overrides for this tool.
	DefaultToolConfigPath = "/etc/kolibri/serverctl.toml"

	// DebconfOwner is the debconf owner passed to debconf-communicate.
	DebconfOwner = "kolibri-server"

	optionsFileName = "options.ini"
	nginxConfName   = "nginx.conf"
)

// ToolConfig holds host-level overrides loaded from serverctl.toml.
// Every field is optional; zero values fall back to the defaults below.
type ToolConfig struct {
	KolibriHome string `toml:"kolibri_home"`
	NginxConf   string `toml:"nginx_conf"`
	RedisAddr   string `toml:"redis_addr"`
	UWSGISocket string `toml:"uwsgi_socket"`
	HashiSocket string `toml:"hashi_socket"`
}

// DefaultToolConfig returns the built-in defaults. The socket paths are a
// contract with the uwsgi units shipped by the kolibri-server package.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		RedisAddr:   "localhost:6379",
		UWSGISocket: "/tmp/kolibri_uwsgi.sock",
		HashiSocket: "/tmp/kolibri_hashi_uwsgi.sock",
	}
}

// LoadToolConfig reads the tool config file at path. A missing file is not
// an error: the defaults apply. A present but malformed file is fatal.
func LoadToolConfig(fsys system.FileSystem, path string) (*ToolConfig, error) {
	cfg := DefaultToolConfig()

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read tool config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tool config %s: %w", path, err)
	}
	return cfg, nil
}

// Paths holds the resolved file locations under the Kolibri home directory.
type Paths struct {
	KolibriHome   string
	OptionsPath   string
	NginxConfPath string
}

// DefaultHome returns the Kolibri home directory: $KOLIBRI_HOME if set,
// otherwise ~/.kolibri.
func DefaultHome() string {
	if home := os.Getenv("KOLIBRI_HOME"); home != "" {
		return home
	}
	if userHome, err := os.UserHomeDir(); err == nil {
		return filepath.Join(userHome, ".kolibri")
	}
	return ".kolibri"
}

// NewPaths resolves the file locations for the given home directory. A
// relative nginxConf override is confined to the home directory so a
// misconfigured serverctl.toml cannot direct writes outside of it; an
// absolute override is taken as-is. Empty nginxConf means the default
// nginx.conf under home.
func NewPaths(home, nginxConf string) (*Paths, error) {
	p := &Paths{
		KolibriHome: home,
		OptionsPath: filepath.Join(home, optionsFileName),
	}

	switch {
	case nginxConf == "":
		p.NginxConfPath = filepath.Join(home, nginxConfName)
	case filepath.IsAbs(nginxConf):
		p.NginxConfPath = nginxConf
	default:
		joined, err := securejoin.SecureJoin(home, nginxConf)
		if err != nil {
			return nil, fmt.Errorf("invalid nginx_conf override %q: %w", nginxConf, err)
		}
		p.NginxConfPath = joined
	}

	return p, nil
}

// ResolvePaths builds Paths from a loaded tool config, falling back to the
// default home directory when the config does not override it.
func ResolvePaths(tool *ToolConfig) (*Paths, error) {
	home := tool.KolibriHome
	if home == "" {
		home = DefaultHome()
	}
	return NewPaths(home, tool.NginxConf)
}
