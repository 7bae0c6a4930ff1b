// Package options persists key/value settings to the Kolibri options.ini
// file and reads back the deployment settings this tool needs.
package options

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strconv"

	ini "gopkg.in/ini.v1"

	"github.com/learningequality/kolibri-server-ctl/internal/errors"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

// Well-known sections and keys.
const (
	SectionDeployment = "Deployment"
	SectionServer     = "Server"
	SectionCache      = "Cache"

	KeyHTTPPort             = "HTTP_PORT"
	KeyZipContentPort       = "ZIP_CONTENT_PORT"
	KeyURLPathPrefix        = "URL_PATH_PREFIX"
	KeyCherrypyStart        = "CHERRYPY_START"
	KeyCacheBackend         = "CACHE_BACKEND"
	KeyRedisDB              = "CACHE_REDIS_DB"
	KeyRedisMaxMemory       = "CACHE_REDIS_MAXMEMORY"
	KeyRedisMaxMemoryPolicy = "CACHE_REDIS_MAXMEMORY_POLICY"
)

// Store reads and writes a single options.ini file. Writes are last-writer-
// wins with no locking; the file is rewritten in full on every Set.
type Store struct {
	fs   system.FileSystem
	path string
}

// NewStore creates a Store over the options file at path.
func NewStore(fsys system.FileSystem, path string) *Store {
	return &Store{fs: fsys, path: path}
}

// Path returns the location of the options file.
func (s *Store) Path() string {
	return s.path
}

// Set persists a single (section, key, value) triple, overwriting any prior
// value for that key and preserving everything else in the file. The file
// is created if absent. Accepted value types are string, int, and bool.
func (s *Store) Set(section, key string, value interface{}) error {
	cfg, err := s.load()
	if err != nil {
		return errors.OptionsError("read", err)
	}

	formatted, err := formatValue(value)
	if err != nil {
		return errors.OptionsError("write", err)
	}

	logging.Debug("writing option", "section", section, "key", key, "value", formatted)
	cfg.Section(section).Key(key).SetValue(formatted)

	if err := s.save(cfg); err != nil {
		return errors.OptionsError("write", err)
	}
	return nil
}

// Settings holds the deployment values this tool reads at startup. Loading
// them once into an explicit struct keeps the other packages free of any
// global configuration state.
type Settings struct {
	HTTPPort       int
	ZipContentPort int
	URLPathPrefix  string
	RedisDB        int
}

// Settings reads the deployment settings, applying Kolibri's defaults for
// missing keys. A path prefix other than "/" gains a leading slash, matching
// how the server mounts sub-path deployments.
func (s *Store) Settings() (*Settings, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, errors.OptionsError("read", err)
	}

	deployment := cfg.Section(SectionDeployment)
	cache := cfg.Section(SectionCache)

	settings := &Settings{
		HTTPPort:       deployment.Key(KeyHTTPPort).MustInt(8080),
		ZipContentPort: deployment.Key(KeyZipContentPort).MustInt(0),
		URLPathPrefix:  deployment.Key(KeyURLPathPrefix).MustString("/"),
		RedisDB:        cache.Key(KeyRedisDB).MustInt(0),
	}

	if settings.URLPathPrefix != "/" {
		settings.URLPathPrefix = "/" + settings.URLPathPrefix
	}

	return settings, nil
}

// Get returns the raw string value for a key, or "" if the file or key is
// missing.
func (s *Store) Get(section, key string) string {
	cfg, err := s.load()
	if err != nil {
		return ""
	}
	return cfg.Section(section).Key(key).String()
}

func (s *Store) load() (*ini.File, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return ini.Empty(), nil
		}
		return nil, err
	}
	return ini.Load(data)
}

func (s *Store) save(cfg *ini.File) error {
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return err
	}
	return s.fs.WriteFile(s.path, buf.Bytes(), 0644)
}

// formatValue renders a value the way the Python-side options parser writes
// it: booleans as True/False, integers in decimal, strings verbatim.
func formatValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return "", fmt.Errorf("unsupported option value type %T", value)
	}
}
