package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

func TestLoadToolConfig_MissingFileUsesDefaults(t *testing.T) {
	fs := system.NewMockFS()

	cfg, err := LoadToolConfig(fs, DefaultToolConfigPath)
	if err != nil {
		t.Fatalf("LoadToolConfig failed: %v", err)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr: %q", cfg.RedisAddr)
	}
	if cfg.UWSGISocket != "/tmp/kolibri_uwsgi.sock" {
		t.Errorf("unexpected uwsgi socket: %q", cfg.UWSGISocket)
	}
	if cfg.HashiSocket != "/tmp/kolibri_hashi_uwsgi.sock" {
		t.Errorf("unexpected hashi socket: %q", cfg.HashiSocket)
	}
	if cfg.KolibriHome != "" {
		t.Errorf("expected empty home override, got %q", cfg.KolibriHome)
	}
}

func TestLoadToolConfig_Overrides(t *testing.T) {
	fs := system.NewMockFS()
	fs.AddFile(DefaultToolConfigPath, []byte(
		"kolibri_home = \"/var/lib/kolibri\"\n"+
			"redis_addr = \"127.0.0.1:6390\"\n"), 0644)

	cfg, err := LoadToolConfig(fs, DefaultToolConfigPath)
	if err != nil {
		t.Fatalf("LoadToolConfig failed: %v", err)
	}

	if cfg.KolibriHome != "/var/lib/kolibri" {
		t.Errorf("home override not applied: %q", cfg.KolibriHome)
	}
	if cfg.RedisAddr != "127.0.0.1:6390" {
		t.Errorf("redis override not applied: %q", cfg.RedisAddr)
	}
	// Fields absent from the file keep their defaults.
	if cfg.UWSGISocket != "/tmp/kolibri_uwsgi.sock" {
		t.Errorf("unset field lost its default: %q", cfg.UWSGISocket)
	}
}

func TestLoadToolConfig_MalformedFile(t *testing.T) {
	fs := system.NewMockFS()
	fs.AddFile(DefaultToolConfigPath, []byte("kolibri_home = [broken"), 0644)

	if _, err := LoadToolConfig(fs, DefaultToolConfigPath); err == nil {
		t.Error("expected error for malformed tool config")
	}
}

func TestNewPaths_Defaults(t *testing.T) {
	p, err := NewPaths("/var/lib/kolibri", "")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	if p.OptionsPath != filepath.Join("/var/lib/kolibri", "options.ini") {
		t.Errorf("unexpected options path: %q", p.OptionsPath)
	}
	if p.NginxConfPath != filepath.Join("/var/lib/kolibri", "nginx.conf") {
		t.Errorf("unexpected nginx conf path: %q", p.NginxConfPath)
	}
}

func TestNewPaths_AbsoluteNginxOverride(t *testing.T) {
	p, err := NewPaths("/var/lib/kolibri", "/etc/nginx/conf.d/kolibri.conf")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	if p.NginxConfPath != "/etc/nginx/conf.d/kolibri.conf" {
		t.Errorf("absolute override not honored: %q", p.NginxConfPath)
	}
}

func TestNewPaths_RelativeNginxOverrideStaysUnderHome(t *testing.T) {
	p, err := NewPaths("/var/lib/kolibri", "../../etc/passwd")
	if err != nil {
		t.Fatalf("NewPaths failed: %v", err)
	}

	if !strings.HasPrefix(p.NginxConfPath, "/var/lib/kolibri") {
		t.Errorf("relative override escaped home: %q", p.NginxConfPath)
	}
}

func TestDefaultHome_EnvOverride(t *testing.T) {
	t.Setenv("KOLIBRI_HOME", "/tmp/kolibri-test-home")

	if got := DefaultHome(); got != "/tmp/kolibri-test-home" {
		t.Errorf("DefaultHome() = %q, want env value", got)
	}
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	p, err := ResolvePaths(&ToolConfig{KolibriHome: "/srv/kolibri"})
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}
	if p.KolibriHome != "/srv/kolibri" {
		t.Errorf("home override not applied: %q", p.KolibriHome)
	}
}
