package musicd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "musicd.toml")
	data := []byte("" +
		"[server]\n" +
		"host = \"0.0.0.0\"\n" +
		"port = 6000\n" +
		"log_level = \"debug\"\n" +
		"\n" +
		"[player]\n" +
		"engine = \"gstreamer\"\n" +
		"poll_interval_ms = 250\n" +
		"\n" +
		"[modules.embedded_mqtt]\n" +
		"enabled = true\n" +
		"allow_anonymous = true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:6000" {
		t.Fatalf("expected listen addr, got %q", cfg.ListenAddr())
	}
	if cfg.Player.Engine != "gstreamer" {
		t.Fatalf("expected gstreamer engine")
	}
	if !cfg.Modules.EmbeddedMQTT.Enabled {
		t.Fatalf("expected embedded mqtt enabled")
	}
	// Sections absent from the file keep their defaults.
	if cfg.Resolver.SearchLimit != 5 {
		t.Fatalf("expected default search limit, got %d", cfg.Resolver.SearchLimit)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:5000" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr())
	}
	if cfg.Player.Engine != "mpv" {
		t.Fatalf("expected default engine, got %q", cfg.Player.Engine)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MUSICD_HOST", "192.168.1.10")
	t.Setenv("MUSICD_PORT", "7777")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.ListenAddr() != "192.168.1.10:7777" {
		t.Fatalf("expected env override, got %q", cfg.ListenAddr())
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv("MUSICD_PORT", "not-a-port")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("expected error for bad port")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default config path: %v", err)
	}
	if path == "" {
		t.Fatalf("expected path")
	}
}
