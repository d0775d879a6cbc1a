package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfigFromFlagsOnly(t *testing.T) {
	f := &GlobalFlags{LocalDir: "/l", ServerDir: "/s", RemoteHost: "h"}
	cfg, err := resolveConfig(f)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.LocalDir != "/l" || cfg.ServerDir != "/s" || cfg.RemoteHost != "h" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Entrypoint != "bot.py" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
}

func TestResolveConfigRequiresTarget(t *testing.T) {
	if _, err := resolveConfig(&GlobalFlags{}); err == nil {
		t.Fatalf("expected validation error without target")
	}
}

func TestResolveConfigEnvFallback(t *testing.T) {
	t.Setenv("DEPLOYR_LOCAL_DIR", "/env/l")
	t.Setenv("DEPLOYR_SERVER_DIR", "/env/s")
	t.Setenv("DEPLOYR_HOST", "envhost")
	cfg, err := resolveConfig(&GlobalFlags{})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.RemoteHost != "envhost" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "deployr.toml")
	body := "local_dir = \"/file/l\"\nserver_dir = \"/file/s\"\nremote_host = \"filehost\"\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	f := &GlobalFlags{ConfigPath: p, RemoteHost: "flaghost"}
	cfg, err := resolveConfig(f)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.RemoteHost != "flaghost" {
		t.Fatalf("flag should beat config file: %+v", cfg)
	}
	if cfg.LocalDir != "/file/l" {
		t.Fatalf("config file values lost: %+v", cfg)
	}
}
