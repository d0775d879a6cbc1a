package main

import (
	"os"

	"github.com/loykin/deployr"
)

// resolveConfig layers the target description: config file, then
// DEPLOYR_* environment variables, then flags, most specific last.
func resolveConfig(f *GlobalFlags) (deployr.Config, error) {
	var cfg deployr.Config
	if f.ConfigPath != "" {
		loaded, err := deployr.LoadConfig(f.ConfigPath)
		if err != nil {
			return deployr.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = deployr.DefaultConfig()
	}

	applyEnv(&cfg.LocalDir, "DEPLOYR_LOCAL_DIR")
	applyEnv(&cfg.ServerDir, "DEPLOYR_SERVER_DIR")
	applyEnv(&cfg.RemoteHost, "DEPLOYR_HOST")

	if f.LocalDir != "" {
		cfg.LocalDir = f.LocalDir
	}
	if f.ServerDir != "" {
		cfg.ServerDir = f.ServerDir
	}
	if f.RemoteHost != "" {
		cfg.RemoteHost = f.RemoteHost
	}

	if err := cfg.Validate(); err != nil {
		return deployr.Config{}, err
	}
	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
