package config

import (
	"errors"
	"path"

	"github.com/loykin/deployr/internal/mirror"
	"github.com/spf13/viper"
)

// Config is the explicit deployment target description. It replaces the
// hardcoded path constants of the original shell tooling.
type Config struct {
	LocalDir   string `toml:"local_dir" mapstructure:"local_dir"`
	ServerDir  string `toml:"server_dir" mapstructure:"server_dir"`
	RemoteHost string `toml:"remote_host" mapstructure:"remote_host"`

	Entrypoint   string `toml:"entrypoint" mapstructure:"entrypoint"`
	VenvDir      string `toml:"venv_dir" mapstructure:"venv_dir"`
	PIDFile      string `toml:"pidfile" mapstructure:"pidfile"`
	LogFile      string `toml:"logfile" mapstructure:"logfile"`
	Requirements string `toml:"requirements" mapstructure:"requirements"`

	Excludes []string `toml:"excludes" mapstructure:"excludes"`

	// StopOnPushFailure makes deploy abort before restart when the push
	// step fails. Off by default, matching the original tooling.
	StopOnPushFailure bool `toml:"stop_on_push_failure" mapstructure:"stop_on_push_failure"`

	Log     *LogConfig     `toml:"log" mapstructure:"log"`
	History *HistoryConfig `toml:"history" mapstructure:"history"`
}

// LogConfig describes the local operations log. Rotation parameters
// follow lumberjack semantics.
type LogConfig struct {
	Path       string `toml:"path" mapstructure:"path"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// HistoryConfig selects the deployment audit sink by DSN.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// Default returns a config with the conventional bot project layout.
func Default() Config {
	return Config{
		Entrypoint:   "bot.py",
		VenvDir:      "venv",
		PIDFile:      "bot.pid",
		LogFile:      "bot.log",
		Requirements: "requirements.txt",
		Excludes:     mirror.DefaultExcludes,
	}
}

// Load parses a TOML config file and fills unset fields from Default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills empty fields with the Default values.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Entrypoint == "" {
		c.Entrypoint = d.Entrypoint
	}
	if c.VenvDir == "" {
		c.VenvDir = d.VenvDir
	}
	if c.PIDFile == "" {
		c.PIDFile = d.PIDFile
	}
	if c.LogFile == "" {
		c.LogFile = d.LogFile
	}
	if c.Requirements == "" {
		c.Requirements = d.Requirements
	}
	if len(c.Excludes) == 0 {
		c.Excludes = d.Excludes
	}
}

// Validate checks the fields every action depends on.
func (c Config) Validate() error {
	if c.LocalDir == "" {
		return errors.New("local_dir is required")
	}
	if c.ServerDir == "" {
		return errors.New("server_dir is required")
	}
	if c.RemoteHost == "" {
		return errors.New("remote_host is required")
	}
	return nil
}

// RemotePath joins elems onto the server directory.
func (c Config) RemotePath(elems ...string) string {
	return path.Join(append([]string{c.ServerDir}, elems...)...)
}

// InterpreterCandidates lists the venv interpreter paths probed by
// restart, in preference order.
func (c Config) InterpreterCandidates() []string {
	return []string{
		c.RemotePath(c.VenvDir, "bin", "python3"),
		c.RemotePath(c.VenvDir, "bin", "python"),
	}
}
