package deployr

import (
	"github.com/loykin/deployr/internal/config"
	"github.com/loykin/deployr/internal/deploy"
	"github.com/loykin/deployr/internal/history"
	"github.com/loykin/deployr/internal/history/factory"
	"github.com/loykin/deployr/internal/runner"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type LogConfig = config.LogConfig

type HistoryConfig = config.HistoryConfig

type Deployer = deploy.Deployer

type HistoryEvent = history.Event

type HistorySink = history.Sink

type HistoryQuerier = history.Querier

type Runner = runner.Runner

var (
	ErrNoInterpreter   = deploy.ErrNoInterpreter
	ErrWorkdirMismatch = deploy.ErrWorkdirMismatch
)

// New returns a Deployer running rsync and ssh on the local machine.
func New(cfg Config) *Deployer { return deploy.New(cfg, runner.Local{}) }

// NewWithRunner is New with a custom command runner, mainly for tests
// and embedders that intercept external invocations.
func NewWithRunner(cfg Config, r Runner) *Deployer { return deploy.New(cfg, r) }

// DefaultConfig returns the conventional bot project layout.
func DefaultConfig() Config { return config.Default() }

// LoadConfig parses a TOML config file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// NewHistorySink selects an audit sink from a DSN (sqlite path or
// postgres URL).
func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }
