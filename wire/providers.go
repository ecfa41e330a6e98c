package wire

import (
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/config"
	"github.com/Digital-Creators-Team/slot-machine-core/engine"
	"github.com/Digital-Creators-Team/slot-machine-core/logging"
	"github.com/Digital-Creators-Team/slot-machine-core/server"
	"github.com/Digital-Creators-Team/slot-machine-core/store"
	"github.com/Digital-Creators-Team/slot-machine-core/store/redisstore"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRules provides the rule set, from file when configured
func ProvideRules(cfg *config.Config) (engine.Rules, error) {
	if cfg.RulesFile != "" {
		return engine.LoadRules(cfg.RulesFile)
	}
	return engine.DefaultRules(), nil
}

// ProvideStore provides the snapshot store for the configured backend.
// The second return is non-nil only for the file backend, which can report
// its on-disk status to the settings panel.
func ProvideStore(cfg *config.Config, rules engine.Rules, logger zerolog.Logger) (engine.Store, server.StorageInspector, error) {
	switch cfg.Storage.Backend {
	case "file":
		fs := store.NewFileStore(cfg.Storage.Path, rules, logger)
		return fs, fs, nil
	case "redis":
		rs, err := redisstore.New(cfg.Redis, rules, logger)
		if err != nil {
			return nil, nil, err
		}
		return rs, nil, nil
	case "memory":
		return store.NewMemoryStore(rules), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ProvideEngine provides the game engine
func ProvideEngine(rules engine.Rules, st engine.Store, logger zerolog.Logger) *engine.Engine {
	return engine.New(engine.Options{
		Rules:  rules,
		Store:  st,
		Logger: logger,
	})
}

// ProvideSpinner provides the auto-spin driver
func ProvideSpinner(game *engine.Engine, logger zerolog.Logger) *engine.AutoSpinner {
	return engine.NewAutoSpinner(game, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(
	cfg *config.Config,
	logger zerolog.Logger,
	game *engine.Engine,
	spinner *engine.AutoSpinner,
	storage server.StorageInspector,
) server.Options {
	return server.Options{
		Config:  cfg,
		Logger:  logger,
		Game:    game,
		Spinner: spinner,
		Storage: storage,
	}
}

// ProvideApp provides the main application
func ProvideApp(opts server.Options) *server.App {
	return server.New(opts)
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// EngineSet is the wire provider set for the game engine
var EngineSet = wire.NewSet(
	ProvideRules,
	ProvideStore,
	ProvideEngine,
	ProvideSpinner,
)

// ServerSet is the wire provider set for the HTTP facade
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// DefaultSet wires the full application
var DefaultSet = wire.NewSet(
	LoggingSet,
	EngineSet,
	ServerSet,
)
