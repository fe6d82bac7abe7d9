package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/maxwell142857/cs5500-group6/internal/config"
	"github.com/maxwell142857/cs5500-group6/internal/db"
	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/generator"
	"github.com/maxwell142857/cs5500-group6/internal/history"
	"github.com/maxwell142857/cs5500-group6/internal/kv"
	"github.com/maxwell142857/cs5500-group6/internal/llm"
	"github.com/maxwell142857/cs5500-group6/internal/logging"
	"github.com/maxwell142857/cs5500-group6/internal/metrics"
	"github.com/maxwell142857/cs5500-group6/internal/pattern"
	"github.com/maxwell142857/cs5500-group6/internal/questions"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
	"github.com/maxwell142857/cs5500-group6/internal/rotation"
	"github.com/maxwell142857/cs5500-group6/internal/sessions"
)

// app holds everything a command needs to run games.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	db        *db.DB
	kv        *kv.Store
	questions *questions.Store
	history   *history.Store
	sessions  *sessions.Store
	tracker   *quota.Tracker
	metrics   *metrics.Metrics
	engine    *game.Engine
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `akinator init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setupLogging installs the global logger. --verbose forces debug level.
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	lc := logging.Config{Level: cfg.Log.Level, File: cfg.Log.File, Pretty: cfg.Log.Pretty}
	if verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}

// openApp opens the stores, restores quota counters and builds the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	a.db, err = db.Open(filepath.Join(cfg.DataDir, "akinator.db"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.kv, err = kv.Open(kv.DefaultConfig(filepath.Join(cfg.DataDir, "kv")))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening kv store: %w", err)
	}

	a.questions = questions.NewStore(a.db)
	a.history = history.NewStore(a.db, a.questions)
	a.sessions = sessions.NewStore(a.kv, cfg.Session.Timeout)
	if err := a.metrics.TrackActiveSessions(a.sessions.Count); err != nil {
		log.Warn().Err(err).Msg("registering session gauge")
	}

	limits := make([]quota.Limit, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		limits = append(limits, quota.Limit{Model: m.Name, RPM: m.RPM, RPD: m.RPD})
	}
	a.tracker = quota.New(limits, quota.WithStore(quota.NewKVStore(a.kv)))
	if err := a.tracker.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("restoring quota counters")
	}

	a.engine = game.NewEngine(
		a.sessions,
		a.questions,
		a.buildGenerator(),
		pattern.New(a.history, cfg.Matcher.MaxCandidates, cfg.Matcher.PatternsPerEntity),
		a.history,
		game.WithMetrics(a.metrics),
	)
	return a, nil
}

// buildGenerator creates a provider per configured model. Models whose
// provider cannot be created (usually a missing API key) are left out of
// rotation. With no usable model the engine runs on cached and emergency
// questions alone.
func (a *app) buildGenerator() game.Generator {
	providers := make(map[string]llm.Provider)
	var models []string
	for _, m := range a.cfg.Models {
		p, err := llm.NewProvider(string(a.cfg.ProviderFor(m)), m.Name)
		if err != nil {
			log.Warn().Err(err).Str("model", m.Name).Msg("model disabled")
			continue
		}
		providers[m.Name] = p
		models = append(models, m.Name)
	}
	if len(models) == 0 {
		log.Warn().Msg("no generator models available, using cached and emergency questions only")
		return nil
	}

	sched := rotation.New(a.tracker, models, rotation.Config{
		CallTimeout:     a.cfg.Generator.CallTimeout,
		FailureCooldown: a.cfg.Generator.FailureCooldown,
		QuotaCooldown:   a.cfg.Generator.QuotaCooldown,
	}, rotation.WithMetrics(a.metrics))
	return generator.New(sched, providers, a.cfg.Generator.Temperature)
}

// Close persists quota counters and closes the stores.
func (a *app) Close() {
	if a.tracker != nil {
		if err := a.tracker.Stop(context.Background()); err != nil {
			log.Warn().Err(err).Msg("saving quota counters")
		}
	}
	if a.kv != nil {
		a.kv.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		a.logger.Close()
	}
}
