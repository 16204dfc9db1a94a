// Package main provides the companion binary: an interactive console for
// dice rolling, character creation and solo adventure tracking.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/config"
	"github.com/cory-johannsen/companion/internal/console"
	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/clock"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
	"github.com/cory-johannsen/companion/internal/game/session"
	"github.com/cory-johannsen/companion/internal/observability"
	"github.com/cory-johannsen/companion/internal/scripting"
	"github.com/cory-johannsen/companion/internal/server"
	"github.com/cory-johannsen/companion/internal/storage"
	"github.com/cory-johannsen/companion/internal/storage/memory"
	"github.com/cory-johannsen/companion/internal/storage/postgres"
	"github.com/cory-johannsen/companion/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/companion.yaml", "path to configuration file; defaults apply when it does not exist")
	seed := flag.Int64("seed", 0, "seed for reproducible dice (0 = crypto/rand)")
	exportDir := flag.String("export-dir", ".", "directory character exports are written to")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	ctx := context.Background()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()
	repos := storage.NewRepositories(store, logger)

	rules := ruleset.Default()
	if cfg.Session.RulesetPath != "" {
		if rules, err = ruleset.LoadFile(cfg.Session.RulesetPath); err != nil {
			logger.Fatal("loading ruleset", zap.String("path", cfg.Session.RulesetPath), zap.Error(err))
		}
	}
	logger.Info("ruleset loaded",
		zap.Int("races", len(rules.Races)),
		zap.Int("classes", len(rules.Classes)),
		zap.Int("skills", len(rules.Skills)),
	)

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Info("using seeded dice", zap.Int64("seed", *seed))
	}

	engine := dice.NewEngine(src, logger,
		dice.WithLimits(dice.Limits{
			MaxQuantity: cfg.Dice.MaxQuantity,
			MaxSides:    cfg.Dice.MaxSides,
			MaxModifier: cfg.Dice.MaxModifier,
		}),
		dice.WithHistoryCapacity(cfg.Dice.HistoryCapacity),
		dice.WithStore(repos.History),
	)
	engine.Load(ctx)

	creator := character.NewCreator(rules, src, repos.Drafts, repos.Roster, logger)
	if creator.Load(ctx) {
		logger.Info("resumed character draft", zap.String("name", creator.Character().Name))
	}

	sessOpts := []session.Option{session.WithEncounterChance(cfg.Session.EncounterChance)}
	if dir := cfg.Session.EncounterScriptDir; dir != "" {
		mgr := scripting.NewManager(src, logger)
		defer mgr.Close()
		hook, err := scripting.NewEncounterHook(mgr, dir, cfg.Session.ScriptInstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading encounter scripts", zap.String("dir", dir), zap.Error(err))
		}
		sessOpts = append(sessOpts, session.WithEncounterChooser(hook))
	}
	sess := session.New(rules, engine, src, repos.Snapshots, logger, sessOpts...)
	sess.LoadState(ctx)
	if selected, err := repos.Snapshots.LoadSelected(ctx); err == nil {
		sess.LoadCharacter(ctx, selected)
		logger.Info("resumed adventure", zap.String("character", selected.Name))
	} else if !errors.Is(err, character.ErrNotFound) {
		logger.Warn("selected character unavailable", zap.Error(err))
	}

	gameClock := clock.NewTicker("game-clock", cfg.Session.ClockTick, func(context.Context) {
		if sess.State() != session.StateIdle {
			sess.Tick()
		}
	}, logger)
	stateSave := clock.NewTicker("state-autosave", cfg.Session.AutosaveInterval, func(ctx context.Context) {
		if sess.Character() == nil {
			return
		}
		if err := sess.SaveState(ctx); err != nil {
			logger.Warn("autosaving session state", zap.Error(err))
		}
	}, logger)
	draftSave := clock.NewTicker("draft-autosave", cfg.Session.DraftAutosaveInterval, func(ctx context.Context) {
		if err := creator.AutosaveDraft(ctx); err != nil {
			logger.Warn("autosaving character draft", zap.Error(err))
		}
	}, logger)
	// The console sets the quick-save interval from the player's settings.
	quickSave := clock.NewTicker("quick-autosave", 0, func(ctx context.Context) {
		if sess.Character() == nil {
			return
		}
		if err := sess.QuickSave(ctx); err != nil {
			logger.Warn("periodic quick save", zap.Error(err))
		}
	}, logger)

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())
	con, err := console.New(os.Stdin, os.Stdout, console.Deps{
		Rules:    rules,
		Engine:   engine,
		Creator:  creator,
		Session:  sess,
		Roster:   repos.Roster,
		Settings: repos.Settings,
	}, logger,
		console.WithColor(color),
		console.WithExportDir(*exportDir),
		console.WithAutosave(quickSave),
	)
	if err != nil {
		logger.Fatal("creating console", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	for _, t := range []*clock.Ticker{gameClock, stateSave, draftSave, quickSave} {
		lifecycle.Add(t.Name(), server.NewBackground(t.Start))
	}
	lifecycle.AddEssential("console", con)

	logger.Info("companion ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("startup", time.Since(start)),
	)
	runErr := lifecycle.Run(ctx)

	// Final writes so the next start resumes where this one ended.
	if sess.Character() != nil {
		if err := sess.SaveState(ctx); err != nil {
			logger.Warn("saving session state on exit", zap.Error(err))
		}
	}
	if err := creator.AutosaveDraft(ctx); err != nil {
		logger.Warn("saving character draft on exit", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("companion stopped with error", zap.Error(runErr))
		closeStore()
		_ = logger.Sync()
		os.Exit(1)
	}
}

// loadConfig reads path when it exists and falls back to defaults otherwise.
func loadConfig(path string) (config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default()
		}
		return config.Config{}, fmt.Errorf("checking config file: %w", err)
	}
	return config.Load(path)
}

// openStore builds the document store selected by cfg.Storage.Driver and
// returns a function that releases it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; nothing will persist")
		return memory.New(), func() {}, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.Storage.SQLitePath))
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	case config.DriverPostgres:
		dbStart := time.Now()
		s, res, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database ready",
			zap.String("host", cfg.Database.Host),
			zap.Uint("schema_version", res.Version),
			zap.Bool("migrated", !res.NoChange),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
