// Package main runs the headless idle ARPG simulator: it plays encounters back
// to back, optionally saving to Redis and archiving history to PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/config"
	"github.com/cory-johannsen/arpg/internal/content"
	"github.com/cory-johannsen/arpg/internal/game/combat"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/loot"
	"github.com/cory-johannsen/arpg/internal/observability"
	"github.com/cory-johannsen/arpg/internal/server"
	"github.com/cory-johannsen/arpg/internal/sim"
	"github.com/cory-johannsen/arpg/internal/storage/postgres"
	"github.com/cory-johannsen/arpg/internal/storage/redis"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and ARPG_ env)")
	encounters := flag.Int("encounters", -1, "encounters to play; overrides simulator.encounters when >= 0")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *encounters >= 0 {
		cfg.Simulator.Encounters = *encounters
	}

	logger, err := observability.NewLogger("arpgsim", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Simulator.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulator.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	contentStart := time.Now()
	c, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	gen, err := loot.NewGenerator(c.Equipment, c.Monsters, roller, logger)
	if err != nil {
		logger.Fatal("creating loot generator", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("bases", len(c.Equipment.Bases())),
		zap.Int("monsters", len(c.Monsters)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	var saver sim.Saver
	state := sim.NewGame(cfg.Simulator.PlayerName, c.Equipment, roller)
	if cfg.Simulator.SaveSlot != "" {
		store, err := redis.Dial(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		defer store.Close()
		loaded, err := store.Load(ctx, cfg.Simulator.SaveSlot)
		switch {
		case err == nil:
			state = loaded
			logger.Info("save loaded",
				zap.String("slot", cfg.Simulator.SaveSlot),
				zap.Int("level", loaded.Player.Level),
				zap.Int("encounters", len(loaded.PastEncounters)),
			)
		case errors.Is(err, redis.ErrSaveNotFound):
			logger.Info("starting new game", zap.String("slot", cfg.Simulator.SaveSlot))
		default:
			logger.Fatal("loading save", zap.Error(err))
		}
		saver = store
	}

	var archiver sim.Archiver
	if cfg.Simulator.PersistHistory {
		dbStart := time.Now()
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		archiver = postgres.NewHistoryRepository(pool.DB())
	}

	opts := combat.Options{
		TickUnit:             cfg.Combat.TickUnit,
		CountdownInterval:    cfg.Combat.CountdownInterval,
		AttackAnimation:      cfg.Combat.AttackAnimation,
		SearchDepth:          cfg.Combat.SearchDepth,
		DamageLogSize:        cfg.Combat.DamageLogSize,
		MessageDurationTicks: cfg.Combat.MessageDurationTicks,
	}
	var (
		sched   combat.Scheduler
		virtual *combat.VirtualScheduler
	)
	if cfg.Simulator.Realtime {
		sched = combat.NewWallScheduler()
	} else {
		virtual = combat.NewVirtualScheduler()
		sched = virtual
	}
	eng, err := combat.NewEngine(state, gen, sched, opts, logger)
	if err != nil {
		logger.Fatal("creating combat engine", zap.Error(err))
	}
	defer eng.Close()

	simulator := sim.New(eng, virtual, archiver, saver, sim.Options{
		Encounters:   cfg.Simulator.Encounters,
		SaveSlot:     cfg.Simulator.SaveSlot,
		PollInterval: cfg.Combat.TickUnit / 2,
	}, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulator", simulator)

	logger.Info("simulator starting",
		zap.String("player", state.Player.Name),
		zap.Int("encounters", cfg.Simulator.Encounters),
		zap.Bool("realtime", cfg.Simulator.Realtime),
		zap.Uint64("seed", cfg.Simulator.Seed),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("simulator exited with error", zap.Error(err))
	}
	logger.Info("simulator stopped", zap.Duration("uptime", time.Since(start)))
}
