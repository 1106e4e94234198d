// Package main provides the headless simulation binary: it builds a room
// grid, plans and materializes spawns, and walks a scripted player through
// the rooms on a fixed tick until the configured duration elapses or the
// process is interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/app"
	"github.com/cory-johannsen/roomcore/internal/config"
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/sim"
	"github.com/cory-johannsen/roomcore/internal/game/spawn"
	"github.com/cory-johannsen/roomcore/internal/game/world"
	"github.com/cory-johannsen/roomcore/internal/observability"
	"github.com/cory-johannsen/roomcore/internal/scripting"
)

const selectorScope = "selector"

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and ROOMCORE_* environment")
	seed := flag.Int64("seed", 0, "random seed; overrides simulation.seed when non-zero")
	duration := flag.Duration("duration", 0, "simulated duration; overrides simulation.duration when non-zero")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *duration != 0 {
		cfg.Simulation.Duration = *duration
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src random.Source
	if cfg.Simulation.Seed != 0 {
		src = random.NewSeededSource(cfg.Simulation.Seed)
	} else {
		src = random.NewCryptoSource()
	}

	catalog := loadCatalog(cfg.Simulation.TemplatesDir, logger)

	w, err := sim.New(cfg, sim.Deps{Logger: logger.Named("world"), Source: src, Catalog: catalog})
	if err != nil {
		logger.Fatal("building world", zap.Error(err))
	}

	if cfg.Simulation.Layout != "" {
		layout, err := world.LoadLayoutFromFile(cfg.Simulation.Layout)
		if err != nil {
			logger.Fatal("loading layout", zap.String("path", cfg.Simulation.Layout), zap.Error(err))
		}
		if _, err := w.LoadLayout(layout); err != nil {
			logger.Fatal("applying layout", zap.String("layout", layout.Name), zap.Error(err))
		}
	} else {
		w.GenerateRooms(cfg.Simulation.GridWidth, cfg.Simulation.GridHeight, cfg.Simulation.Theme)
	}

	if cfg.Simulation.SelectorScript != "" {
		mgr := scripting.NewManager(src, logger.Named("lua"))
		defer mgr.Close()
		if err := mgr.LoadFile(selectorScope, cfg.Simulation.SelectorScript, cfg.Simulation.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading selector script", zap.String("path", cfg.Simulation.SelectorScript), zap.Error(err))
		}
		w.SetSelector(scripting.NewSelector(mgr, selectorScope, fallbackSelector(catalog, src, cfg.Spawn.DefaultEnemy)))
		logger.Info("lua selector loaded", zap.String("path", cfg.Simulation.SelectorScript))
	}

	placements := w.Plan(0)
	entrance := entranceRoom(w.Grid(), cfg.Spawn.EntranceTheme)
	walker := sim.NewWalker(w.Grid(), src, w.Grid().Center(entrance), cfg.Simulation.PlayerSpeed)
	runner := sim.NewRunner(w, walker, cfg.Simulation.Tick, cfg.Simulation.Duration, logger.Named("runner"))

	logger.Info("simulation ready",
		zap.Int("rooms", w.Grid().Len()),
		zap.Int("placements", placements),
		zap.Stringer("entrance", entrance.Key()),
		zap.Int64("seed", cfg.Simulation.Seed),
		zap.Duration("startup", time.Since(start)),
	)

	lc := app.NewLifecycle(logger)
	lc.Add("simulation", runner)
	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	logger.Info("simulation complete",
		zap.Uint64("steps", runner.Steps()),
		zap.Int("visited_rooms", len(w.Grid().VisitedRooms())),
		zap.Int("live_entities", w.Registry().Len()),
	)
}

func loadCatalog(dir string, logger *zap.Logger) *entity.Catalog {
	var templates []*entity.Template
	if dir != "" {
		loaded, err := entity.LoadTemplates(dir)
		if err != nil {
			logger.Fatal("loading templates", zap.String("dir", dir), zap.Error(err))
		}
		templates = loaded
	}
	catalog, err := entity.NewCatalog(templates)
	if err != nil {
		logger.Fatal("building template catalog", zap.Error(err))
	}
	logger.Info("loaded templates",
		zap.Int("count", catalog.Len()),
		zap.Strings("enemies", catalog.IDs(entity.KindEnemy)),
	)
	return catalog
}

func fallbackSelector(catalog *entity.Catalog, src random.Source, defaultEnemy string) spawn.EnemyTypeSelector {
	if len(catalog.ByKind(entity.KindEnemy)) > 0 {
		return spawn.NewWeightedSelector(catalog, src, defaultEnemy)
	}
	return spawn.Fixed(defaultEnemy)
}

// entranceRoom returns the first room with the entrance theme, or the
// first room in grid order.
func entranceRoom(g *world.Grid, theme string) *world.Room {
	rooms := g.Rooms()
	for _, r := range rooms {
		if r.Theme == theme {
			return r
		}
	}
	if len(rooms) == 0 {
		log.Fatal("grid has no rooms")
	}
	return rooms[0]
}
