// Package sim ties the room grid, visibility, collision, spawning and enemy
// behavior together into one World that advances in fixed ticks.
package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/config"
	"github.com/cory-johannsen/roomcore/internal/game/ai"
	"github.com/cory-johannsen/roomcore/internal/game/collision"
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/spawn"
	"github.com/cory-johannsen/roomcore/internal/game/visibility"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// VisualFactory creates and removes the visual representation of entities.
type VisualFactory interface {
	Create(kind entity.Kind, typeTag string, x, z float64) entity.Handle
	Remove(h entity.Handle)
}

// NopVisuals is a VisualFactory that creates nothing.
type NopVisuals struct{}

// Create returns a nil handle.
func (NopVisuals) Create(entity.Kind, string, float64, float64) entity.Handle { return nil }

// Remove does nothing.
func (NopVisuals) Remove(entity.Handle) {}

// Deps are the World's external collaborators. Zero fields get defaults:
// a nop logger, a crypto random source, NopVisuals and an empty catalog.
type Deps struct {
	Logger  *zap.Logger
	Source  random.Source
	Visuals VisualFactory
	Catalog *entity.Catalog
}

// TickReport summarizes one call to World.Tick.
type TickReport struct {
	Tick uint64
	// Materialized counts entities created because the player entered a room.
	Materialized int
	Moved        int
	Corrections  int
	Despawned    int
	Removed      int
	// EnemySpawned and PickupSpawned are the runtime spawner results.
	EnemySpawned  *entity.Entity
	PickupSpawned *entity.Entity
}

// World owns one independent simulation.
type World struct {
	cfg     config.Config
	logger  *zap.Logger
	src     random.Source
	visuals VisualFactory
	catalog *entity.Catalog

	grid       *world.Grid
	sight      *visibility.Service
	walls      *collision.Resolver
	planner    *spawn.Planner
	runtime    *spawn.RuntimeSpawner
	registry   *entity.Registry
	controller *ai.Controller
	selector   spawn.EnemyTypeSelector

	shelves []geom.Rect
	score   int
	tick    uint64
	current *world.Room
}

// New builds a World from cfg.
//
// Precondition: cfg must have passed Validate.
// Postcondition: Returns a World with an empty grid, or an error.
func New(cfg config.Config, deps Deps) (*World, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Source == nil {
		deps.Source = random.NewCryptoSource()
	}
	if deps.Visuals == nil {
		deps.Visuals = NopVisuals{}
	}
	if deps.Catalog == nil {
		deps.Catalog, _ = entity.NewCatalog(nil)
	}

	grid, err := world.NewGrid(cfg.Grid.RoomUnit, cfg.Grid.DoorWidth)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	w := &World{
		cfg:     cfg,
		logger:  deps.Logger,
		src:     deps.Source,
		visuals: deps.Visuals,
		catalog: deps.Catalog,
		grid:    grid,
		sight:   visibility.NewService(grid, cfg.Visibility.StepLength, cfg.Visibility.DoorTolerance),
		walls:   collision.NewResolver(grid),
	}
	w.registry = entity.NewRegistry(func(e *entity.Entity) {
		if e.Handle != nil {
			w.visuals.Remove(e.Handle)
		}
	})
	if len(w.catalog.ByKind(entity.KindEnemy)) > 0 {
		w.selector = spawn.NewWeightedSelector(w.catalog, w.src, cfg.Spawn.DefaultEnemy)
	} else {
		w.selector = spawn.Fixed(cfg.Spawn.DefaultEnemy)
	}

	placement := spawn.Constraints{
		Radius:            cfg.Spawn.PlacementRadius,
		MinCenterDistance: cfg.Spawn.MinCenterDistance,
		WallClearance:     cfg.Spawn.WallClearance,
		DoorClearance:     cfg.Spawn.DoorClearance,
		MinSeparation:     cfg.Spawn.MinSeparation,
		MaxAttempts:       cfg.Spawn.MaxAttempts,
	}
	w.planner = spawn.NewPlanner(grid, spawn.PlannerConfig{
		EntranceTheme: cfg.Spawn.EntranceTheme,
		EnemiesMin:    cfg.Spawn.EnemiesMin,
		EnemiesMax:    cfg.Spawn.EnemiesMax,
		ObstaclesMin:  cfg.Spawn.ObstaclesMin,
		ObstaclesMax:  cfg.Spawn.ObstaclesMax,
		ObstacleTypes: cfg.Spawn.ObstacleTypes,
		Placement:     placement,
	}, w.src, w.logger.Named("planner"))

	w.runtime = spawn.NewRuntimeSpawner(grid, w.src, w.logger.Named("runtime_spawn"), cfg.Spawn.EntranceTheme,
		runtimeConfig(cfg.RuntimeSpawn, placement),
		runtimeConfig(cfg.PickupSpawn, placement),
		spawn.FuncSelector(func(r *world.Room, score int) string { return w.selector.SelectEnemyType(r, score) }),
		cfg.PickupSpawn.Types,
	)

	w.controller = ai.NewController(w.sight, w.walls, w.src, ai.Config{
		BaseSpeed:            cfg.Behavior.BaseSpeed,
		StopDistance:         cfg.Behavior.StopDistance,
		LostSightGrace:       cfg.Behavior.LostSightGrace,
		LostSightSpeedFactor: cfg.Behavior.LostSightSpeedFactor,
		WanderSpeed:          cfg.Behavior.WanderSpeed,
		WanderInterval:       cfg.Behavior.WanderInterval,
		PatrolSpeed:          cfg.Behavior.PatrolSpeed,
		DriftInterval:        cfg.Behavior.DriftInterval,
		DriftMaxSpeed:        cfg.Behavior.DriftMaxSpeed,
		WallMargin:           cfg.Collision.WallMargin,
	})
	return w, nil
}

func runtimeConfig(r config.RuntimeSpawnConfig, placement spawn.Constraints) spawn.RuntimeConfig {
	return spawn.RuntimeConfig{
		Interval:    r.Interval,
		Probability: r.Probability,
		MinDistance: r.MinDistance,
		MaxDistance: r.MaxDistance,
		ProbeRooms:  r.ProbeRooms,
		Placement:   placement,
	}
}

// Grid returns the room grid.
func (w *World) Grid() *world.Grid { return w.grid }

// Visibility returns the line-of-sight service.
func (w *World) Visibility() *visibility.Service { return w.sight }

// Collision returns the wall resolver.
func (w *World) Collision() *collision.Resolver { return w.walls }

// Planner returns the spawn planner.
func (w *World) Planner() *spawn.Planner { return w.planner }

// Registry returns the live entity registry.
func (w *World) Registry() *entity.Registry { return w.registry }

// Shelves returns the static shelf rectangles.
func (w *World) Shelves() []geom.Rect { return append([]geom.Rect(nil), w.shelves...) }

// SetSelector replaces the enemy type selector used for planning and runtime spawns.
//
// Precondition: s must be non-nil.
func (w *World) SetSelector(s spawn.EnemyTypeSelector) { w.selector = s }

// Score returns the score used for enemy selection.
func (w *World) Score() int { return w.score }

// SetScore updates the score used for enemy selection.
func (w *World) SetScore(score int) { w.score = score }

// GenerateRooms adds a width x height lattice and themes its (0, 0) cell
// as the entrance.
//
// Postcondition: Returns the lattice rooms ordered by (gz, gx).
func (w *World) GenerateRooms(width, height int, theme string) []*world.Room {
	rooms := w.grid.GenerateGrid(width, height, theme)
	w.grid.SetTheme(world.RoomKey{X: 0, Z: 0}, w.cfg.Spawn.EntranceTheme)
	w.logger.Info("rooms generated",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("theme", theme),
	)
	return rooms
}

// LoadLayout validates layout and adds its rooms.
//
// Postcondition: Returns the number of rooms added, or a validation error.
func (w *World) LoadLayout(layout *world.Layout) (int, error) {
	if err := layout.Validate(); err != nil {
		return 0, err
	}
	n := layout.Apply(w.grid)
	w.logger.Info("layout loaded", zap.String("layout", layout.Name), zap.Int("rooms", n))
	return n, nil
}

// Plan computes placements for every room at the given score.
//
// Postcondition: Returns the total number of placements.
func (w *World) Plan(score int) int {
	w.score = score
	return w.planner.PlanAllRooms(w.grid.Rooms(), w.selector, score)
}

// AddShelf registers a static shelf rectangle.
func (w *World) AddShelf(r geom.Rect) {
	w.shelves = append(w.shelves, r)
}

// EnterRoom marks the room at (x, z) visited and materializes it together
// with its door-connected neighbors.
//
// Postcondition: Returns (nil, false) when (x, z) is outside every room.
func (w *World) EnterRoom(x, z float64) ([]spawn.Materialized, bool) {
	room, ok := w.grid.GetRoomAtWorld(x, z)
	if !ok {
		return nil, false
	}
	w.current = room
	if w.grid.MarkVisited(room) {
		w.logger.Debug("room visited", zap.Stringer("room", room.Key()))
	}
	return w.planner.MaterializeNearbyRooms(room, w), true
}

// CreateEnemy implements spawn.Factory.
func (w *World) CreateEnemy(x, z float64, enemyType string) *entity.Entity {
	return w.create(entity.KindEnemy, enemyType, x, z, w.cfg.Collision.EnemyRadius)
}

// CreateObstacle implements spawn.Factory.
func (w *World) CreateObstacle(x, z float64, obstacleType string) *entity.Entity {
	return w.create(entity.KindObstacle, obstacleType, x, z, w.cfg.Collision.ObstacleRadius)
}

// CreatePickup implements spawn.PickupFactory.
func (w *World) CreatePickup(x, z float64, pickupType string) *entity.Entity {
	return w.create(entity.KindPickup, pickupType, x, z, w.cfg.Collision.PickupRadius)
}

func (w *World) create(kind entity.Kind, typeTag string, x, z, radius float64) *entity.Entity {
	tmpl, ok := w.catalog.Get(typeTag)
	if ok && tmpl.Kind != kind {
		tmpl = nil
	}
	e := entity.New(kind, tmpl, typeTag, geom.V2(x, z), radius)
	e.Handle = w.visuals.Create(kind, typeTag, x, z)
	if err := w.registry.Add(e); err != nil {
		w.logger.Error("registering entity", zap.String("id", e.ID), zap.Error(err))
		return nil
	}
	return e
}

// Damage applies amount to the entity with the given ID and removes it
// when it dies.
//
// Postcondition: Returns true iff the entity died.
func (w *World) Damage(id string, amount int) bool {
	e, ok := w.registry.Get(id)
	if !ok || !e.Damage(amount) {
		return false
	}
	w.registry.Remove(id)
	return true
}

// Tick advances the world by dt seconds. The player's room is entered if it
// changed; each active enemy is then updated, separated from its
// surroundings and despawn-checked in registry order; finally the runtime
// spawners run.
//
// Precondition: dt >= 0.
func (w *World) Tick(dt float64, player, heading geom.Vec2) TickReport {
	w.tick++
	rep := TickReport{Tick: w.tick}

	if room, ok := w.grid.GetRoomAtWorld(player.X, player.Z); ok && room != w.current {
		created, _ := w.EnterRoom(player.X, player.Z)
		for _, m := range created {
			rep.Materialized += m.Len()
		}
	}

	enemies := w.registry.Enemies()
	bodies := make([]collision.Body, len(enemies))
	for i, e := range enemies {
		bodies[i] = e.Body()
	}
	obstacles := w.registry.Obstacles()
	obstacleBodies := make([]collision.Body, len(obstacles))
	for i, o := range obstacles {
		obstacleBodies[i] = o.Body()
	}

	despawn := w.cfg.Behavior.DespawnDistance
	for i, e := range enemies {
		if !e.Active {
			continue
		}
		if w.controller.Update(e, player, dt) {
			rep.Moved++
		}
		rep.Corrections += collision.ResolveBody(i, bodies, obstacleBodies, w.shelves)
		if geom.Dist2D(e.Pos.X, e.Pos.Z, player.X, player.Z) > despawn {
			w.registry.Remove(e.ID)
			rep.Despawned++
		}
	}
	rep.Despawned += len(w.registry.DespawnBeyond(entity.KindPickup, player, despawn))
	rep.Removed = len(w.registry.RemoveInactive())

	req := spawn.Request{
		Player:   player,
		Heading:  heading,
		Occupied: w.registry.Positions(),
		Score:    w.score,
	}
	rep.EnemySpawned = w.runtime.TryEnemySpawn(dt, req, w)

	circles := make([]spawn.Circle, 0, len(obstacles))
	for _, o := range obstacles {
		if o.Active {
			circles = append(circles, spawn.Circle{Center: o.Pos, Radius: o.Radius + w.cfg.Collision.PickupRadius})
		}
	}
	rep.PickupSpawned = w.runtime.TryPickupSpawn(dt, req, circles, w.shelves, w)
	return rep
}

// Reset removes every entity, discards plans and the materialization
// ledger, and restarts the runtime spawn timers. Rooms and shelves stay.
func (w *World) Reset() {
	removed := w.registry.Reset()
	w.planner.Reset()
	w.runtime.Reset()
	w.current = nil
	w.tick = 0
	w.logger.Info("world reset", zap.Int("removed", len(removed)))
}
