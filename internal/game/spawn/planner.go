package spawn

import (
	"sync"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// PlannerConfig holds the per-room placement targets.
type PlannerConfig struct {
	// EntranceTheme marks rooms that never receive placements.
	EntranceTheme string
	EnemiesMin    int
	EnemiesMax    int
	ObstaclesMin  int
	ObstaclesMax  int
	// ObstacleTypes are drawn uniformly for each obstacle placement.
	ObstacleTypes []string
	Placement     Constraints
}

// Planner computes a RoomPlan for every room up front and turns each plan
// into live entities the first time its room is materialized.
//
// Invariant: a room key enters the materialization ledger at most once
// between Resets, and factory callbacks for a key run only on that entry.
type Planner struct {
	grid   *world.Grid
	cfg    PlannerConfig
	src    random.Source
	logger *zap.Logger

	mu           sync.Mutex
	plans        map[world.RoomKey]RoomPlan
	materialized mapset.Set[world.RoomKey]
}

// NewPlanner creates a Planner over grid.
//
// Precondition: grid and src must be non-nil.
// Postcondition: Returns a Planner with no plans and an empty ledger.
func NewPlanner(grid *world.Grid, cfg PlannerConfig, src random.Source, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		grid:         grid,
		cfg:          cfg,
		src:          src,
		logger:       logger,
		plans:        make(map[world.RoomKey]RoomPlan),
		materialized: mapset.New[world.RoomKey](),
	}
}

// PlanAllRooms samples enemy and obstacle placements for every room in
// rooms and stores the result per room key, replacing earlier plans.
// Entrance-themed rooms get an empty plan. Placement counts are targets:
// a room whose sampling budget runs out simply receives fewer entries.
//
// Precondition: selector must be non-nil.
// Postcondition: Plan(r.Key()) succeeds for every r in rooms. Returns the
// total number of placements.
func (p *Planner) PlanAllRooms(rooms []*world.Room, selector EnemyTypeSelector, currentScore int) int {
	total := 0
	planned := make(map[world.RoomKey]RoomPlan, len(rooms))
	for _, room := range rooms {
		plan := p.planRoom(room, selector, currentScore)
		planned[plan.Key] = plan
		total += len(plan.Enemies) + len(plan.Obstacles)
	}

	p.mu.Lock()
	for k, plan := range planned {
		p.plans[k] = plan
	}
	p.mu.Unlock()

	p.logger.Info("rooms planned",
		zap.Int("rooms", len(rooms)),
		zap.Int("placements", total),
		zap.Int("score", currentScore),
	)
	return total
}

func (p *Planner) planRoom(room *world.Room, selector EnemyTypeSelector, score int) RoomPlan {
	plan := RoomPlan{Key: room.Key()}
	if room.Theme == p.cfg.EntranceTheme {
		return plan
	}

	var occupied []geom.Vec2
	wantEnemies := random.IntBetween(p.src, p.cfg.EnemiesMin, p.cfg.EnemiesMax)
	for i := 0; i < wantEnemies; i++ {
		pos, ok := FindSpawnPosition(p.grid, p.src, room, occupied, p.cfg.Placement)
		if !ok {
			break
		}
		enemyType := selector.SelectEnemyType(room, score)
		if enemyType == "" {
			continue
		}
		occupied = append(occupied, pos)
		plan.Enemies = append(plan.Enemies, Placement{Pos: pos, Type: enemyType})
	}

	if len(p.cfg.ObstacleTypes) > 0 {
		wantObstacles := random.IntBetween(p.src, p.cfg.ObstaclesMin, p.cfg.ObstaclesMax)
		for i := 0; i < wantObstacles; i++ {
			pos, ok := FindSpawnPosition(p.grid, p.src, room, occupied, p.cfg.Placement)
			if !ok {
				break
			}
			occupied = append(occupied, pos)
			obstacleType := p.cfg.ObstacleTypes[p.src.Intn(len(p.cfg.ObstacleTypes))]
			plan.Obstacles = append(plan.Obstacles, Placement{Pos: pos, Type: obstacleType})
		}
	}

	p.logger.Debug("room planned",
		zap.Stringer("room", plan.Key),
		zap.Int("enemies", len(plan.Enemies)),
		zap.Int("enemies_wanted", wantEnemies),
		zap.Int("obstacles", len(plan.Obstacles)),
	)
	return plan
}

// Plans returns a snapshot of every stored plan.
//
// Postcondition: Returns a non-nil map; mutating it does not affect the Planner.
func (p *Planner) Plans() map[world.RoomKey]RoomPlan {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[world.RoomKey]RoomPlan, len(p.plans))
	for k, v := range p.plans {
		out[k] = v
	}
	return out
}

// Plan returns the stored plan for key.
//
// Postcondition: Returns (plan, true) if found, or (zero, false) otherwise.
func (p *Planner) Plan(key world.RoomKey) (RoomPlan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	plan, ok := p.plans[key]
	return plan, ok
}

// IsMaterialized reports whether key has already been materialized.
func (p *Planner) IsMaterialized(key world.RoomKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.materialized.Has(key)
}

// MaterializeRoom creates the planned entities of key through factory.
// Only the first call for a key invokes the factory; later calls are no-ops.
// A key without a plan is still marked.
//
// Precondition: factory must be non-nil.
// Postcondition: Returns (created, true) on the first call for key, and
// (Materialized{}, false) on every later call.
func (p *Planner) MaterializeRoom(key world.RoomKey, factory Factory) (Materialized, bool) {
	p.mu.Lock()
	if p.materialized.Has(key) {
		p.mu.Unlock()
		return Materialized{}, false
	}
	p.materialized.Put(key)
	plan := p.plans[key]
	p.mu.Unlock()

	out := Materialized{Key: key}
	for _, pl := range plan.Enemies {
		if e := factory.CreateEnemy(pl.Pos.X, pl.Pos.Z, pl.Type); e != nil {
			out.Enemies = append(out.Enemies, e)
		}
	}
	for _, pl := range plan.Obstacles {
		if e := factory.CreateObstacle(pl.Pos.X, pl.Pos.Z, pl.Type); e != nil {
			out.Obstacles = append(out.Obstacles, e)
		}
	}
	p.logger.Debug("room materialized",
		zap.Stringer("room", key),
		zap.Int("enemies", len(out.Enemies)),
		zap.Int("obstacles", len(out.Obstacles)),
	)
	return out, true
}

// MaterializeNearbyRooms materializes center and every neighbor reachable
// through a door pair, skipping rooms already materialized.
//
// Precondition: center and factory must be non-nil.
// Postcondition: Returns one entry per newly materialized room, center first.
func (p *Planner) MaterializeNearbyRooms(center *world.Room, factory Factory) []Materialized {
	rooms := append([]*world.Room{center}, p.grid.ConnectedNeighbors(center)...)
	out := make([]Materialized, 0, len(rooms))
	for _, r := range rooms {
		if m, ok := p.MaterializeRoom(r.Key(), factory); ok {
			out = append(out, m)
		}
	}
	return out
}

// Reset discards every plan and clears the ledger.
func (p *Planner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plans = make(map[world.RoomKey]RoomPlan)
	p.materialized = mapset.New[world.RoomKey]()
}
