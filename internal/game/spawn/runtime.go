package spawn

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// RuntimeConfig gates one kind of runtime spawn.
type RuntimeConfig struct {
	// Interval is the number of seconds between attempts.
	Interval float64
	// Probability is the chance that an attempt proceeds.
	Probability float64
	// MinDistance and MaxDistance bound a candidate room's center distance from the player.
	MinDistance float64
	MaxDistance float64
	// ProbeRooms is how many rooms ahead of the player are probed when no
	// visited room qualifies.
	ProbeRooms int
	Placement  Constraints
}

// Request describes the player's situation for one spawn attempt.
type Request struct {
	Player geom.Vec2
	// Heading is the player's travel direction; it need not be normalized.
	Heading  geom.Vec2
	Occupied []geom.Vec2
	Score    int
}

// RuntimeSpawner periodically adds enemies and pickups to rooms the
// player has already passed through.
//
// Invariant: each kind attempts at most once per configured interval.
type RuntimeSpawner struct {
	grid          *world.Grid
	src           random.Source
	logger        *zap.Logger
	entranceTheme string

	enemy       RuntimeConfig
	pickup      RuntimeConfig
	selector    EnemyTypeSelector
	pickupTypes []string

	enemyTimer  float64
	pickupTimer float64
}

// NewRuntimeSpawner creates a RuntimeSpawner. Rooms themed entranceTheme
// never receive runtime enemies.
//
// Precondition: grid, src and selector must be non-nil.
func NewRuntimeSpawner(grid *world.Grid, src random.Source, logger *zap.Logger, entranceTheme string, enemy, pickup RuntimeConfig, selector EnemyTypeSelector, pickupTypes []string) *RuntimeSpawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuntimeSpawner{
		grid:          grid,
		src:           src,
		logger:        logger,
		entranceTheme: entranceTheme,
		enemy:         enemy,
		pickup:        pickup,
		selector:      selector,
		pickupTypes:   pickupTypes,
	}
}

// TryEnemySpawn advances the enemy timer by dt and, when it fires and the
// probability check passes, creates one enemy in a qualifying room.
//
// Precondition: factory must be non-nil; dt >= 0.
// Postcondition: Returns the created enemy, or nil when nothing spawned.
func (s *RuntimeSpawner) TryEnemySpawn(dt float64, req Request, factory Factory) *entity.Entity {
	if !s.fire(&s.enemyTimer, dt, s.enemy) {
		return nil
	}
	room, pos, ok := s.locate(req, s.enemy, s.enemy.Placement, true)
	if !ok {
		return nil
	}
	enemyType := s.selector.SelectEnemyType(room, req.Score)
	if enemyType == "" {
		return nil
	}
	e := factory.CreateEnemy(pos.X, pos.Z, enemyType)
	if e != nil {
		s.logger.Debug("runtime enemy spawned",
			zap.Stringer("room", room.Key()),
			zap.String("type", enemyType),
		)
	}
	return e
}

// TryPickupSpawn is TryEnemySpawn for pickups. Positions additionally
// avoid the obstacle circles and shelf rectangles.
//
// Precondition: factory must be non-nil; dt >= 0.
// Postcondition: Returns the created pickup, or nil when nothing spawned.
func (s *RuntimeSpawner) TryPickupSpawn(dt float64, req Request, obstacles []Circle, shelves []geom.Rect, factory PickupFactory) *entity.Entity {
	if len(s.pickupTypes) == 0 {
		return nil
	}
	if !s.fire(&s.pickupTimer, dt, s.pickup) {
		return nil
	}
	c := s.pickup.Placement
	c.BlockCircles = append(append([]Circle(nil), c.BlockCircles...), obstacles...)
	c.BlockRects = append(append([]geom.Rect(nil), c.BlockRects...), shelves...)
	room, pos, ok := s.locate(req, s.pickup, c, false)
	if !ok {
		return nil
	}
	pickupType := s.pickupTypes[s.src.Intn(len(s.pickupTypes))]
	e := factory.CreatePickup(pos.X, pos.Z, pickupType)
	if e != nil {
		s.logger.Debug("runtime pickup spawned",
			zap.Stringer("room", room.Key()),
			zap.String("type", pickupType),
		)
	}
	return e
}

// fire advances timer and reports whether an attempt should proceed.
func (s *RuntimeSpawner) fire(timer *float64, dt float64, cfg RuntimeConfig) bool {
	*timer += dt
	if *timer < cfg.Interval {
		return false
	}
	*timer = 0
	return random.Chance(s.src, cfg.Probability)
}

// locate picks a candidate room and a free position in it.
func (s *RuntimeSpawner) locate(req Request, cfg RuntimeConfig, c Constraints, skipEntrance bool) (*world.Room, geom.Vec2, bool) {
	room, ok := s.candidate(req, cfg, skipEntrance)
	if !ok {
		return nil, geom.Vec2{}, false
	}
	pos, ok := FindSpawnPosition(s.grid, s.src, room, req.Occupied, c)
	if !ok {
		return nil, geom.Vec2{}, false
	}
	return room, pos, true
}

// candidate chooses uniformly among visited rooms other than the player's
// whose center is within the distance band, falling back to the first
// existing room found by stepping ahead along the heading.
func (s *RuntimeSpawner) candidate(req Request, cfg RuntimeConfig, skipEntrance bool) (*world.Room, bool) {
	current, _ := s.grid.GetRoomAtWorld(req.Player.X, req.Player.Z)
	eligible := func(r *world.Room) bool {
		if r == current {
			return false
		}
		return !skipEntrance || r.Theme != s.entranceTheme
	}

	var pool []*world.Room
	for _, r := range s.grid.VisitedRooms() {
		if !eligible(r) {
			continue
		}
		c := s.grid.Center(r)
		d := geom.Dist2D(c.X, c.Z, req.Player.X, req.Player.Z)
		if d >= cfg.MinDistance && d <= cfg.MaxDistance {
			pool = append(pool, r)
		}
	}
	if len(pool) > 0 {
		return pool[s.src.Intn(len(pool))], true
	}

	dir, ok := req.Heading.Normalize()
	if !ok {
		return nil, false
	}
	for i := 1; i <= cfg.ProbeRooms; i++ {
		p := req.Player.Add(dir.Scale(float64(i) * s.grid.Unit()))
		if r, ok := s.grid.GetRoomAtWorld(p.X, p.Z); ok && eligible(r) {
			return r, true
		}
	}
	return nil, false
}

// Reset zeroes both timers.
func (s *RuntimeSpawner) Reset() {
	s.enemyTimer = 0
	s.pickupTimer = 0
}
