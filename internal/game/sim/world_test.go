package sim_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomcore/internal/config"
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/sim"
	"github.com/cory-johannsen/roomcore/internal/game/spawn"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

type recordingVisuals struct {
	mu      sync.Mutex
	next    int
	created map[entity.Kind]int
	removed []entity.Handle
}

func newRecordingVisuals() *recordingVisuals {
	return &recordingVisuals{created: make(map[entity.Kind]int)}
}

func (v *recordingVisuals) Create(kind entity.Kind, _ string, _, _ float64) entity.Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	v.created[kind]++
	return v.next
}

func (v *recordingVisuals) Remove(h entity.Handle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = append(v.removed, h)
}

func (v *recordingVisuals) total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, c := range v.created {
		n += c
	}
	return n
}

func newWorld(t require.TestingT, seed int64, mutate func(*config.Config)) (*sim.World, *recordingVisuals) {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	visuals := newRecordingVisuals()
	w, err := sim.New(cfg, sim.Deps{Source: random.NewSeededSource(seed), Visuals: visuals})
	require.NoError(t, err)
	return w, visuals
}

func TestNew_InvalidGrid(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.RoomUnit = 0
	_, err := sim.New(cfg, sim.Deps{})
	assert.Error(t, err)
}

func TestGenerateRooms_ThemesEntrance(t *testing.T) {
	w, _ := newWorld(t, 1, nil)
	rooms := w.GenerateRooms(3, 2, "storage")
	assert.Len(t, rooms, 6)
	r, ok := w.Grid().GetRoom(0, 0)
	require.True(t, ok)
	assert.Equal(t, "entrance", r.Theme)
	r, _ = w.Grid().GetRoom(1, 1)
	assert.Equal(t, "storage", r.Theme)
}

func TestLoadLayout(t *testing.T) {
	w, _ := newWorld(t, 1, nil)
	layout, err := world.LoadLayoutFromBytes([]byte(`
layout:
  name: hall
  rooms:
    - x: 0
      z: 0
      theme: entrance
      doors: [east]
    - x: 1
      z: 0
      theme: storage
      doors: [west]
`))
	require.NoError(t, err)
	n, err := w.LoadLayout(layout)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, w.Visibility().HasLineOfSight(20, 20, 60, 20))

	_, err = w.LoadLayout(&world.Layout{Name: "empty"})
	assert.Error(t, err)
}

func TestEnterRoom_MaterializesNeighborsOnce(t *testing.T) {
	w, visuals := newWorld(t, 3, nil)
	w.GenerateRooms(3, 3, "storage")
	w.Plan(0)

	created, ok := w.EnterRoom(20, 20)
	require.True(t, ok)
	require.Len(t, created, 3)
	total := 0
	for _, m := range created {
		total += m.Len()
	}
	assert.Equal(t, total, w.Registry().Len())
	assert.Equal(t, total, visuals.total())

	again, ok := w.EnterRoom(20, 20)
	require.True(t, ok)
	assert.Empty(t, again)
	assert.Equal(t, total, w.Registry().Len())

	_, ok = w.EnterRoom(-100, -100)
	assert.False(t, ok)
}

func TestPlan_EntranceStaysEmpty(t *testing.T) {
	w, _ := newWorld(t, 5, func(c *config.Config) { c.Spawn.EnemiesMin = 3 })
	w.GenerateRooms(2, 2, "storage")
	w.Plan(10)
	assert.Equal(t, 10, w.Score())
	plan, ok := w.Planner().Plan(world.RoomKey{})
	require.True(t, ok)
	assert.True(t, plan.Empty())
}

func TestTick_DespawnsDistantEnemies(t *testing.T) {
	w, visuals := newWorld(t, 7, func(c *config.Config) {
		c.Spawn.EnemiesMin = 2
		c.Behavior.DespawnDistance = 1
	})
	w.GenerateRooms(2, 2, "storage")
	w.Plan(0)
	w.EnterRoom(20, 20)
	enemies := len(w.Registry().Enemies())
	require.Greater(t, enemies, 0)

	rep := w.Tick(0.05, geom.V2(20, 20), geom.Vec2{})
	assert.Equal(t, uint64(1), rep.Tick)
	assert.Equal(t, enemies, rep.Despawned)
	assert.Empty(t, w.Registry().Enemies())
	assert.Len(t, visuals.removed, enemies)
}

func TestTick_EntersRoomWhenPlayerMoves(t *testing.T) {
	w, _ := newWorld(t, 9, nil)
	w.GenerateRooms(3, 1, "storage")
	w.Plan(0)

	w.Tick(0.05, geom.V2(20, 20), geom.Vec2{})
	assert.True(t, w.Planner().IsMaterialized(world.RoomKey{X: 1, Z: 0}))
	assert.False(t, w.Planner().IsMaterialized(world.RoomKey{X: 2, Z: 0}))

	rep := w.Tick(0.05, geom.V2(60, 20), geom.V2(1, 0))
	assert.True(t, w.Planner().IsMaterialized(world.RoomKey{X: 2, Z: 0}))
	plan, _ := w.Planner().Plan(world.RoomKey{X: 2, Z: 0})
	assert.Equal(t, len(plan.Enemies)+len(plan.Obstacles), rep.Materialized)

	r, _ := w.Grid().GetRoom(1, 0)
	assert.True(t, r.Visited)
}

func TestTick_RuntimeEnemySpawnAhead(t *testing.T) {
	w, visuals := newWorld(t, 11, func(c *config.Config) {
		c.Spawn.EnemiesMin, c.Spawn.EnemiesMax = 0, 0
		c.Spawn.ObstaclesMin, c.Spawn.ObstaclesMax = 0, 0
		c.RuntimeSpawn.Interval = 0.1
		c.RuntimeSpawn.Probability = 1
		c.RuntimeSpawn.MinDistance = 0
		c.RuntimeSpawn.MaxDistance = 1000
	})
	w.GenerateRooms(3, 1, "storage")
	w.Plan(0)
	w.Tick(0.05, geom.V2(20, 20), geom.Vec2{})

	rep := w.Tick(0.1, geom.V2(60, 20), geom.V2(1, 0))
	require.NotNil(t, rep.EnemySpawned)
	assert.Equal(t, "grunt", rep.EnemySpawned.TypeTag)
	gx, _ := w.Grid().WorldToGrid(rep.EnemySpawned.Pos.X, rep.EnemySpawned.Pos.Z)
	assert.Equal(t, 2, gx)
	assert.Equal(t, 1, visuals.created[entity.KindEnemy])
}

func TestTick_UsesCatalogTemplates(t *testing.T) {
	catalog, err := entity.NewCatalog([]*entity.Template{
		{ID: "brute", Name: "Brute", Kind: entity.KindEnemy, Behavior: entity.BehaviorStationary, Radius: 1.1, MaxHealth: 9},
	})
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Spawn.EnemiesMin = 1
	w, err := sim.New(cfg, sim.Deps{Source: random.NewSeededSource(2), Catalog: catalog})
	require.NoError(t, err)
	w.GenerateRooms(2, 1, "storage")
	w.Plan(0)
	w.EnterRoom(20, 20)

	enemies := w.Registry().Enemies()
	require.NotEmpty(t, enemies)
	for _, e := range enemies {
		assert.Equal(t, "brute", e.TypeTag)
		assert.Equal(t, 9, e.Health)
		assert.Equal(t, 1.1, e.Radius)
	}
	before := enemies[0].Pos
	w.Tick(0.05, geom.V2(20, 20), geom.Vec2{})
	if len(enemies) == 1 {
		assert.Equal(t, before, enemies[0].Pos, "stationary enemies hold position")
	}
}

func TestDamage_RemovesDeadEntity(t *testing.T) {
	w, visuals := newWorld(t, 13, func(c *config.Config) { c.Spawn.EnemiesMin = 1 })
	w.GenerateRooms(2, 1, "storage")
	w.Plan(0)
	w.EnterRoom(20, 20)
	enemies := w.Registry().Enemies()
	require.NotEmpty(t, enemies)

	e := enemies[0]
	assert.True(t, w.Damage(e.ID, 5))
	_, ok := w.Registry().Get(e.ID)
	assert.False(t, ok)
	assert.Contains(t, visuals.removed, e.Handle)
	assert.False(t, w.Damage(e.ID, 5))
}

func TestSetSelector(t *testing.T) {
	w, _ := newWorld(t, 17, func(c *config.Config) { c.Spawn.EnemiesMin = 1 })
	w.SetSelector(spawn.Fixed("ghoul"))
	w.GenerateRooms(2, 1, "storage")
	w.Plan(0)
	plan, _ := w.Planner().Plan(world.RoomKey{X: 1, Z: 0})
	for _, p := range plan.Enemies {
		assert.Equal(t, "ghoul", p.Type)
	}
}

func TestReset(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := config.Default()
	cfg.Spawn.EnemiesMin = 1
	w, err := sim.New(cfg, sim.Deps{Source: random.NewSeededSource(19), Logger: zap.New(core)})
	require.NoError(t, err)
	w.GenerateRooms(2, 2, "storage")
	w.AddShelf(geom.Rect{MinX: 5, MinZ: 5, MaxX: 10, MaxZ: 6})
	w.Plan(0)
	w.EnterRoom(20, 20)
	require.Greater(t, w.Registry().Len(), 0)

	w.Reset()
	assert.Equal(t, 0, w.Registry().Len())
	assert.Empty(t, w.Planner().Plans())
	assert.Equal(t, 4, w.Grid().Len())
	assert.Len(t, w.Shelves(), 1)
	assert.Equal(t, 1, logs.FilterMessage("world reset").Len())
}

func TestProperty_EveryVisualIsReleased(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		w, visuals := newWorld(rt, seed, func(c *config.Config) {
			c.Spawn.EnemiesMin = 2
			c.Behavior.DespawnDistance = 50
			c.RuntimeSpawn.Interval = 0.5
		})
		w.GenerateRooms(3, 3, "storage")
		w.Plan(0)
		walker := sim.NewWalker(w.Grid(), random.NewSeededSource(seed), geom.V2(20, 20), 6)
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			pos, heading := walker.Advance(0.1)
			w.Tick(0.1, pos, heading)
			for _, e := range w.Registry().All() {
				require.True(rt, e.Active)
			}
			require.Equal(rt, visuals.total(), w.Registry().Len()+len(visuals.removed))
		}
	})
}
