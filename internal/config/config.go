// Package config provides Viper-based configuration loading for the
// room-grid simulation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GridConfig holds the shared coordinate convention.
type GridConfig struct {
	// RoomUnit is the world-space side length of one room.
	RoomUnit float64 `mapstructure:"room_unit"`
	// DoorWidth is the world-space width of every door aperture.
	DoorWidth float64 `mapstructure:"door_width"`
}

// VisibilityConfig tunes the line-of-sight ray march.
type VisibilityConfig struct {
	// StepLength is the sample spacing; 0 derives it from the grid.
	StepLength float64 `mapstructure:"step_length"`
	// DoorTolerance widens each aperture when testing crossings.
	DoorTolerance float64 `mapstructure:"door_tolerance"`
}

// CollisionConfig holds wall clearance and default body radii.
type CollisionConfig struct {
	WallMargin     float64 `mapstructure:"wall_margin"`
	EnemyRadius    float64 `mapstructure:"enemy_radius"`
	ObstacleRadius float64 `mapstructure:"obstacle_radius"`
	PickupRadius   float64 `mapstructure:"pickup_radius"`
}

// SpawnConfig holds per-room planning targets and placement constraints.
type SpawnConfig struct {
	EntranceTheme     string   `mapstructure:"entrance_theme"`
	EnemiesMin        int      `mapstructure:"enemies_min"`
	EnemiesMax        int      `mapstructure:"enemies_max"`
	ObstaclesMin      int      `mapstructure:"obstacles_min"`
	ObstaclesMax      int      `mapstructure:"obstacles_max"`
	PlacementRadius   float64  `mapstructure:"placement_radius"`
	MinCenterDistance float64  `mapstructure:"min_center_distance"`
	WallClearance     float64  `mapstructure:"wall_clearance"`
	DoorClearance     float64  `mapstructure:"door_clearance"`
	MinSeparation     float64  `mapstructure:"min_separation"`
	MaxAttempts       int      `mapstructure:"max_attempts"`
	ObstacleTypes     []string `mapstructure:"obstacle_types"`
	// DefaultEnemy is chosen when no template or script selects a type.
	DefaultEnemy string `mapstructure:"default_enemy"`
}

// RuntimeSpawnConfig gates one kind of runtime spawn. Interval is in seconds.
type RuntimeSpawnConfig struct {
	Interval    float64  `mapstructure:"interval"`
	Probability float64  `mapstructure:"probability"`
	MinDistance float64  `mapstructure:"min_distance"`
	MaxDistance float64  `mapstructure:"max_distance"`
	ProbeRooms  int      `mapstructure:"probe_rooms"`
	Types       []string `mapstructure:"types"`
}

// BehaviorConfig holds enemy movement tuning. Times are in seconds.
type BehaviorConfig struct {
	BaseSpeed            float64 `mapstructure:"base_speed"`
	StopDistance         float64 `mapstructure:"stop_distance"`
	LostSightGrace       float64 `mapstructure:"lost_sight_grace"`
	LostSightSpeedFactor float64 `mapstructure:"lost_sight_speed_factor"`
	WanderSpeed          float64 `mapstructure:"wander_speed"`
	WanderInterval       float64 `mapstructure:"wander_interval"`
	PatrolSpeed          float64 `mapstructure:"patrol_speed"`
	DriftInterval        float64 `mapstructure:"drift_interval"`
	DriftMaxSpeed        float64 `mapstructure:"drift_max_speed"`
	DespawnDistance      float64 `mapstructure:"despawn_distance"`
}

// SimulationConfig drives the headless runner.
type SimulationConfig struct {
	// Tick is the fixed step between world updates.
	Tick time.Duration `mapstructure:"tick"`
	// Duration bounds the run; 0 runs until interrupted.
	Duration time.Duration `mapstructure:"duration"`
	// Seed selects a deterministic random stream; 0 uses crypto/rand.
	Seed       int64  `mapstructure:"seed"`
	GridWidth  int    `mapstructure:"grid_width"`
	GridHeight int    `mapstructure:"grid_height"`
	Theme      string `mapstructure:"theme"`
	// Layout is an optional YAML room layout used instead of the generated lattice.
	Layout       string `mapstructure:"layout"`
	TemplatesDir string `mapstructure:"templates_dir"`
	// SelectorScript is an optional Lua file defining select_enemy.
	SelectorScript         string  `mapstructure:"selector_script"`
	ScriptInstructionLimit int     `mapstructure:"script_instruction_limit"`
	PlayerSpeed            float64 `mapstructure:"player_speed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging      LoggingConfig      `mapstructure:"logging"`
	Grid         GridConfig         `mapstructure:"grid"`
	Visibility   VisibilityConfig   `mapstructure:"visibility"`
	Collision    CollisionConfig    `mapstructure:"collision"`
	Spawn        SpawnConfig        `mapstructure:"spawn"`
	RuntimeSpawn RuntimeSpawnConfig `mapstructure:"runtime_spawn"`
	PickupSpawn  RuntimeSpawnConfig `mapstructure:"pickup_spawn"`
	Behavior     BehaviorConfig     `mapstructure:"behavior"`
	Simulation   SimulationConfig   `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateGrid(c.Grid),
		validateVisibility(c.Visibility),
		validateCollision(c.Collision),
		validateSpawn(c.Spawn),
		validateRuntimeSpawn("runtime_spawn", c.RuntimeSpawn),
		validateRuntimeSpawn("pickup_spawn", c.PickupSpawn),
		validateBehavior(c.Behavior),
		validateSimulation(c.Simulation),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// joinErrs returns nil for no messages, or one error joining them.
func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGrid(g GridConfig) error {
	var errs []string
	if g.RoomUnit <= 0 {
		errs = append(errs, fmt.Sprintf("grid.room_unit must be > 0, got %g", g.RoomUnit))
	}
	if g.DoorWidth <= 0 || g.DoorWidth >= g.RoomUnit {
		errs = append(errs, fmt.Sprintf("grid.door_width must be in (0, room_unit), got %g", g.DoorWidth))
	}
	return joinErrs(errs)
}

func validateVisibility(v VisibilityConfig) error {
	var errs []string
	if v.StepLength < 0 {
		errs = append(errs, "visibility.step_length must not be negative")
	}
	if v.DoorTolerance < 0 {
		errs = append(errs, "visibility.door_tolerance must not be negative")
	}
	return joinErrs(errs)
}

func validateCollision(c CollisionConfig) error {
	var errs []string
	if c.WallMargin < 0 {
		errs = append(errs, "collision.wall_margin must not be negative")
	}
	if c.EnemyRadius <= 0 || c.ObstacleRadius <= 0 || c.PickupRadius <= 0 {
		errs = append(errs, "collision radii must be > 0")
	}
	return joinErrs(errs)
}

func validateSpawn(s SpawnConfig) error {
	var errs []string
	if s.EnemiesMin < 0 || s.EnemiesMax < s.EnemiesMin {
		errs = append(errs, fmt.Sprintf("spawn.enemies_min/max must satisfy 0 <= min <= max, got %d/%d", s.EnemiesMin, s.EnemiesMax))
	}
	if s.ObstaclesMin < 0 || s.ObstaclesMax < s.ObstaclesMin {
		errs = append(errs, fmt.Sprintf("spawn.obstacles_min/max must satisfy 0 <= min <= max, got %d/%d", s.ObstaclesMin, s.ObstaclesMax))
	}
	if s.PlacementRadius < 0 || s.MinCenterDistance < 0 || s.WallClearance < 0 || s.DoorClearance < 0 || s.MinSeparation < 0 {
		errs = append(errs, "spawn distances must not be negative")
	}
	if s.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("spawn.max_attempts must be >= 1, got %d", s.MaxAttempts))
	}
	if s.ObstaclesMax > 0 && len(s.ObstacleTypes) == 0 {
		errs = append(errs, "spawn.obstacle_types must not be empty when obstacles_max > 0")
	}
	return joinErrs(errs)
}

func validateRuntimeSpawn(section string, r RuntimeSpawnConfig) error {
	var errs []string
	if r.Interval <= 0 {
		errs = append(errs, fmt.Sprintf("%s.interval must be > 0, got %g", section, r.Interval))
	}
	if r.Probability < 0 || r.Probability > 1 {
		errs = append(errs, fmt.Sprintf("%s.probability must be in [0, 1], got %g", section, r.Probability))
	}
	if r.MinDistance < 0 || r.MaxDistance < r.MinDistance {
		errs = append(errs, fmt.Sprintf("%s.min/max_distance must satisfy 0 <= min <= max", section))
	}
	if r.ProbeRooms < 0 {
		errs = append(errs, fmt.Sprintf("%s.probe_rooms must be >= 0", section))
	}
	return joinErrs(errs)
}

func validateBehavior(b BehaviorConfig) error {
	var errs []string
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base_speed", b.BaseSpeed},
		{"stop_distance", b.StopDistance},
		{"lost_sight_grace", b.LostSightGrace},
		{"lost_sight_speed_factor", b.LostSightSpeedFactor},
		{"wander_speed", b.WanderSpeed},
		{"wander_interval", b.WanderInterval},
		{"patrol_speed", b.PatrolSpeed},
		{"drift_interval", b.DriftInterval},
		{"drift_max_speed", b.DriftMaxSpeed},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Sprintf("behavior.%s must not be negative", f.name))
		}
	}
	if b.DespawnDistance <= 0 {
		errs = append(errs, "behavior.despawn_distance must be > 0")
	}
	return joinErrs(errs)
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Tick <= 0 {
		errs = append(errs, "simulation.tick must be > 0")
	}
	if s.Duration < 0 {
		errs = append(errs, "simulation.duration must not be negative")
	}
	if s.Layout == "" && (s.GridWidth < 1 || s.GridHeight < 1) {
		errs = append(errs, fmt.Sprintf("simulation.grid_width/height must be >= 1 without a layout, got %dx%d", s.GridWidth, s.GridHeight))
	}
	if s.PlayerSpeed < 0 {
		errs = append(errs, "simulation.player_speed must not be negative")
	}
	return joinErrs(errs)
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and environment variables only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and ROOMCORE_ environment
// overrides configured.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ROOMCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the validated default configuration.
func Default() Config {
	cfg, err := LoadFromViper(NewViper())
	if err != nil {
		panic(fmt.Sprintf("config.Default: invalid defaults: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("grid.room_unit", 40.0)
	v.SetDefault("grid.door_width", 8.0)

	v.SetDefault("visibility.step_length", 0.0)
	v.SetDefault("visibility.door_tolerance", 0.05)

	v.SetDefault("collision.wall_margin", 0.5)
	v.SetDefault("collision.enemy_radius", 0.6)
	v.SetDefault("collision.obstacle_radius", 1.0)
	v.SetDefault("collision.pickup_radius", 0.4)

	v.SetDefault("spawn.entrance_theme", "entrance")
	v.SetDefault("spawn.enemies_min", 1)
	v.SetDefault("spawn.enemies_max", 3)
	v.SetDefault("spawn.obstacles_min", 0)
	v.SetDefault("spawn.obstacles_max", 2)
	v.SetDefault("spawn.placement_radius", 15.0)
	v.SetDefault("spawn.min_center_distance", 3.0)
	v.SetDefault("spawn.wall_clearance", 2.0)
	v.SetDefault("spawn.door_clearance", 6.0)
	v.SetDefault("spawn.min_separation", 3.0)
	v.SetDefault("spawn.max_attempts", 30)
	v.SetDefault("spawn.obstacle_types", []string{"crate", "barrel"})
	v.SetDefault("spawn.default_enemy", "grunt")

	v.SetDefault("runtime_spawn.interval", 5.0)
	v.SetDefault("runtime_spawn.probability", 0.5)
	v.SetDefault("runtime_spawn.min_distance", 40.0)
	v.SetDefault("runtime_spawn.max_distance", 120.0)
	v.SetDefault("runtime_spawn.probe_rooms", 3)

	v.SetDefault("pickup_spawn.interval", 8.0)
	v.SetDefault("pickup_spawn.probability", 0.4)
	v.SetDefault("pickup_spawn.min_distance", 20.0)
	v.SetDefault("pickup_spawn.max_distance", 80.0)
	v.SetDefault("pickup_spawn.probe_rooms", 2)
	v.SetDefault("pickup_spawn.types", []string{"ammo", "medkit"})

	v.SetDefault("behavior.base_speed", 4.0)
	v.SetDefault("behavior.stop_distance", 2.0)
	v.SetDefault("behavior.lost_sight_grace", 3.0)
	v.SetDefault("behavior.lost_sight_speed_factor", 0.6)
	v.SetDefault("behavior.wander_speed", 1.5)
	v.SetDefault("behavior.wander_interval", 3.0)
	v.SetDefault("behavior.patrol_speed", 2.0)
	v.SetDefault("behavior.drift_interval", 1.5)
	v.SetDefault("behavior.drift_max_speed", 1.2)
	v.SetDefault("behavior.despawn_distance", 160.0)

	v.SetDefault("simulation.tick", "50ms")
	v.SetDefault("simulation.duration", "0s")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.grid_width", 5)
	v.SetDefault("simulation.grid_height", 5)
	v.SetDefault("simulation.theme", "storage")
	v.SetDefault("simulation.layout", "")
	v.SetDefault("simulation.templates_dir", "")
	v.SetDefault("simulation.selector_script", "")
	v.SetDefault("simulation.script_instruction_limit", 0)
	v.SetDefault("simulation.player_speed", 3.0)
}
