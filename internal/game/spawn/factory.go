package spawn

import (
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// Factory creates the live entities for planned placements. A nil result
// means creation was declined and the placement is skipped.
type Factory interface {
	CreateEnemy(x, z float64, enemyType string) *entity.Entity
	CreateObstacle(x, z float64, obstacleType string) *entity.Entity
}

// PickupFactory creates pickups for the runtime spawner.
type PickupFactory interface {
	CreatePickup(x, z float64, pickupType string) *entity.Entity
}

// Materialized holds the entities created for one room.
type Materialized struct {
	Key       world.RoomKey
	Enemies   []*entity.Entity
	Obstacles []*entity.Entity
}

// Len returns the number of created entities.
func (m Materialized) Len() int {
	return len(m.Enemies) + len(m.Obstacles)
}
