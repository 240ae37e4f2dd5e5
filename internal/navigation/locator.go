package navigation

import (
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

// TargetQuery - запрос точки назначения вокруг Origin
type TargetQuery struct {
	Origin    vec.Vec3
	Radius    int // по Чебышёву в плоскости xz
	Height    int // высота агента; 0 - DefaultHeight
	Obstacles *ObstacleMap
}

// Locator ищет ближайший свободный пол кольцами вокруг точки
type Locator struct {
	grid   *world.Grid
	logger *logging.Logger
}

// NewLocator создаёт поисковик точек назначения
func NewLocator(g *world.Grid, logger *logging.Logger) *Locator {
	if logger == nil {
		logger = logging.GetNavigationLogger()
	}
	return &Locator{grid: g, logger: logger}
}

// FindTarget обходит кольца r = 0..Radius (dz, затем dx по возрастанию) и
// возвращает первый пол, на котором агент помещается и который не занят.
// Кольца обрезаются по границам мира, так что стоимость вызова не зависит
// от Radius и ограничена числом колонок мира. false - в радиусе ничего нет.
func (l *Locator) FindTarget(q TargetQuery) (world.Waypoint, bool) {
	height := q.Height
	if height <= 0 {
		height = DefaultHeight
	}
	if q.Radius < 0 {
		return world.Waypoint{}, false
	}

	d := l.grid.Dimensions()
	ox, oz := q.Origin.X, q.Origin.Z
	// ближайшее и дальнее кольцо, задевающие мир
	rMin := max(0, -ox, ox-(d.Width-1), -oz, oz-(d.Depth-1))
	rMax := min(q.Radius, max(ox, d.Width-1-ox, oz, d.Depth-1-oz))

	for r := rMin; r <= rMax; r++ {
		if wp, ok := l.scanRing(ox, oz, r, height, q.Obstacles); ok {
			l.logger.Trace("target near %v: found %d,%d,%d at ring %d", q.Origin, wp.X, wp.Y, wp.Z, r)
			return wp, true
		}
	}
	l.logger.Trace("target near %v: nothing within %d", q.Origin, q.Radius)
	return world.Waypoint{}, false
}

// scanRing проходит периметр кольца r в пределах мира: верхняя и нижняя
// строки целиком, промежуточные строки только по краям
func (l *Locator) scanRing(ox, oz, r, height int, obstacles *ObstacleMap) (world.Waypoint, bool) {
	d := l.grid.Dimensions()
	dxLo, dxHi := max(-r, -ox), min(r, d.Width-1-ox)
	dzLo, dzHi := max(-r, -oz), min(r, d.Depth-1-oz)

	for dz := dzLo; dz <= dzHi; dz++ {
		z := oz + dz
		if dz == -r || dz == r {
			for dx := dxLo; dx <= dxHi; dx++ {
				if wp, ok := l.columnFloor(ox+dx, z, height, obstacles); ok {
					return wp, true
				}
			}
			continue
		}
		if -r >= dxLo {
			if wp, ok := l.columnFloor(ox-r, z, height, obstacles); ok {
				return wp, true
			}
		}
		if r <= dxHi {
			if wp, ok := l.columnFloor(ox+r, z, height, obstacles); ok {
				return wp, true
			}
		}
	}
	return world.Waypoint{}, false
}

// columnFloor спускается от верха колонки к первому свободному полу
func (l *Locator) columnFloor(x, z, height int, obstacles *ObstacleMap) (world.Waypoint, bool) {
	g := l.grid
	top := g.Height(x, z)
	for y := top; y >= 0; y-- {
		if !Walkable(g, x, y, z, height) || obstructed(obstacles, x, y, z, height) {
			continue
		}
		return world.Waypoint{X: x, Y: y, Z: z, LightPacked: feetLight(g, x, y, z)}, true
	}
	return world.Waypoint{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
