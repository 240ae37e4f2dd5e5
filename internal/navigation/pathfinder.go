// Package navigation ищет пути и точки назначения для агентов на воксельной сетке.
// Узлы - воксели пола: твёрдый воксель, над которым помещается агент заданной высоты.
package navigation

import (
	"math"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

// Значения по умолчанию для Config
const (
	DefaultMaxStepUp = 1
	DefaultMaxDrop   = 4
	DefaultHeight    = 2
)

// Стоимости ходов
const (
	costStep   = 1 // по ровному или вниз
	costAscend = 1 // за каждый воксель подъёма сверх шага
)

// Config - ограничения передвижения агента
type Config struct {
	MaxStepUp   int `yaml:"max_step_up"`  // максимальный подъём за ход
	MaxDrop     int `yaml:"max_drop"`     // максимальное падение за ход
	SearchLimit int `yaml:"search_limit"` // максимум раскрытых узлов; 0 - объём мира
}

// withDefaults подставляет значения по умолчанию
func (c Config) withDefaults(d world.Dimensions) Config {
	if c.MaxStepUp <= 0 {
		c.MaxStepUp = DefaultMaxStepUp
	}
	if c.MaxDrop <= 0 {
		c.MaxDrop = DefaultMaxDrop
	}
	if c.SearchLimit <= 0 || c.SearchLimit > d.Volume() {
		c.SearchLimit = d.Volume()
	}
	return c
}

// PathQuery - запрос пути. From и To - воксели пола.
type PathQuery struct {
	From      vec.Vec3
	To        vec.Vec3
	Height    int // высота агента в вокселях; 0 - DefaultHeight
	Obstacles *ObstacleMap
}

// Pathfinder - A* по вокселям пола на скретче арены
type Pathfinder struct {
	grid   *world.Grid
	cfg    Config
	open   openSet
	logger *logging.Logger
}

// NewPathfinder создаёт поисковик пути
func NewPathfinder(g *world.Grid, cfg Config, logger *logging.Logger) *Pathfinder {
	if logger == nil {
		logger = logging.GetNavigationLogger()
	}
	return &Pathfinder{
		grid:   g,
		cfg:    cfg.withDefaults(g.Dimensions()),
		open:   openSet{nav: &g.Arena().Nav},
		logger: logger,
	}
}

// Config возвращает действующие ограничения
func (p *Pathfinder) Config() Config {
	return p.cfg
}

// move - один допустимый ход из узла
type move struct {
	x, y, z int
	cost    int32
}

func heuristic(x, z int, to vec.Vec3) int32 {
	return int32(vec.Vec3{X: x, Z: z}.ManhattanXZ(to))
}

// neighbors перечисляет допустимые ходы из пола (x, y, z) в fn
func (p *Pathfinder) neighbors(x, y, z, height int, obstacles *ObstacleMap, fn func(m move)) {
	g := p.grid
	for _, dir := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx, nz := x+dir[0], z+dir[1]
		if !g.Dimensions().ColumnInBounds(nx, nz) {
			continue
		}

		// подъём: чем выше, тем дороже; над текущим полом нужен запас высоты
		for up := 1; up <= p.cfg.MaxStepUp; up++ {
			if g.IsSolid(x, y+height+up, z) {
				break
			}
			ny := y + up
			if Walkable(g, nx, ny, nz, height) {
				if !obstructed(obstacles, nx, ny, nz, height) {
					fn(move{nx, ny, nz, costStep + costAscend*int32(up)})
				}
				break
			}
		}

		// по ровному или вниз: первый твёрдый воксель под телом агента
		if !clearAbove(g, nx, y+1, y+height, nz) {
			continue
		}
		for ny := y; ny >= y-p.cfg.MaxDrop && ny >= 0; ny-- {
			if !g.IsSolid(nx, ny, nz) {
				continue
			}
			if !obstructed(obstacles, nx, ny, nz, height) {
				fn(move{nx, ny, nz, costStep})
			}
			break
		}
	}
}

// FindPath ищет путь от query.From до query.To включительно.
// Пустой результат - путь не найден. Срез указывает в скретч арены
// и действителен до следующего вызова FindPath.
func (p *Pathfinder) FindPath(q PathQuery) []world.Waypoint {
	g := p.grid
	d := g.Dimensions()
	nav := &g.Arena().Nav
	height := q.Height
	if height <= 0 {
		height = DefaultHeight
	}

	from, to := q.From, q.To
	for _, pt := range [2]vec.Vec3{from, to} {
		if !Walkable(g, pt.X, pt.Y, pt.Z, height) || obstructed(q.Obstacles, pt.X, pt.Y, pt.Z, height) {
			p.logger.Trace("path %v -> %v: endpoint %v is not a free floor", from, to, pt)
			return nav.Path[:0]
		}
	}

	gen := nav.NextGeneration()
	p.open.reset()

	start := int32(d.Index(from.X, from.Y, from.Z))
	goal := int32(d.Index(to.X, to.Y, to.Z))
	touch := func(n int32) {
		if nav.Stamp[n] != gen {
			nav.Stamp[n] = gen
			nav.G[n] = math.MaxInt32
			nav.Parent[n] = -1
			nav.HeapIndex[n] = -1
		}
	}

	touch(start)
	nav.G[start] = 0
	nav.F[start] = heuristic(from.X, from.Z, to)
	p.open.push(start)

	expanded := 0
	for p.open.len() > 0 {
		cur := p.open.pop()
		if cur == goal {
			path := p.reconstruct(goal)
			p.logger.Trace("path %v -> %v: %d waypoints, %d expanded", from, to, len(path), expanded)
			return path
		}
		nav.Closed[cur] = gen
		expanded++
		if expanded >= p.cfg.SearchLimit {
			break
		}

		x, y, z := d.Coords(int(cur))
		gCur := nav.G[cur]
		p.neighbors(x, y, z, height, q.Obstacles, func(m move) {
			n := int32(d.Index(m.x, m.y, m.z))
			touch(n)
			if nav.Closed[n] == gen {
				return
			}
			ng := gCur + m.cost
			if ng >= nav.G[n] {
				return
			}
			nav.G[n] = ng
			nav.F[n] = ng + heuristic(m.x, m.z, to)
			nav.Parent[n] = cur
			p.open.push(n)
		})
	}

	p.logger.Trace("path %v -> %v: not found, %d expanded", from, to, expanded)
	return nav.Path[:0]
}

// reconstruct разворачивает цепочку родителей в скретч пути
func (p *Pathfinder) reconstruct(goal int32) []world.Waypoint {
	g := p.grid
	d := g.Dimensions()
	nav := &g.Arena().Nav

	n := 0
	for i := goal; i >= 0; i = nav.Parent[i] {
		n++
	}
	if n > cap(nav.Path) {
		return nav.Path[:0]
	}

	path := nav.Path[:n]
	k := n - 1
	for i := goal; i >= 0; i = nav.Parent[i] {
		x, y, z := d.Coords(int(i))
		path[k] = world.Waypoint{X: x, Y: y, Z: z, LightPacked: feetLight(g, x, y, z)}
		k--
	}
	return path
}
