package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block"
)

var cube16 = world.Dimensions{Width: 16, Height: 16, Depth: 16, ChunkSize: 16}

func flatGrid(t *testing.T, d world.Dimensions, layers int) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(d, world.Options{
		Generator: world.GeneratorFlat,
		Flat:      world.FlatParams{Layers: layers},
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	g.Generate(42)
	return g
}

func place(t *testing.T, g *world.Grid, x, y, z int, typ block.Type) {
	t.Helper()
	_, err := g.Update(world.Edit{X: x, Y: y, Z: z, Type: typ})
	require.NoError(t, err)
}

func newPathfinder(g *world.Grid, cfg Config) *Pathfinder {
	return NewPathfinder(g, cfg, logging.Discard())
}

// checkPath проверяет, что каждый переход - допустимый одиночный ход
func checkPath(t *testing.T, g *world.Grid, cfg Config, q PathQuery, path []world.Waypoint) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, q.From, vec.Vec3{X: path[0].X, Y: path[0].Y, Z: path[0].Z})
	last := path[len(path)-1]
	assert.Equal(t, q.To, vec.Vec3{X: last.X, Y: last.Y, Z: last.Z})

	height := q.Height
	if height == 0 {
		height = DefaultHeight
	}
	for i, wp := range path {
		require.True(t, Walkable(g, wp.X, wp.Y, wp.Z, height), "точка %d не пол: %+v", i, wp)
		require.False(t, obstructed(q.Obstacles, wp.X, wp.Y, wp.Z, height), "точка %d на препятствии", i)
		if i == 0 {
			continue
		}
		prev := path[i-1]
		dx, dz := abs(wp.X-prev.X), abs(wp.Z-prev.Z)
		require.Equal(t, 1, dx+dz, "ход %d не на соседнюю колонку", i)
		dy := wp.Y - prev.Y
		require.LessOrEqual(t, dy, cfg.MaxStepUp, "ход %d: подъём %d", i, dy)
		require.GreaterOrEqual(t, dy, -cfg.MaxDrop, "ход %d: падение %d", i, dy)
	}
}

func TestFindPath_StraightOnFlat(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	pf := newPathfinder(g, Config{})

	q := PathQuery{From: vec.Vec3{X: 0, Y: 0, Z: 0}, To: vec.Vec3{X: 0, Y: 0, Z: 5}, Height: 2}
	path := pf.FindPath(q)
	require.Len(t, path, 6)
	for i, wp := range path {
		assert.Equal(t, world.Waypoint{X: 0, Y: 0, Z: i, LightPacked: world.PackLight(0, 255)}, wp)
	}
	checkPath(t, g, pf.Config(), q, path)
}

func TestFindPath_SameStartAndGoal(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	path := newPathfinder(g, Config{}).FindPath(PathQuery{From: vec.Vec3{X: 3, Z: 3}, To: vec.Vec3{X: 3, Z: 3}})
	require.Len(t, path, 1)
	assert.Equal(t, 3, path[0].X)
}

func TestFindPath_StepUpAndDrop(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	pf := newPathfinder(g, Config{})

	place(t, g, 0, 1, 2, block.Solid)
	q := PathQuery{From: vec.Vec3{X: 0, Y: 0, Z: 0}, To: vec.Vec3{X: 0, Y: 1, Z: 2}, Height: 2}
	path := pf.FindPath(q)
	require.Len(t, path, 3)
	assert.Equal(t, 1, path[2].Y)
	checkPath(t, g, pf.Config(), q, path)

	// башня высотой 3: спрыгнуть можно
	for y := 1; y <= 3; y++ {
		place(t, g, 8, y, 8, block.Solid)
	}
	q = PathQuery{From: vec.Vec3{X: 8, Y: 3, Z: 8}, To: vec.Vec3{X: 9, Y: 0, Z: 8}, Height: 2}
	path = pf.FindPath(q)
	require.Len(t, path, 2)
	checkPath(t, g, pf.Config(), q, path)

	// а забраться обратно - нет
	back := pf.FindPath(PathQuery{From: q.To, To: q.From, Height: 2})
	assert.Empty(t, back)
}

func TestFindPath_DropTooDeep(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	for y := 1; y <= 5; y++ {
		place(t, g, 8, y, 8, block.Solid)
	}
	path := newPathfinder(g, Config{MaxDrop: 4}).FindPath(PathQuery{
		From: vec.Vec3{X: 8, Y: 5, Z: 8}, To: vec.Vec3{X: 9, Y: 0, Z: 8}, Height: 2,
	})
	assert.Empty(t, path)

	path = newPathfinder(g, Config{MaxDrop: 5}).FindPath(PathQuery{
		From: vec.Vec3{X: 8, Y: 5, Z: 8}, To: vec.Vec3{X: 9, Y: 0, Z: 8}, Height: 2,
	})
	assert.Len(t, path, 2)
}

func TestFindPath_NeedsHeadroomToStepUp(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	place(t, g, 0, 1, 1, block.Solid)
	// потолок над стартом на высоте 3: агенту 2 не подняться на ступень
	place(t, g, 0, 3, 0, block.Solid)

	pf := newPathfinder(g, Config{})
	direct := pf.FindPath(PathQuery{From: vec.Vec3{}, To: vec.Vec3{X: 0, Y: 1, Z: 1}, Height: 2})
	require.NotEmpty(t, direct)
	assert.Greater(t, len(direct), 2, "путь обходит потолок")
	checkPath(t, g, pf.Config(), PathQuery{From: vec.Vec3{}, To: vec.Vec3{X: 0, Y: 1, Z: 1}, Height: 2}, direct)
}

func TestFindPath_ObstaclesBlock(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	pf := newPathfinder(g, Config{})
	obstacles := NewObstacleMap(g.Dimensions())

	for x := 0; x < 16; x++ {
		obstacles.Set(x, 1, 3)
	}
	path := pf.FindPath(PathQuery{From: vec.Vec3{}, To: vec.Vec3{Z: 5}, Height: 2, Obstacles: obstacles})
	assert.Empty(t, path, "стена из препятствий через весь мир")

	// проход в стене
	obstacles.Clear(7, 1, 3)
	q := PathQuery{From: vec.Vec3{}, To: vec.Vec3{Z: 5}, Height: 2, Obstacles: obstacles}
	path = pf.FindPath(q)
	require.NotEmpty(t, path)
	checkPath(t, g, pf.Config(), q, path)
	assert.Len(t, path, 6+2*7)

	// цель на препятствии
	obstacles.Set(0, 1, 5)
	assert.Empty(t, pf.FindPath(q))
}

func TestFindPath_InvalidEndpoints(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	pf := newPathfinder(g, Config{})

	assert.Empty(t, pf.FindPath(PathQuery{From: vec.Vec3{X: -1}, To: vec.Vec3{Z: 5}}))
	assert.Empty(t, pf.FindPath(PathQuery{From: vec.Vec3{}, To: vec.Vec3{Y: 1, Z: 5}}), "цель в воздухе")
	assert.Empty(t, pf.FindPath(PathQuery{From: vec.Vec3{}, To: vec.Vec3{Z: 16}}))
}

func TestFindPath_SearchLimit(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	q := PathQuery{From: vec.Vec3{}, To: vec.Vec3{Z: 5}}

	assert.Empty(t, newPathfinder(g, Config{SearchLimit: 3}).FindPath(q))
	assert.Len(t, newPathfinder(g, Config{SearchLimit: 100}).FindPath(q), 6)
}

func TestFindPath_Deterministic(t *testing.T) {
	d := world.Dimensions{Width: 32, Height: 32, Depth: 32, ChunkSize: 16}
	g, err := world.NewGrid(d, world.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	g.Generate(7)

	loc := NewLocator(g, logging.Discard())
	from, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 4, Z: 4}, Radius: 4})
	require.True(t, ok)
	to, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 12, Z: 10}, Radius: 4})
	require.True(t, ok)

	pf := newPathfinder(g, Config{MaxStepUp: 32, MaxDrop: 32})
	q := PathQuery{From: vec.Vec3{X: from.X, Y: from.Y, Z: from.Z}, To: vec.Vec3{X: to.X, Y: to.Y, Z: to.Z}}
	first := append([]world.Waypoint(nil), pf.FindPath(q)...)
	second := pf.FindPath(q)
	assert.Equal(t, first, second)
	if len(first) > 0 {
		checkPath(t, g, pf.Config(), q, first)
	}
}

func TestFindTarget_OnlyFreeColumn(t *testing.T) {
	g := flatGrid(t, cube16, 5)
	h := g.Height(0, 0)
	obstacles := NewObstacleMap(g.Dimensions())
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			if x == 10 && z == 8 {
				continue
			}
			obstacles.Set(x, h+1, z)
		}
	}

	loc := NewLocator(g, logging.Discard())
	wp, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 8, Y: h + 1, Z: 8}, Radius: 4, Height: 2, Obstacles: obstacles})
	require.True(t, ok)
	assert.Equal(t, [3]int{10, h, 8}, [3]int{wp.X, wp.Y, wp.Z})
	assert.Equal(t, uint8(255), wp.Sunlight())

	_, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 3, Y: h + 1, Z: 8}, Radius: 6, Height: 2, Obstacles: obstacles})
	assert.False(t, ok, "свободная колонка дальше радиуса")
	wp, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 3, Y: h + 1, Z: 8}, Radius: 7, Height: 2, Obstacles: obstacles})
	require.True(t, ok)
	assert.LessOrEqual(t, vec.Vec3{X: 3, Z: 8}.ChebyshevXZ(vec.Vec3{X: wp.X, Z: wp.Z}), 7)
}

func TestFindTarget_RingOrder(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	loc := NewLocator(g, logging.Discard())

	wp, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: 2})
	require.True(t, ok)
	assert.Equal(t, [2]int{5, 5}, [2]int{wp.X, wp.Z}, "r = 0 - сама колонка")

	obstacles := NewObstacleMap(g.Dimensions())
	obstacles.Set(5, 1, 5)
	wp, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: 2, Obstacles: obstacles})
	require.True(t, ok)
	assert.Equal(t, [2]int{4, 4}, [2]int{wp.X, wp.Z}, "первой в кольце идёт (-1,-1)")
}

func TestFindTarget_HugeRadiusBoundedByWorld(t *testing.T) {
	g := flatGrid(t, cube16, 3)
	h := g.Height(0, 0)
	obstacles := NewObstacleMap(g.Dimensions())
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			obstacles.Set(x, h+1, z)
		}
	}
	loc := NewLocator(g, logging.Discard())

	start := time.Now()
	_, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 8, Z: 8}, Radius: math.MaxInt32, Obstacles: obstacles})
	assert.False(t, ok)
	_, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 1 << 40, Z: -(1 << 40)}, Radius: math.MaxInt, Obstacles: obstacles})
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFindTarget_OriginOutsideWorld(t *testing.T) {
	g := flatGrid(t, cube16, 3)
	h := g.Height(0, 0)
	loc := NewLocator(g, logging.Discard())

	// мир начинается с кольца 5; в нём первой идёт строка z = 0
	_, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: -5, Z: 3}, Radius: 4})
	assert.False(t, ok)
	wp, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: -5, Z: 3}, Radius: 5})
	require.True(t, ok)
	assert.Equal(t, [3]int{0, h, 0}, [3]int{wp.X, wp.Y, wp.Z})

	wp, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 20, Z: 20}, Radius: 100})
	require.True(t, ok)
	assert.Equal(t, [2]int{15, 15}, [2]int{wp.X, wp.Z})
}

func TestFindTarget_RingPerimeterOrder(t *testing.T) {
	g := flatGrid(t, cube16, 1)
	h := g.Height(0, 0)
	obstacles := NewObstacleMap(g.Dimensions())
	for z := 3; z <= 7; z++ {
		for x := 3; x <= 7; x++ {
			obstacles.Set(x, h+1, z)
		}
	}
	// на кольце 2 свободны только левая и правая клетки средней строки
	obstacles.Clear(3, h+1, 5)
	obstacles.Clear(7, h+1, 5)
	loc := NewLocator(g, logging.Discard())

	wp, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: 2, Obstacles: obstacles})
	require.True(t, ok)
	assert.Equal(t, [2]int{3, 5}, [2]int{wp.X, wp.Z})

	obstacles.Set(3, h+1, 5)
	wp, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: 2, Obstacles: obstacles})
	require.True(t, ok)
	assert.Equal(t, [2]int{7, 5}, [2]int{wp.X, wp.Z})
}

func TestFindTarget_SkipsCoveredFloor(t *testing.T) {
	g := flatGrid(t, cube16, 4)
	// навес над колонкой на высоте 2 над полом: агенту высотой 3 не встать
	place(t, g, 5, 6, 5, block.Solid)

	loc := NewLocator(g, logging.Discard())
	wp, ok := loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: 0, Height: 3})
	require.True(t, ok)
	assert.Equal(t, 6, wp.Y, "встаём на сам навес")

	_, ok = loc.FindTarget(TargetQuery{Origin: vec.Vec3{X: 5, Z: 5}, Radius: -1})
	assert.False(t, ok)
}

func TestObstacleMap(t *testing.T) {
	m := NewObstacleMap(cube16)
	m.Set(1, 2, 3)
	m.SetPoint(vec.Vec3{X: 15, Y: 15, Z: 15})
	m.Set(16, 0, 0)

	assert.True(t, m.Has(1, 2, 3))
	assert.True(t, m.Has(15, 15, 15))
	assert.False(t, m.Has(16, 0, 0))
	assert.Equal(t, 2, m.Len())

	m.Clear(1, 2, 3)
	assert.False(t, m.Has(1, 2, 3))
	m.Reset()
	assert.Zero(t, m.Len())

	var empty *ObstacleMap
	assert.False(t, empty.Has(0, 0, 0))
}

func TestOpenSet_FIFOAmongEqual(t *testing.T) {
	const n = 8
	nav := &world.NavScratch{
		F:         make([]int32, n),
		Seq:       make([]uint32, n),
		HeapIndex: make([]int32, n),
		Heap:      make([]int32, 0, n),
	}
	for i := range nav.HeapIndex {
		nav.HeapIndex[i] = -1
	}
	h := openSet{nav: nav}
	h.reset()

	nav.F = []int32{5, 3, 5, 3, 1, 5, 3, 9}
	for _, i := range []int32{7, 0, 2, 5, 1, 3, 6, 4} {
		h.push(i)
	}
	// уменьшение ключа: 7 становится равным тройкам и встаёт в очередь последним
	nav.F[7] = 3
	h.push(7)

	var order []int32
	for h.len() > 0 {
		order = append(order, h.pop())
	}
	assert.Equal(t, []int32{4, 1, 3, 6, 7, 0, 2, 5}, order)
}
