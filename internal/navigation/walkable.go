package navigation

import "github.com/annel0/voxel-engine/internal/world"

// Walkable проверяет, может ли агент высотой height стоять на полу (x, y, z):
// пол твёрдый и в мире, height клеток над ним не твёрдые (над миром - свободно).
func Walkable(g *world.Grid, x, y, z, height int) bool {
	if !g.Dimensions().InBounds(x, y, z) || !g.IsSolid(x, y, z) {
		return false
	}
	return clearAbove(g, x, y+1, y+height, z)
}

// clearAbove проверяет, что клетки колонки с y0 по y1 включительно не твёрдые
func clearAbove(g *world.Grid, x, y0, y1, z int) bool {
	for y := y0; y <= y1; y++ {
		if g.IsSolid(x, y, z) {
			return false
		}
	}
	return true
}

// obstructed проверяет пол и клетки тела агента по карте препятствий
func obstructed(m *ObstacleMap, x, y, z, height int) bool {
	if m == nil {
		return false
	}
	for dy := 0; dy <= height; dy++ {
		if m.Has(x, y+dy, z) {
			return true
		}
	}
	return false
}

// feetLight возвращает упакованный свет клетки над полом
func feetLight(g *world.Grid, x, y, z int) uint16 {
	return world.PackLight(g.LightAt(x, y+1, z))
}
