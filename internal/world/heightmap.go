package world

import "github.com/annel0/voxel-engine/internal/world/block"

// Height возвращает y самого верхнего непустого вокселя колонки, -1 для пустой колонки
// и для колонки вне мира.
func (g *Grid) Height(x, z int) int {
	if !g.dims.ColumnInBounds(x, z) {
		return -1
	}
	return int(g.arena.Heightmap[x+z*g.dims.Width])
}

// Heightmap возвращает карту высот (x + z*W) только для чтения
func (g *Grid) Heightmap() []int32 {
	return g.arena.Heightmap
}

// rebuildHeightmap пересчитывает всю карту высот сканированием сверху вниз
func (g *Grid) rebuildHeightmap() {
	for z := 0; z < g.dims.Depth; z++ {
		for x := 0; x < g.dims.Width; x++ {
			g.scanColumn(x, z, g.dims.Height-1)
		}
	}
}

// scanColumn ищет верхний непустой воксель колонки, начиная с fromY вниз
func (g *Grid) scanColumn(x, z, fromY int) {
	top := int32(-1)
	for y := fromY; y >= 0; y-- {
		if g.TypeAtIndex(g.dims.Index(x, y, z)) != block.Air {
			top = int32(y)
			break
		}
	}
	g.arena.Heightmap[x+z*g.dims.Width] = top
}

// updateHeight поддерживает инвариант карты высот после записи одного вокселя
func (g *Grid) updateHeight(x, y, z int, t block.Type) {
	col := x + z*g.dims.Width
	top := int(g.arena.Heightmap[col])
	switch {
	case t != block.Air && y > top:
		g.arena.Heightmap[col] = int32(y)
	case t == block.Air && y == top:
		g.scanColumn(x, z, y-1)
	}
}
