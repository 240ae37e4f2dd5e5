package world

import (
	"fmt"

	"github.com/annel0/voxel-engine/internal/world/block"
)

// Edit - правка одного вокселя
type Edit struct {
	X    int        `json:"x"`
	Y    int        `json:"y"`
	Z    int        `json:"z"`
	Type block.Type `json:"type"`
	R    uint8      `json:"r"`
	G    uint8      `json:"g"`
	B    uint8      `json:"b"`
}

// Update записывает тип и цвет вокселя, поддерживает карту высот и
// локально пересчитывает свет. Возвращает чанки, которым нужны новые меш и коллайдеры.
func (g *Grid) Update(e Edit) (ChunkRange, error) {
	if !g.dims.InBounds(e.X, e.Y, e.Z) {
		return ChunkRange{}, fmt.Errorf("%w: правка (%d,%d,%d)", ErrOutOfBounds, e.X, e.Y, e.Z)
	}

	g.set(e.X, e.Y, e.Z, e.Type, e.R, e.G, e.B)
	affected := g.relightAround(bounds{x0: e.X, y0: e.Y, z0: e.Z, x1: e.X, y1: e.Y, z1: e.Z})

	g.logger.Debug("voxel (%d,%d,%d) <- %s, chunks %v..%v", e.X, e.Y, e.Z, g.blocks.Name(e.Type), affected.Min, affected.Max)
	return affected, nil
}

// set пишет воксель и карту высот без пересчёта света
func (g *Grid) set(x, y, z int, t block.Type, r, gr, b uint8) {
	g.writeVoxel(g.dims.Index(x, y, z), t, r, gr, b)
	g.updateHeight(x, y, z, t)
}
