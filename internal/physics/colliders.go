// Package physics извлекает статические коллайдеры из сетки мира.
package physics

import (
	"github.com/annel0/voxel-engine/internal/world"
)

// Extractor строит боксы коллайдеров чанка жадным слиянием твёрдых вокселей
type Extractor struct {
	grid *world.Grid
}

// NewExtractor создаёт извлекатель коллайдеров
func NewExtractor(g *world.Grid) *Extractor {
	return &Extractor{grid: g}
}

// Extract возвращает боксы чанка c в координатах мира. Объединение боксов в
// точности равно множеству твёрдых вокселей чанка, боксы не пересекаются.
// Срез указывает в скретч арены и действителен до следующего вызова.
func (e *Extractor) Extract(c world.ChunkCoord) ([]world.Box, error) {
	d := e.grid.Dimensions()
	if err := d.CheckChunk(c); err != nil {
		return nil, err
	}
	arena := e.grid.Arena()
	covered := arena.Covered
	clear(covered)
	boxes := arena.Boxes[:0]

	cs := d.ChunkSize
	ox, oy, oz := c.X*cs, c.Y*cs, c.Z*cs
	blocks := e.grid.Blocks()
	local := func(x, y, z int) int { return x + cs*(y+cs*z) }

	// free - твёрдый и ещё не покрытый воксель (локальные координаты)
	free := func(x, y, z int) bool {
		return !covered[local(x, y, z)] && blocks.IsSolid(e.grid.TypeAt(ox+x, oy+y, oz+z))
	}

	for y := 0; y < cs; y++ {
		for z := 0; z < cs; z++ {
			for x := 0; x < cs; x++ {
				if !free(x, y, z) {
					continue
				}

				// X
				w := 1
				for x+w < cs && free(x+w, y, z) {
					w++
				}

				// Z: вся полоса [x, x+w) должна быть свободна
				dz := 1
			growZ:
				for z+dz < cs {
					for i := 0; i < w; i++ {
						if !free(x+i, y, z+dz) {
							break growZ
						}
					}
					dz++
				}

				// Y: весь прямоугольник w x dz
				h := 1
			growY:
				for y+h < cs {
					for k := 0; k < dz; k++ {
						for i := 0; i < w; i++ {
							if !free(x+i, y+h, z+k) {
								break growY
							}
						}
					}
					h++
				}

				for j := 0; j < h; j++ {
					for k := 0; k < dz; k++ {
						for i := 0; i < w; i++ {
							covered[local(x+i, y+j, z+k)] = true
						}
					}
				}
				boxes = append(boxes, world.Box{
					X: ox + x, Y: oy + y, Z: oz + z,
					Width: w, Height: h, Depth: dz,
				})
			}
		}
	}
	return boxes, nil
}

// Overlaps проверяет пересечение двух боксов
func Overlaps(a, b world.Box) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height &&
		a.Z < b.Z+b.Depth && b.Z < a.Z+a.Depth
}

// SolidVolume суммирует объём боксов
func SolidVolume(boxes []world.Box) int {
	total := 0
	for _, b := range boxes {
		total += b.Volume()
	}
	return total
}
