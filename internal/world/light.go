package world

import "github.com/annel0/voxel-engine/internal/world/block"

// Соседи по шести граням. Индекс 3 - вниз (для небесного столба).
var faceOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

const faceDown = 3

// lightBucket возвращает номер уровня заливки для значения света v > 0.
// Уровень k содержит значения (255-(k+1)*step, 255-k*step]; один шаг
// распространения всегда переводит значение ровно на уровень ниже.
func (g *Grid) lightBucket(v int) int {
	return (MaxLight - v) / g.lightStep
}

// propagates проверяет, передаёт ли воксель свет канала дальше.
// Непрозрачные воксели свет получают, но не пропускают; излучатели светят всегда.
func (g *Grid) propagates(t block.Type, field int) bool {
	if !g.blocks.IsOpaque(t) {
		return true
	}
	return field == fieldLight && g.blocks.IsEmissive(t)
}

// relightAll полностью пересчитывает оба канала света
func (g *Grid) relightAll() {
	g.relightBox(bounds{
		x0: 0, y0: 0, z0: 0,
		x1: g.dims.Width - 1, y1: g.dims.Height - 1, z1: g.dims.Depth - 1,
	})
}

// relightAround пересчитывает свет вокруг бокса правок, расширенного на радиус света,
// и возвращает диапазон затронутых чанков
func (g *Grid) relightAround(b bounds) ChunkRange {
	r := g.lightRadius
	box := g.dims.clip(bounds{
		x0: b.x0 - r, y0: 0, z0: b.z0 - r,
		x1: b.x1 + r, y1: g.dims.Height - 1, z1: b.z1 + r,
	})
	g.relightBox(box)
	return g.dims.chunkRangeFor(box)
}

// relightBox стирает свет в боксе (все y) и заново заливает его из источников
// внутри бокса и из уже освещённого кольца вокруг него
func (g *Grid) relightBox(b bounds) {
	for z := b.z0; z <= b.z1; z++ {
		for y := b.y0; y <= b.y1; y++ {
			for x := b.x0; x <= b.x1; x++ {
				i := g.dims.Index(x, y, z)
				g.setLightByte(i, fieldLight, 0)
				g.setLightByte(i, fieldSunlight, 0)
			}
		}
	}
	g.flood(b, fieldSunlight)
	g.flood(b, fieldLight)
}

// flood - многоисточниковый BFS по уровням на двух очередях арены
func (g *Grid) flood(b bounds, field int) {
	cur := g.arena.QueueCur[:0]
	next := g.arena.QueueNext[:0]

	if field == fieldSunlight {
		// небо: сверху вниз до первого непрозрачного включительно
		for z := b.z0; z <= b.z1; z++ {
			for x := b.x0; x <= b.x1; x++ {
				for y := g.dims.Height - 1; y >= 0; y-- {
					i := g.dims.Index(x, y, z)
					g.setLightByte(i, field, MaxLight)
					if !g.propagates(g.TypeAtIndex(i), field) {
						break
					}
					cur = append(cur, int32(i))
				}
			}
		}
	} else {
		for z := b.z0; z <= b.z1; z++ {
			for y := b.y0; y <= b.y1; y++ {
				for x := b.x0; x <= b.x1; x++ {
					i := g.dims.Index(x, y, z)
					if g.blocks.IsEmissive(g.TypeAtIndex(i)) {
						g.setLightByte(i, field, MaxLight)
						cur = append(cur, int32(i))
					}
				}
			}
		}
	}

	whole := b.x0 == 0 && b.z0 == 0 && b.x1 == g.dims.Width-1 && b.z1 == g.dims.Depth-1
	last := g.lightBucket(1)

	for k := 0; k <= last; k++ {
		if !whole {
			cur = g.appendShellSeeds(cur, b, field, k)
		} else if len(cur) == 0 {
			break
		}

		// cur может расти во время обхода: небесный столб не затухает
		for j := 0; j < len(cur); j++ {
			i := int(cur[j])
			v := int(g.lightByte(i, field))
			x, y, z := g.dims.Coords(i)

			for face, off := range faceOffsets {
				nx, ny, nz := x+off[0], y+off[1], z+off[2]
				if !g.dims.InBounds(nx, ny, nz) {
					continue
				}
				nv := v - g.lightStep
				if field == fieldSunlight && face == faceDown && v == MaxLight {
					nv = MaxLight
				}
				if nv <= 0 {
					continue
				}
				n := g.dims.Index(nx, ny, nz)
				old := int(g.lightByte(n, field))
				if old >= nv {
					continue
				}
				g.setLightByte(n, field, uint8(nv))
				if !g.propagates(g.TypeAtIndex(n), field) {
					continue
				}
				switch {
				case nv == v:
					cur = append(cur, int32(n))
				case old == 0 || g.lightBucket(old) > g.lightBucket(nv):
					next = append(next, int32(n))
				}
			}
		}

		cur, next = next, cur[:0]
	}
}

// appendShellSeeds добавляет в очередь воксели кольца вокруг бокса,
// чей текущий свет принадлежит уровню k
func (g *Grid) appendShellSeeds(queue []int32, b bounds, field, k int) []int32 {
	seed := func(x, z int) {
		if !g.dims.ColumnInBounds(x, z) {
			return
		}
		for y := b.y0; y <= b.y1; y++ {
			i := g.dims.Index(x, y, z)
			v := int(g.lightByte(i, field))
			if v == 0 || g.lightBucket(v) != k {
				continue
			}
			if g.propagates(g.TypeAtIndex(i), field) {
				queue = append(queue, int32(i))
			}
		}
	}

	for x := b.x0 - 1; x <= b.x1+1; x++ {
		seed(x, b.z0-1)
		seed(x, b.z1+1)
	}
	for z := b.z0; z <= b.z1; z++ {
		seed(b.x0-1, z)
		seed(b.x1+1, z)
	}
	return queue
}
