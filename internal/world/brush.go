package world

import (
	"fmt"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// BrushShape - форма кисти
type BrushShape string

const (
	BrushBox    BrushShape = "box"
	BrushSphere BrushShape = "sphere"

	// MaxBrushSize - максимальный радиус кисти
	MaxBrushSize = 32
)

// BrushKey - ключ кеша смещений
type BrushKey struct {
	Shape BrushShape
	Size  int
}

// BrushOffsets строит смещения кисти относительно центра в порядке z, y, x
func BrushOffsets(key BrushKey) ([]vec.Vec3, error) {
	if key.Size < 0 || key.Size > MaxBrushSize {
		return nil, fmt.Errorf("%w: размер кисти %d вне [0,%d]", ErrConfig, key.Size, MaxBrushSize)
	}
	s := key.Size
	r2 := s * s
	var out []vec.Vec3
	for dz := -s; dz <= s; dz++ {
		for dy := -s; dy <= s; dy++ {
			for dx := -s; dx <= s; dx++ {
				switch key.Shape {
				case BrushBox:
				case BrushSphere:
					if dx*dx+dy*dy+dz*dz > r2 {
						continue
					}
				default:
					return nil, fmt.Errorf("%w: неизвестная форма кисти %q", ErrConfig, key.Shape)
				}
				out = append(out, vec.Vec3{X: dx, Y: dy, Z: dz})
			}
		}
	}
	return out, nil
}

// BrushCache запоминает смещения кистей. Принадлежит вызывающему слою,
// не потокобезопасен.
type BrushCache struct {
	offsets map[BrushKey][]vec.Vec3
	hits    int
	misses  int
}

// NewBrushCache создаёт пустой кеш
func NewBrushCache() *BrushCache {
	return &BrushCache{offsets: make(map[BrushKey][]vec.Vec3)}
}

// Get возвращает смещения кисти, строя их при первом обращении
func (c *BrushCache) Get(key BrushKey) ([]vec.Vec3, error) {
	if offs, ok := c.offsets[key]; ok {
		c.hits++
		return offs, nil
	}
	offs, err := BrushOffsets(key)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.offsets[key] = offs
	return offs, nil
}

// Len возвращает количество закешированных кистей
func (c *BrushCache) Len() int {
	return len(c.offsets)
}

// Stats возвращает попадания и промахи кеша
func (c *BrushCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Brush - правка области кистью
type Brush struct {
	Center vec.Vec3   `json:"center"`
	Shape  BrushShape `json:"shape"`
	Size   int        `json:"size"`
	Type   block.Type `json:"type"`
	R      uint8      `json:"r"`
	G      uint8      `json:"g"`
	B      uint8      `json:"b"`
}

// ApplyBrush записывает все попавшие в мир воксели кисти и делает один
// пересчёт света на всю область. Центр должен лежать в мире.
func (g *Grid) ApplyBrush(cache *BrushCache, br Brush) (ChunkRange, int, error) {
	c := br.Center
	if !g.dims.InBounds(c.X, c.Y, c.Z) {
		return ChunkRange{}, 0, fmt.Errorf("%w: центр кисти (%d,%d,%d)", ErrOutOfBounds, c.X, c.Y, c.Z)
	}
	if cache == nil {
		cache = NewBrushCache()
	}
	offs, err := cache.Get(BrushKey{Shape: br.Shape, Size: br.Size})
	if err != nil {
		return ChunkRange{}, 0, err
	}

	written := 0
	for _, o := range offs {
		p := c.Add(o)
		if !g.dims.InBounds(p.X, p.Y, p.Z) {
			continue
		}
		g.set(p.X, p.Y, p.Z, br.Type, br.R, br.G, br.B)
		written++
	}

	affected := g.relightAround(bounds{
		x0: c.X - br.Size, y0: c.Y - br.Size, z0: c.Z - br.Size,
		x1: c.X + br.Size, y1: c.Y + br.Size, z1: c.Z + br.Size,
	})
	g.logger.Debug("brush %s/%d at %v: %d voxels", br.Shape, br.Size, c, written)
	return affected, written, nil
}
