package navigation

import (
	"math/bits"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

// ObstacleMap - плотная битовая карта клеток, которые запрос должен обходить.
// Вызывающий собирает её заново перед каждым запросом; движок её не хранит.
type ObstacleMap struct {
	dims world.Dimensions
	bits []uint64
}

// NewObstacleMap создаёт пустую карту под размеры мира
func NewObstacleMap(d world.Dimensions) *ObstacleMap {
	return &ObstacleMap{
		dims: d,
		bits: make([]uint64, (d.Volume()+63)/64),
	}
}

// Set помечает клетку; клетки вне мира игнорируются
func (m *ObstacleMap) Set(x, y, z int) {
	if !m.dims.InBounds(x, y, z) {
		return
	}
	i := m.dims.Index(x, y, z)
	m.bits[i>>6] |= 1 << (uint(i) & 63)
}

// SetPoint помечает клетку по вектору
func (m *ObstacleMap) SetPoint(p vec.Vec3) {
	m.Set(p.X, p.Y, p.Z)
}

// Clear снимает пометку с клетки
func (m *ObstacleMap) Clear(x, y, z int) {
	if !m.dims.InBounds(x, y, z) {
		return
	}
	i := m.dims.Index(x, y, z)
	m.bits[i>>6] &^= 1 << (uint(i) & 63)
}

// Has проверяет пометку. nil-карта пуста.
func (m *ObstacleMap) Has(x, y, z int) bool {
	if m == nil || !m.dims.InBounds(x, y, z) {
		return false
	}
	i := m.dims.Index(x, y, z)
	return m.bits[i>>6]&(1<<(uint(i)&63)) != 0
}

// Reset снимает все пометки
func (m *ObstacleMap) Reset() {
	clear(m.bits)
}

// Len возвращает количество помеченных клеток
func (m *ObstacleMap) Len() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}
