package world

import (
	"fmt"

	"github.com/annel0/voxel-engine/internal/world/block"
)

// Смещения полей внутри 6-байтовой записи вокселя
const (
	fieldType = iota
	fieldR
	fieldG
	fieldB
	fieldLight
	fieldSunlight
)

// MaxLight - максимальное значение обоих каналов света
const MaxLight = 255

// Voxel - распакованное представление одной ячейки сетки
type Voxel struct {
	Type     block.Type `json:"type"`
	R        uint8      `json:"r"`
	G        uint8      `json:"g"`
	B        uint8      `json:"b"`
	Light    uint8      `json:"light"`
	Sunlight uint8      `json:"sunlight"`
}

// IsAir возвращает true для пустого вокселя
func (v Voxel) IsAir() bool {
	return v.Type == block.Air
}

// PackVoxel записывает воксель в 6 байт
func PackVoxel(dst []byte, v Voxel) {
	_ = dst[fieldSunlight]
	dst[fieldType] = byte(v.Type)
	dst[fieldR] = v.R
	dst[fieldG] = v.G
	dst[fieldB] = v.B
	dst[fieldLight] = v.Light
	dst[fieldSunlight] = v.Sunlight
}

// UnpackVoxel читает воксель из 6 байт
func UnpackVoxel(src []byte) Voxel {
	_ = src[fieldSunlight]
	return Voxel{
		Type:     block.Type(src[fieldType]),
		R:        src[fieldR],
		G:        src[fieldG],
		B:        src[fieldB],
		Light:    src[fieldLight],
		Sunlight: src[fieldSunlight],
	}
}

// VoxelAt возвращает воксель по плоскому индексу без проверки границ
func (g *Grid) VoxelAt(i int) Voxel {
	off := i * VoxelStride
	return UnpackVoxel(g.arena.Voxels[off : off+VoxelStride])
}

// Voxel возвращает воксель по координатам
func (g *Grid) Voxel(x, y, z int) (Voxel, error) {
	if !g.dims.InBounds(x, y, z) {
		return Voxel{}, fmt.Errorf("%w: воксель (%d,%d,%d)", ErrOutOfBounds, x, y, z)
	}
	return g.VoxelAt(g.dims.Index(x, y, z)), nil
}

// TypeAt возвращает тип вокселя; вне мира - Air
func (g *Grid) TypeAt(x, y, z int) block.Type {
	if !g.dims.InBounds(x, y, z) {
		return block.Air
	}
	return block.Type(g.arena.Voxels[g.dims.Index(x, y, z)*VoxelStride+fieldType])
}

// TypeAtIndex возвращает тип вокселя по индексу без проверки границ
func (g *Grid) TypeAtIndex(i int) block.Type {
	return block.Type(g.arena.Voxels[i*VoxelStride+fieldType])
}

// IsSolid проверяет твёрдость вокселя; вне мира - false
func (g *Grid) IsSolid(x, y, z int) bool {
	return g.blocks.IsSolid(g.TypeAt(x, y, z))
}

// LightAt возвращает оба канала света вокселя; над миром - полное небо
func (g *Grid) LightAt(x, y, z int) (light, sunlight uint8) {
	if y >= g.dims.Height && g.dims.ColumnInBounds(x, z) {
		return 0, MaxLight
	}
	if !g.dims.InBounds(x, y, z) {
		return 0, 0
	}
	off := g.dims.Index(x, y, z) * VoxelStride
	return g.arena.Voxels[off+fieldLight], g.arena.Voxels[off+fieldSunlight]
}

func (g *Grid) lightByte(i, field int) uint8 {
	return g.arena.Voxels[i*VoxelStride+field]
}

func (g *Grid) setLightByte(i, field int, v uint8) {
	g.arena.Voxels[i*VoxelStride+field] = v
}

// writeVoxel записывает тип и цвет, не трогая свет
func (g *Grid) writeVoxel(i int, t block.Type, r, gr, b uint8) {
	off := i * VoxelStride
	g.arena.Voxels[off+fieldType] = byte(t)
	g.arena.Voxels[off+fieldR] = r
	g.arena.Voxels[off+fieldG] = gr
	g.arena.Voxels[off+fieldB] = b
}
