package world

import (
	"fmt"
	"math"
)

// DefaultChunkSize - размер чанка по умолчанию
const DefaultChunkSize = 16

// MaxChunkSize ограничен тем, что локальные координаты вершин хранятся в байте
const MaxChunkSize = 255

// Dimensions описывает неизменяемые размеры мира в вокселях
type Dimensions struct {
	Width     int `yaml:"width" json:"width"`
	Height    int `yaml:"height" json:"height"`
	Depth     int `yaml:"depth" json:"depth"`
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
}

// Validate проверяет размеры мира.
// Все ошибки оборачивают ErrConfig.
func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 || d.Depth <= 0 {
		return fmt.Errorf("%w: размеры должны быть положительными, получено %dx%dx%d",
			ErrConfig, d.Width, d.Height, d.Depth)
	}
	if d.ChunkSize <= 0 || d.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: размер чанка %d вне диапазона [1,%d]", ErrConfig, d.ChunkSize, MaxChunkSize)
	}
	if d.Width%d.ChunkSize != 0 || d.Height%d.ChunkSize != 0 || d.Depth%d.ChunkSize != 0 {
		return fmt.Errorf("%w: размеры %dx%dx%d не кратны размеру чанка %d",
			ErrConfig, d.Width, d.Height, d.Depth, d.ChunkSize)
	}
	// Индексы вокселей хранятся в int32 (очереди, A*), плюс запас на 6 байт на воксель.
	// Множители проверяются по одному, чтобы произведение не переполнилось.
	const limit = math.MaxInt32 / VoxelStride
	if d.Width > limit/d.Height || d.Width*d.Height > limit/d.Depth {
		return fmt.Errorf("%w: объём %dx%dx%d вокселей не помещается в адресуемый диапазон",
			ErrConfig, d.Width, d.Height, d.Depth)
	}
	return nil
}

// Volume возвращает количество вокселей
func (d Dimensions) Volume() int {
	return d.Width * d.Height * d.Depth
}

// Columns возвращает количество колонок (x, z)
func (d Dimensions) Columns() int {
	return d.Width * d.Depth
}

// ChunkVolume возвращает количество вокселей в одном чанке
func (d Dimensions) ChunkVolume() int {
	return d.ChunkSize * d.ChunkSize * d.ChunkSize
}

// Chunks возвращает количество чанков по каждой оси
func (d Dimensions) Chunks() (cx, cy, cz int) {
	return d.Width / d.ChunkSize, d.Height / d.ChunkSize, d.Depth / d.ChunkSize
}

// InBounds проверяет, лежит ли воксель внутри мира
func (d Dimensions) InBounds(x, y, z int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height && z >= 0 && z < d.Depth
}

// ColumnInBounds проверяет колонку (x, z)
func (d Dimensions) ColumnInBounds(x, z int) bool {
	return x >= 0 && x < d.Width && z >= 0 && z < d.Depth
}

// Index возвращает плоский индекс вокселя: x + y*W + z*W*H
func (d Dimensions) Index(x, y, z int) int {
	return x + d.Width*(y+d.Height*z)
}

// Coords восстанавливает координаты по плоскому индексу
func (d Dimensions) Coords(i int) (x, y, z int) {
	x = i % d.Width
	i /= d.Width
	y = i % d.Height
	z = i / d.Height
	return x, y, z
}

// ChunkCoord - координаты чанка
type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// ChunkInBounds проверяет координаты чанка
func (d Dimensions) ChunkInBounds(c ChunkCoord) bool {
	nx, ny, nz := d.Chunks()
	return c.X >= 0 && c.X < nx && c.Y >= 0 && c.Y < ny && c.Z >= 0 && c.Z < nz
}

// CheckChunk возвращает ErrOutOfBounds, если чанк вне мира
func (d Dimensions) CheckChunk(c ChunkCoord) error {
	if !d.ChunkInBounds(c) {
		nx, ny, nz := d.Chunks()
		return fmt.Errorf("%w: чанк (%d,%d,%d) вне сетки %dx%dx%d", ErrOutOfBounds, c.X, c.Y, c.Z, nx, ny, nz)
	}
	return nil
}

// ChunkOf возвращает чанк, содержащий воксель
func (d Dimensions) ChunkOf(x, y, z int) ChunkCoord {
	return ChunkCoord{X: x / d.ChunkSize, Y: y / d.ChunkSize, Z: z / d.ChunkSize}
}

// ChunkRange - прямоугольный диапазон чанков (включительно)
type ChunkRange struct {
	Min ChunkCoord `json:"min"`
	Max ChunkCoord `json:"max"`
}

// Each обходит все чанки диапазона в фиксированном порядке
func (r ChunkRange) Each(fn func(c ChunkCoord)) {
	for cz := r.Min.Z; cz <= r.Max.Z; cz++ {
		for cy := r.Min.Y; cy <= r.Max.Y; cy++ {
			for cx := r.Min.X; cx <= r.Max.X; cx++ {
				fn(ChunkCoord{X: cx, Y: cy, Z: cz})
			}
		}
	}
}

// Contains проверяет, входит ли чанк в диапазон
func (r ChunkRange) Contains(c ChunkCoord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X &&
		c.Y >= r.Min.Y && c.Y <= r.Max.Y &&
		c.Z >= r.Min.Z && c.Z <= r.Max.Z
}

// chunkRangeFor возвращает чанки, пересекающиеся с боксом вокселей (обрезанным по миру)
func (d Dimensions) chunkRangeFor(b bounds) ChunkRange {
	return ChunkRange{
		Min: d.ChunkOf(b.x0, b.y0, b.z0),
		Max: d.ChunkOf(b.x1, b.y1, b.z1),
	}
}

// bounds - бокс вокселей включительно
type bounds struct {
	x0, y0, z0 int
	x1, y1, z1 int
}

// clip обрезает бокс по границам мира
func (d Dimensions) clip(b bounds) bounds {
	return bounds{
		x0: clampInt(b.x0, 0, d.Width-1), x1: clampInt(b.x1, 0, d.Width-1),
		y0: clampInt(b.y0, 0, d.Height-1), y1: clampInt(b.y1, 0, d.Height-1),
		z0: clampInt(b.z0, 0, d.Depth-1), z1: clampInt(b.z1, 0, d.Depth-1),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
