// Package mesh строит геометрию чанков: меш с отсечением скрытых граней и
// ограничивающую сферу для отсечения по пирамиде видимости.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// face - одна из шести граней вокселя
type face struct {
	normal  [3]int
	corners [4][3]uint8 // против часовой стрелки, если смотреть снаружи
}

// Порядок граней: +X, -X, +Y, -Y, +Z, -Z
var faces = [6]face{
	{[3]int{1, 0, 0}, [4][3]uint8{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{[3]int{-1, 0, 0}, [4][3]uint8{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{[3]int{0, 1, 0}, [4][3]uint8{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{[3]int{0, -1, 0}, [4][3]uint8{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{[3]int{0, 0, 1}, [4][3]uint8{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{[3]int{0, 0, -1}, [4][3]uint8{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// Sphere - ограничивающая сфера в вокселях мира
type Sphere struct {
	Center mgl32.Vec3 `json:"center"`
	Radius float32    `json:"radius"`
}

// Vertex - распакованная вершина меша
type Vertex struct {
	X, Y, Z  uint8 // позиция внутри чанка, 0..chunkSize
	R, G, B  uint8 // цвет вокселя-владельца
	Light    uint8
	Sunlight uint8
}

// Mesh - результат Build. Vertices и Indices указывают в скретч арены
// и действительны до следующего вызова Build.
type Mesh struct {
	Chunk    world.ChunkCoord
	Bounds   Sphere
	Vertices []byte   // по world.MeshVertexStride байт на вершину
	Indices  []uint32 // по два треугольника на грань
}

// VertexCount возвращает количество вершин
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / world.MeshVertexStride
}

// FaceCount возвращает количество граней (квадов)
func (m Mesh) FaceCount() int {
	return len(m.Indices) / 6
}

// Vertex распаковывает i-ю вершину
func (m Mesh) Vertex(i int) Vertex {
	v := m.Vertices[i*world.MeshVertexStride : (i+1)*world.MeshVertexStride]
	return Vertex{X: v[0], Y: v[1], Z: v[2], R: v[3], G: v[4], B: v[5], Light: v[6], Sunlight: v[7]}
}

// Origin возвращает мировые координаты угла чанка
func (m Mesh) Origin(chunkSize int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(m.Chunk.X * chunkSize),
		float32(m.Chunk.Y * chunkSize),
		float32(m.Chunk.Z * chunkSize),
	}
}

// Mesher строит меши чанков поверх сетки мира
type Mesher struct {
	grid   *world.Grid
	blocks *block.Registry
}

// NewMesher создаёт построитель мешей
func NewMesher(g *world.Grid) *Mesher {
	return &Mesher{grid: g, blocks: g.Blocks()}
}

// neighborVisible решает, видна ли грань вокселя с прозрачностью opaque
// со стороны соседа (x, y, z). Выше мира - воздух, снизу и по бокам - закрыто.
func (m *Mesher) neighborVisible(opaque bool, x, y, z int) bool {
	d := m.grid.Dimensions()
	if y >= d.Height {
		return true
	}
	if !d.InBounds(x, y, z) {
		return false
	}
	t := m.grid.TypeAt(x, y, z)
	if t == block.Air {
		return true
	}
	return m.blocks.IsOpaque(t) != opaque
}

// Build строит меш чанка c. Чанк вне мира - world.ErrOutOfBounds.
func (m *Mesher) Build(c world.ChunkCoord) (Mesh, error) {
	d := m.grid.Dimensions()
	if err := d.CheckChunk(c); err != nil {
		return Mesh{}, err
	}
	arena := m.grid.Arena()
	verts := arena.MeshVertices[:0]
	idx := arena.MeshIndices[:0]

	cs := d.ChunkSize
	ox, oy, oz := c.X*cs, c.Y*cs, c.Z*cs

	for lz := 0; lz < cs; lz++ {
		for ly := 0; ly < cs; ly++ {
			for lx := 0; lx < cs; lx++ {
				x, y, z := ox+lx, oy+ly, oz+lz
				i := d.Index(x, y, z)
				t := m.grid.TypeAtIndex(i)
				if t == block.Air {
					continue
				}
				opaque := m.blocks.IsOpaque(t)
				v := m.grid.VoxelAt(i)

				for _, f := range faces {
					if !m.neighborVisible(opaque, x+f.normal[0], y+f.normal[1], z+f.normal[2]) {
						continue
					}
					base := uint32(len(verts) / world.MeshVertexStride)
					for _, corner := range f.corners {
						verts = append(verts,
							uint8(lx)+corner[0], uint8(ly)+corner[1], uint8(lz)+corner[2],
							v.R, v.G, v.B, v.Light, v.Sunlight)
					}
					idx = append(idx, base, base+1, base+2, base, base+2, base+3)
				}
			}
		}
	}

	out := Mesh{Chunk: c, Vertices: verts, Indices: idx}
	out.Bounds = bounds(out, cs)
	return out, nil
}

// bounds считает сферу, описанную вокруг AABB вершин, в координатах мира
func bounds(m Mesh, chunkSize int) Sphere {
	n := m.VertexCount()
	if n == 0 {
		return Sphere{}
	}
	lo := mgl32.Vec3{255, 255, 255}
	hi := mgl32.Vec3{}
	for i := 0; i < n; i++ {
		v := m.Vertex(i)
		p := mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	return Sphere{
		Center: center.Add(m.Origin(chunkSize)),
		Radius: hi.Sub(center).Len(),
	}
}
