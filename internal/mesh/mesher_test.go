package mesh

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block"
)

func newGrid(t *testing.T, d world.Dimensions, opts world.Options) *world.Grid {
	t.Helper()
	opts.Logger = logging.Discard()
	g, err := world.NewGrid(d, opts)
	require.NoError(t, err)
	g.Generate(42)
	return g
}

var cube16 = world.Dimensions{Width: 16, Height: 16, Depth: 16, ChunkSize: 16}

func TestBuild_FlatWorldOnlyTopFaces(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorFlat, Flat: world.FlatParams{Layers: 8}})
	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)

	assert.Equal(t, 16*16, m.FaceCount())
	assert.Equal(t, 16*16*4, m.VertexCount())
	assert.Len(t, m.Indices, 16*16*6)

	for i := 0; i < m.VertexCount(); i++ {
		require.Equal(t, uint8(8), m.Vertex(i).Y, "все вершины на верхней плоскости")
	}

	// обход против часовой стрелки: нормаль треугольника смотрит вверх
	for q := 0; q < len(m.Indices); q += 3 {
		p := func(k int) mgl32.Vec3 {
			v := m.Vertex(int(m.Indices[q+k]))
			return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		n := p(1).Sub(p(0)).Cross(p(2).Sub(p(0)))
		require.Greater(t, n.Y(), float32(0))
	}

	assert.InDelta(t, 8, m.Bounds.Center.X(), 1e-5)
	assert.InDelta(t, 8, m.Bounds.Center.Y(), 1e-5)
	assert.InDelta(t, 8, m.Bounds.Center.Z(), 1e-5)
	assert.InDelta(t, 11.3137, m.Bounds.Radius, 1e-3)
}

func TestBuild_EmptyChunk(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorEmpty})
	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)

	assert.Zero(t, m.VertexCount())
	assert.Empty(t, m.Indices)
	assert.Equal(t, Sphere{}, m.Bounds)
}

func TestBuild_OutOfBounds(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorEmpty})
	_, err := NewMesher(g).Build(world.ChunkCoord{X: 1})
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
	_, err = NewMesher(g).Build(world.ChunkCoord{Y: -1})
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
}

func TestBuild_SingleVoxel(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorEmpty})
	_, err := g.Update(world.Edit{X: 5, Y: 5, Z: 5, Type: block.Solid, R: 200, G: 100, B: 50})
	require.NoError(t, err)

	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)
	assert.Equal(t, 6, m.FaceCount())

	v := m.Vertex(0)
	assert.Equal(t, [3]uint8{200, 100, 50}, [3]uint8{v.R, v.G, v.B})
	assert.Equal(t, uint8(255), v.Sunlight, "верх столба освещён небом")

	assert.InDelta(t, 5.5, m.Bounds.Center.X(), 1e-5)
	assert.InDelta(t, 5.5, m.Bounds.Center.Y(), 1e-5)
	assert.InDelta(t, 0.8660, m.Bounds.Radius, 1e-3)
}

func TestBuild_FloorCulledAgainstWorldEdge(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorEmpty})
	_, err := g.Update(world.Edit{X: 0, Y: 0, Z: 0, Type: block.Solid})
	require.NoError(t, err)

	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)
	assert.Equal(t, 3, m.FaceCount(), "низ, -X и -Z упираются в край мира")
}

func TestBuild_OpacityBoundary(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorEmpty})
	_, err := g.Update(world.Edit{X: 5, Y: 5, Z: 5, Type: block.Solid})
	require.NoError(t, err)
	_, err = g.Update(world.Edit{X: 6, Y: 5, Z: 5, Type: block.Glass})
	require.NoError(t, err)
	_, err = g.Update(world.Edit{X: 7, Y: 5, Z: 5, Type: block.Glass})
	require.NoError(t, err)

	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)
	// камень: 6; стекло: 6 + 6 минус две грани между стёклами
	assert.Equal(t, 16, m.FaceCount())
}

func TestBuild_CullsAcrossChunkBorder(t *testing.T) {
	d := world.Dimensions{Width: 32, Height: 16, Depth: 16, ChunkSize: 16}
	g := newGrid(t, d, world.Options{Generator: world.GeneratorFlat, Flat: world.FlatParams{Layers: 4}})
	mesher := NewMesher(g)

	left, err := mesher.Build(world.ChunkCoord{})
	require.NoError(t, err)
	assert.Equal(t, 256, left.FaceCount())

	right, err := mesher.Build(world.ChunkCoord{X: 1})
	require.NoError(t, err)
	assert.Equal(t, 256, right.FaceCount())
	assert.InDelta(t, 24, right.Bounds.Center.X(), 1e-5)
}

func TestEncodeGLB(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorFlat, Flat: world.FlatParams{Layers: 2}})
	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeGLB(&buf, m, ExportOptions{ChunkSize: 16, Scale: 0.5, Ambient: 0.2}))
	assert.Equal(t, []byte("glTF"), buf.Bytes()[:4])

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&doc))
	require.Len(t, doc.Meshes, 1)
	assert.Equal(t, "chunk_0_0_0", doc.Meshes[0].Name)

	prim := doc.Meshes[0].Primitives[0]
	pos := doc.Accessors[prim.Attributes[gltf.POSITION]]
	assert.Equal(t, m.VertexCount(), int(pos.Count))
}

func TestDocument_SceneAndMaterial(t *testing.T) {
	g := newGrid(t, cube16, world.Options{Generator: world.GeneratorFlat, Flat: world.FlatParams{Layers: 2}})
	m, err := NewMesher(g).Build(world.ChunkCoord{})
	require.NoError(t, err)

	doc, err := Document(m, ExportOptions{ChunkSize: 16})
	require.NoError(t, err)
	require.Len(t, doc.Scenes, 1)
	assert.Equal(t, []int{0}, doc.Scenes[0].Nodes)
	require.Len(t, doc.Materials, 1)
	assert.Equal(t, &[4]float64{1, 1, 1, 1}, doc.Materials[0].PBRMetallicRoughness.BaseColorFactor)

	prim := doc.Meshes[0].Primitives[0]
	require.NotNil(t, prim.Indices)
	assert.Equal(t, len(m.Indices), int(doc.Accessors[*prim.Indices].Count))
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.COLOR_0} {
		_, ok := prim.Attributes[attr]
		assert.True(t, ok, attr)
	}
}

func TestDocument_EmptyMesh(t *testing.T) {
	_, err := Document(Mesh{}, ExportOptions{ChunkSize: 16})
	assert.Error(t, err)
}
