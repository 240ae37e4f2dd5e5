package mesh

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportOptions - параметры выгрузки в glTF
type ExportOptions struct {
	ChunkSize int     // размер чанка мира
	Scale     float32 // единиц мира на воксель; 0 - 1
	Ambient   float32 // минимальная яркость вершины, 0..1
}

// shade смешивает цвет вершины с освещённостью
func shade(v Vertex, ambient float32) [4]float32 {
	lit := float32(max(v.Light, v.Sunlight)) / 255
	k := ambient + (1-ambient)*lit
	return [4]float32{
		float32(v.R) / 255 * k,
		float32(v.G) / 255 * k,
		float32(v.B) / 255 * k,
		1,
	}
}

// Document собирает glTF документ из меша чанка: позиции в мировых
// координатах, плоские нормали, цвета вершин с учётом света.
func Document(m Mesh, opts ExportOptions) (*gltf.Document, error) {
	if m.VertexCount() == 0 {
		return nil, fmt.Errorf("чанк %v не содержит граней", m.Chunk)
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}

	n := m.VertexCount()
	origin := m.Origin(opts.ChunkSize)
	positions := make([][3]float32, n)
	colors := make([][4]float32, n)
	for i := 0; i < n; i++ {
		v := m.Vertex(i)
		p := origin.Add(mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}).Mul(opts.Scale)
		positions[i] = p
		colors[i] = shade(v, opts.Ambient)
	}

	indices := make([]uint32, len(m.Indices))
	copy(indices, m.Indices)

	// у каждой грани свои 4 вершины, поэтому нормали плоские
	normals := make([][3]float32, n)
	for i := 0; i < len(indices); i += 3 {
		p0 := mgl32.Vec3(positions[indices[i]])
		p1 := mgl32.Vec3(positions[indices[i+1]])
		p2 := mgl32.Vec3(positions[indices[i+2]])
		nrm := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		normals[indices[i]] = nrm
		normals[indices[i+1]] = nrm
		normals[indices[i+2]] = nrm
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxel-engine"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	doc.Materials = []*gltf.Material{{
		Name:      "voxel",
		AlphaMode: gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}}
	name := fmt.Sprintf("chunk_%d_%d_%d", m.Chunk.X, m.Chunk.Y, m.Chunk.Z)
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// EncodeGLB пишет меш чанка в w в бинарном формате glTF
func EncodeGLB(w io.Writer, m Mesh, opts ExportOptions) error {
	doc, err := Document(m, opts)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("кодирование glb: %w", err)
	}
	return nil
}
