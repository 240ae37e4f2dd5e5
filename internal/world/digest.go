package world

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest - xxhash64 сетки и карты высот. Два мира с одинаковыми
// размерами, стратегией и сидом дают одинаковый дайджест.
func (g *Grid) Digest() uint64 {
	d := xxhash.New()
	_, _ = d.Write(g.arena.Voxels)

	var buf [4]byte
	for _, h := range g.arena.Heightmap {
		binary.LittleEndian.PutUint32(buf[:], uint32(h))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// ChunkDigest - xxhash64 вокселей одного чанка (для проверки, изменился ли он)
func (g *Grid) ChunkDigest(c ChunkCoord) (uint64, error) {
	if err := g.dims.CheckChunk(c); err != nil {
		return 0, err
	}
	d := xxhash.New()
	cs := g.dims.ChunkSize
	x0 := c.X * cs
	for z := c.Z * cs; z < (c.Z+1)*cs; z++ {
		for y := c.Y * cs; y < (c.Y+1)*cs; y++ {
			// строка по x лежит в сетке подряд
			start := g.dims.Index(x0, y, z) * VoxelStride
			_, _ = d.Write(g.arena.Voxels[start : start+cs*VoxelStride])
		}
	}
	return d.Sum64(), nil
}
