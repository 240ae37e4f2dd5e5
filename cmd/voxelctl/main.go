package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/engine"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/mesh"
	"github.com/annel0/voxel-engine/internal/navigation"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (default: $VOXEL_CONFIG)")
		command    = flag.String("cmd", "stats", "Command: stats, export, colliders, path, target")
		seed       = flag.Int64("seed", 0, "Override world seed")
		generator  = flag.String("generator", "", "Override generator: "+strings.Join(world.GeneratorNames(), ", "))
		chunk      = flag.String("chunk", "all", "Chunk coordinates cx,cy,cz or 'all'")
		out        = flag.String("out", "chunks", "Output directory for export")
		compress   = flag.Bool("zstd", false, "Compress exported GLB with zstd")
		from       = flag.String("from", "", "Path start floor voxel x,y,z")
		to         = flag.String("to", "", "Path goal floor voxel x,y,z")
		origin     = flag.String("origin", "", "Target search origin x,y,z")
		radius     = flag.Int("radius", 8, "Target search radius")
		height     = flag.Int("height", navigation.DefaultHeight, "Agent height in voxels")
		verbose    = flag.Bool("v", false, "Verbose engine logs")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seed != 0 {
		cfg.Engine.Seed = *seed
	}
	if *generator != "" {
		cfg.Engine.Generator = *generator
	}

	logger := logging.Discard()
	if *verbose {
		logger = logging.GetEngineLogger()
		logger.SetLevels(logging.DEBUG, logging.OFF)
	}

	eng, err := engine.New(cfg.Engine, engine.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	switch *command {
	case "stats":
		err = printJSON(eng.Stats())

	case "export":
		err = exportChunks(eng, *chunk, *out, *compress)

	case "colliders":
		var c world.ChunkCoord
		if c, err = parseChunk(*chunk); err == nil {
			var boxes []world.Box
			if boxes, err = eng.Colliders(c); err == nil {
				err = printJSON(boxes)
			}
		}

	case "path":
		var a, b vec.Vec3
		if a, err = parseVec(*from); err != nil {
			break
		}
		if b, err = parseVec(*to); err != nil {
			break
		}
		path := eng.FindPath(navigation.PathQuery{From: a, To: b, Height: *height})
		if len(path) == 0 {
			log.Fatalf("No path from %v to %v", a, b)
		}
		err = printJSON(path)

	case "target":
		var o vec.Vec3
		if o, err = parseVec(*origin); err != nil {
			break
		}
		wp, ok := eng.FindTarget(navigation.TargetQuery{Origin: o, Radius: *radius, Height: *height})
		if !ok {
			log.Fatalf("No free floor within %d of %v", *radius, o)
		}
		err = printJSON(wp)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", *command, err)
	}
}

// exportChunks пишет GLB для одного чанка или всех непустых
func exportChunks(eng *engine.Engine, which, dir string, compress bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ec := eng.Config()
	opts := mesh.ExportOptions{ChunkSize: ec.ChunkSize, Scale: ec.GetScale(), Ambient: 0.2}

	var coords []world.ChunkCoord
	if which == "all" {
		d := eng.Dimensions()
		cx, cy, cz := d.Chunks()
		world.ChunkRange{Max: world.ChunkCoord{X: cx - 1, Y: cy - 1, Z: cz - 1}}.Each(func(c world.ChunkCoord) {
			coords = append(coords, c)
		})
	} else {
		c, err := parseChunk(which)
		if err != nil {
			return err
		}
		coords = append(coords, c)
	}

	written := 0
	for _, c := range coords {
		m, err := eng.Mesh(c)
		if err != nil {
			return err
		}
		if m.FaceCount() == 0 {
			continue
		}
		name := fmt.Sprintf("chunk_%d_%d_%d.glb", c.X, c.Y, c.Z)
		if compress {
			name += ".zst"
		}
		if err := writeGLB(filepath.Join(dir, name), m, opts, compress); err != nil {
			return fmt.Errorf("chunk %v: %w", c, err)
		}
		written++
	}
	fmt.Printf("Exported %d chunks to %s\n", written, dir)
	return nil
}

func writeGLB(path string, m mesh.Mesh, opts mesh.ExportOptions, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !compress {
		return mesh.EncodeGLB(f, m, opts)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := mesh.EncodeGLB(zw, m, opts); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseInts разбирает "a,b,c"
func parseInts(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseVec(s string) (vec.Vec3, error) {
	v, err := parseInts(s)
	return vec.Vec3{X: v[0], Y: v[1], Z: v[2]}, err
}

func parseChunk(s string) (world.ChunkCoord, error) {
	v, err := parseInts(s)
	return world.ChunkCoord{X: v[0], Y: v[1], Z: v[2]}, err
}
