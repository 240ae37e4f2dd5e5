package world

import (
	"fmt"
	"time"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// DefaultLightStep - затухание света за один шаг распространения
const DefaultLightStep = 16

// Options - параметры создания сетки
type Options struct {
	LightStep int             // затухание за шаг, 1..255
	Generator string          // имя стратегии генерации
	Flat      FlatParams      // параметры стратегии flat
	Blocks    *block.Registry // типы вокселей; nil - только встроенные
	Logger    *logging.Logger // логгер компонента
}

// Grid - воксельный мир: сетка, карта высот и световые поля в одной арене.
// Не потокобезопасен: в каждый момент времени с ним работает один вызывающий.
type Grid struct {
	dims        Dimensions
	arena       *Arena
	blocks      *block.Registry
	lightStep   int
	lightRadius int
	strategy    Strategy
	flat        FlatParams
	seed        int64
	logger      *logging.Logger
}

// NewGrid создаёт мир и выделяет арену. Сетка пуста до первого Generate.
func NewGrid(d Dimensions, opts Options) (*Grid, error) {
	if opts.LightStep == 0 {
		opts.LightStep = DefaultLightStep
	}
	if opts.LightStep < 1 || opts.LightStep > MaxLight {
		return nil, fmt.Errorf("%w: шаг затухания света %d вне диапазона [1,%d]", ErrConfig, opts.LightStep, MaxLight)
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetWorldLogger()
	}
	if opts.Blocks == nil {
		reg, err := block.NewRegistry()
		if err != nil {
			return nil, err
		}
		opts.Blocks = reg
	}

	arena, err := NewArena(d)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		dims:        d,
		arena:       arena,
		blocks:      opts.Blocks,
		lightStep:   opts.LightStep,
		lightRadius: (MaxLight + opts.LightStep - 1) / opts.LightStep,
		flat:        opts.Flat,
		logger:      opts.Logger,
	}

	name := opts.Generator
	if name == "" {
		name = DefaultGenerator
	}
	if err := g.SetGenerator(name); err != nil {
		return nil, err
	}

	g.logger.Info("arena allocated: %dx%dx%d chunk=%d, %.1f MiB",
		d.Width, d.Height, d.Depth, d.ChunkSize, float64(arena.Layout.TotalBytes())/(1<<20))
	return g, nil
}

// Blocks возвращает таблицу типов вокселей этого мира
func (g *Grid) Blocks() *block.Registry {
	return g.blocks
}

// Dimensions возвращает размеры мира
func (g *Grid) Dimensions() Dimensions {
	return g.dims
}

// Arena возвращает арену (для компонентов, работающих со скретчем)
func (g *Grid) Arena() *Arena {
	return g.arena
}

// Seed возвращает сид последней генерации
func (g *Grid) Seed() int64 {
	return g.seed
}

// LightStep возвращает затухание света за шаг
func (g *Grid) LightStep() int {
	return g.lightStep
}

// LightRadius возвращает максимальную дальность распространения света в шагах
func (g *Grid) LightRadius() int {
	return g.lightRadius
}

// Generate полностью перегенерирует мир: сетка, карта высот, свет
func (g *Grid) Generate(seed int64) {
	start := time.Now()
	g.seed = seed

	fill := g.strategy.Prepare(g.dims, seed)
	g.reset()

	// z, x снаружи, y внутри: стратегии с кешем колонки считают шум один раз на колонку
	for z := 0; z < g.dims.Depth; z++ {
		for x := 0; x < g.dims.Width; x++ {
			for y := 0; y < g.dims.Height; y++ {
				v, ok := fill(x, y, z)
				if !ok || v.IsAir() {
					continue
				}
				g.writeVoxel(g.dims.Index(x, y, z), v.Type, v.R, v.G, v.B)
			}
		}
	}

	g.rebuildHeightmap()
	g.relightAll()

	g.logger.Info("generated world: generator=%s seed=%d in %s", g.strategy.Name(), seed, time.Since(start))
}

// reset обнуляет сетку и карту высот
func (g *Grid) reset() {
	clear(g.arena.Voxels)
	for i := range g.arena.Heightmap {
		g.arena.Heightmap[i] = -1
	}
}
