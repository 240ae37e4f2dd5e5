// Package engine собирает мир, мешер, коллайдеры и навигацию в один синхронный
// движок. Все вызовы выполняются до конца в вызывающей горутине и работают только
// в заранее выделенной арене; параллельные вызовы в один экземпляр не допускаются.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/mesh"
	"github.com/annel0/voxel-engine/internal/navigation"
	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// Option настраивает движок при создании
type Option func(*options)

type options struct {
	logger     *logging.Logger
	registerer prometheus.Registerer
	strategy   world.Strategy
	fn         world.GeneratorFunc
}

// WithLogger задаёт логгер для движка и всех его компонентов
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer регистрирует метрики движка в r
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithStrategy подключает стратегию генерации вместо выбранной по имени
func WithStrategy(s world.Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithGeneratorFunc подключает колбэк генерации вызывающей стороны
func WithGeneratorFunc(fn world.GeneratorFunc) Option {
	return func(o *options) { o.fn = fn }
}

// Engine - фасад воксельного движка
type Engine struct {
	id  uuid.UUID
	cfg config.EngineConfig

	grid       *world.Grid
	mesher     *mesh.Mesher
	extractor  *physics.Extractor
	pathfinder *navigation.Pathfinder
	locator    *navigation.Locator
	brushes    *world.BrushCache

	metrics    *Metrics
	registerer prometheus.Registerer
	logger     *logging.Logger

	edits uint64
}

// New выделяет арену и выполняет первую генерацию. Движок готов к работе,
// когда New вернул управление.
func New(cfg config.EngineConfig, opts ...Option) (*Engine, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.GetEngineLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	blocks, err := block.NewRegistry(cfg.Blocks...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", world.ErrConfig, err)
	}

	grid, err := world.NewGrid(cfg.Dimensions(), world.Options{
		LightStep: cfg.LightStep,
		Generator: cfg.Generator,
		Flat:      cfg.Flat,
		Blocks:    blocks,
		Logger:    o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания мира: %w", err)
	}
	switch {
	case o.fn != nil:
		grid.SetGeneratorFunc(o.fn)
	case o.strategy != nil:
		grid.SetStrategy(o.strategy)
	}

	e := &Engine{
		id:         uuid.New(),
		cfg:        cfg,
		grid:       grid,
		mesher:     mesh.NewMesher(grid),
		extractor:  physics.NewExtractor(grid),
		pathfinder: navigation.NewPathfinder(grid, cfg.Navigation, o.logger),
		locator:    navigation.NewLocator(grid, o.logger),
		brushes:    world.NewBrushCache(),
		registerer: o.registerer,
		logger:     o.logger,
	}

	e.metrics = NewMetrics(e.id.String())
	if e.registerer != nil {
		if err := e.metrics.Register(e.registerer); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрик: %w", err)
		}
	}
	e.metrics.arenaBytes.Set(float64(grid.Arena().Layout.TotalBytes()))

	e.Generate(cfg.GetSeed())
	e.logger.Info("engine %s ready: %dx%dx%d, generator=%s",
		e.id, cfg.Width, cfg.Height, cfg.Depth, grid.Generator())
	return e, nil
}

// Close снимает метрики с регистрации
func (e *Engine) Close() {
	if e.registerer != nil {
		e.metrics.Unregister(e.registerer)
	}
}

// ID возвращает идентификатор экземпляра
func (e *Engine) ID() string {
	return e.id.String()
}

// Config возвращает параметры, с которыми создан движок
func (e *Engine) Config() config.EngineConfig {
	return e.cfg
}

// Dimensions возвращает размеры мира
func (e *Engine) Dimensions() world.Dimensions {
	return e.grid.Dimensions()
}

// Grid даёт прямой доступ к миру
func (e *Engine) Grid() *world.Grid {
	return e.grid
}

// Generate полностью перегенерирует мир текущей стратегией
func (e *Engine) Generate(seed int64) {
	defer e.metrics.observe(opGenerate, time.Now())
	e.grid.Generate(seed)
}

// SetGenerator выбирает встроенную стратегию для следующих Generate
func (e *Engine) SetGenerator(name string) error {
	return e.grid.SetGenerator(name)
}

// Update применяет одну правку и возвращает чанки, требующие перестройки
func (e *Engine) Update(ed world.Edit) (world.ChunkRange, error) {
	defer e.metrics.observe(opUpdate, time.Now())
	r, err := e.grid.Update(ed)
	if err != nil {
		return r, err
	}
	e.edits++
	e.metrics.edited.Inc()
	return r, nil
}

// ApplyBrush применяет кисть с кешем смещений движка.
// Возвращает затронутые чанки и число записанных вокселей.
func (e *Engine) ApplyBrush(br world.Brush) (world.ChunkRange, int, error) {
	defer e.metrics.observe(opBrush, time.Now())
	r, n, err := e.grid.ApplyBrush(e.brushes, br)
	if err != nil {
		return r, 0, err
	}
	e.edits += uint64(n)
	e.metrics.edited.Add(float64(n))
	return r, n, nil
}

// Mesh строит меш чанка. Буферы меша живут в скретче арены до следующего вызова Mesh.
func (e *Engine) Mesh(c world.ChunkCoord) (mesh.Mesh, error) {
	defer e.metrics.observe(opMesh, time.Now())
	m, err := e.mesher.Build(c)
	if err != nil {
		return m, err
	}
	e.metrics.faces.Observe(float64(m.FaceCount()))
	return m, nil
}

// Colliders возвращает боксы коллизий чанка в мировых координатах
func (e *Engine) Colliders(c world.ChunkCoord) ([]world.Box, error) {
	defer e.metrics.observe(opColliders, time.Now())
	return e.extractor.Extract(c)
}

// FindPath ищет путь по полу. Пустой срез - пути нет.
func (e *Engine) FindPath(q navigation.PathQuery) []world.Waypoint {
	defer e.metrics.observe(opPath, time.Now())
	path := e.pathfinder.FindPath(q)
	if len(path) == 0 {
		e.metrics.notFound.WithLabelValues(opPath).Inc()
	}
	return path
}

// FindTarget ищет ближайший свободный пол вокруг точки
func (e *Engine) FindTarget(q navigation.TargetQuery) (world.Waypoint, bool) {
	defer e.metrics.observe(opTarget, time.Now())
	wp, ok := e.locator.FindTarget(q)
	if !ok {
		e.metrics.notFound.WithLabelValues(opTarget).Inc()
	}
	return wp, ok
}

// NewObstacleMap создаёт пустую карту препятствий под размеры мира
func (e *Engine) NewObstacleMap() *navigation.ObstacleMap {
	return navigation.NewObstacleMap(e.grid.Dimensions())
}

// Voxel возвращает воксель по координатам
func (e *Engine) Voxel(x, y, z int) (world.Voxel, error) {
	return e.grid.Voxel(x, y, z)
}

// Height возвращает верх колонки или -1
func (e *Engine) Height(x, z int) int {
	return e.grid.Height(x, z)
}

// Digest возвращает хеш сетки и карты высот
func (e *Engine) Digest() uint64 {
	return e.grid.Digest()
}

// Stats - сводка состояния движка
type Stats struct {
	ID          string           `json:"id"`
	Dimensions  world.Dimensions `json:"dimensions"`
	Generator   string           `json:"generator"`
	Seed        int64            `json:"seed"`
	LightStep   int              `json:"light_step"`
	ArenaBytes  int              `json:"arena_bytes"`
	Chunks      [3]int           `json:"chunks"`
	Edits       uint64           `json:"edits"`
	Brushes     int              `json:"brush_cache_size"`
	BrushHits   int              `json:"brush_cache_hits"`
	BrushMisses int              `json:"brush_cache_misses"`
	Digest      string           `json:"digest"`
}

// Stats собирает сводку; Digest проходит по всей сетке
func (e *Engine) Stats() Stats {
	d := e.grid.Dimensions()
	cx, cy, cz := d.Chunks()
	hits, misses := e.brushes.Stats()
	return Stats{
		ID:          e.id.String(),
		Dimensions:  d,
		Generator:   e.grid.Generator(),
		Seed:        e.grid.Seed(),
		LightStep:   e.grid.LightStep(),
		ArenaBytes:  e.grid.Arena().Layout.TotalBytes(),
		Chunks:      [3]int{cx, cy, cz},
		Edits:       e.edits,
		Brushes:     e.brushes.Len(),
		BrushHits:   hits,
		BrushMisses: misses,
		Digest:      fmt.Sprintf("%016x", e.grid.Digest()),
	}
}
