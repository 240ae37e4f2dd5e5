package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-engine/internal/engine"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/mesh"
	"github.com/annel0/voxel-engine/internal/middleware"
	"github.com/annel0/voxel-engine/internal/navigation"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

// RestServer - отладочный REST API над одним движком.
// Движок не потокобезопасен, поэтому все обращения к нему идут под mu.
type RestServer struct {
	router  *gin.Engine
	http    *http.Server
	mu      sync.Mutex
	engine  *engine.Engine
	export  mesh.ExportOptions
	metrics *ServerMetrics
	tracer  trace.Tracer
	logger  *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Addr        string               // адрес для запуска сервера, ":8090"
	ServiceName string               // имя сервиса в метриках и трассировке
	Engine      *engine.Engine       // обслуживаемый движок
	Registry    *prometheus.Registry // nil - дефолтный регистр
	Logger      *logging.Logger      // nil - логгер компонента API
	Ambient     float32              // минимальная яркость в GLB-экспорте
}

// NewRestServer создает новый REST API сервер
func NewRestServer(cfg Config) (*RestServer, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "voxeld"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetAPILogger()
	}
	if cfg.Ambient == 0 {
		cfg.Ambient = 0.2
	}

	var (
		reg    prometheus.Registerer = prometheus.DefaultRegisterer
		gather prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if cfg.Registry != nil {
		reg, gather = cfg.Registry, cfg.Registry
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.NewRequestLogger(cfg.Logger).Handler())

	promMw, err := middleware.NewPrometheusMiddleware("voxeld", reg)
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации HTTP-метрик: %w", err)
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gather)

	ec := cfg.Engine.Config()
	rs := &RestServer{
		router: router,
		engine: cfg.Engine,
		export: mesh.ExportOptions{
			ChunkSize: ec.ChunkSize,
			Scale:     ec.GetScale(),
			Ambient:   cfg.Ambient,
		},
		metrics: NewServerMetrics(),
		tracer:  otel.Tracer(cfg.ServiceName),
		logger:  cfg.Logger,
	}
	rs.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.POST("/generate", rs.handleGenerate)
		api.GET("/voxels", rs.handleGetVoxel)
		api.POST("/voxels", rs.handleEdit)
		api.POST("/brush", rs.handleBrush)
		api.GET("/height", rs.handleHeight)
		api.GET("/chunks/:cx/:cy/:cz/mesh", rs.handleMesh)
		api.GET("/chunks/:cx/:cy/:cz/colliders", rs.handleColliders)
		api.POST("/path", rs.handlePath)
		api.POST("/target", rs.handleTarget)
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает HTTP сервер и блокируется до его остановки
func (rs *RestServer) Start() error {
	rs.logger.Info("REST API listening on %s", rs.http.Addr)
	if err := rs.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает HTTP сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	return rs.http.Shutdown(ctx)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// GenerateRequest - запрос перегенерации мира
type GenerateRequest struct {
	Seed      int64  `json:"seed"`
	Generator string `json:"generator"` // пусто - текущая стратегия
}

// BrushResponse - результат кисти
type BrushResponse struct {
	Affected world.ChunkRange `json:"affected"`
	Written  int              `json:"written"`
}

// MeshSummary - сводка меша чанка без буферов
type MeshSummary struct {
	Chunk    world.ChunkCoord `json:"chunk"`
	Faces    int              `json:"faces"`
	Vertices int              `json:"vertices"`
	Indices  int              `json:"indices"`
	Center   [3]float32       `json:"center"`
	Radius   float32          `json:"radius"`
}

// PathRequest - запрос пути. Obstacles - занятые воксели.
type PathRequest struct {
	From      vec.Vec3   `json:"from"`
	To        vec.Vec3   `json:"to"`
	Height    int        `json:"height"`
	Obstacles []vec.Vec3 `json:"obstacles"`
}

// TargetRequest - запрос точки назначения
type TargetRequest struct {
	Origin    vec.Vec3   `json:"origin"`
	Radius    int        `json:"radius"`
	Height    int        `json:"height"`
	Obstacles []vec.Vec3 `json:"obstacles"`
}

// withEngine выполняет fn под блокировкой движка внутри span name
func (rs *RestServer) withEngine(c *gin.Context, name string, fn func(e *engine.Engine), attrs ...attribute.KeyValue) {
	_, span := rs.tracer.Start(c.Request.Context(), name, trace.WithAttributes(attrs...))
	defer span.End()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	fn(rs.engine)
}

// fail пишет ошибку движка с подходящим статусом
func (rs *RestServer) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, world.ErrOutOfBounds),
		errors.Is(err, world.ErrConfig),
		errors.Is(err, world.ErrUnknownGenerator):
		status = http.StatusBadRequest
	default:
		rs.logger.Error("request %s failed: %v", c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: msg})
}

// obstacleMap собирает карту препятствий запроса; вызывать под mu
func obstacleMap(e *engine.Engine, pts []vec.Vec3) *navigation.ObstacleMap {
	if len(pts) == 0 {
		return nil
	}
	m := e.NewObstacleMap()
	for _, p := range pts {
		m.SetPoint(p)
	}
	return m
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"engine":    rs.engine.ID(),
		"timestamp": time.Now().Unix(),
	})
}

// handleStats возвращает статистику движка и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	var st engine.Stats
	rs.withEngine(c, "engine.stats", func(e *engine.Engine) {
		st = e.Stats()
	})
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data: gin.H{
			"engine": st,
			"server": rs.metrics.Snapshot(),
		},
	})
}

func (rs *RestServer) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var (
		st  engine.Stats
		err error
	)
	rs.withEngine(c, "engine.generate", func(e *engine.Engine) {
		if req.Generator != "" {
			if err = e.SetGenerator(req.Generator); err != nil {
				return
			}
		}
		e.Generate(req.Seed)
		st = e.Stats()
	}, attribute.Int64("seed", req.Seed), attribute.String("generator", req.Generator))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: st})
}

func (rs *RestServer) handleGetVoxel(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	z, errZ := strconv.Atoi(c.Query("z"))
	if errX != nil || errY != nil || errZ != nil {
		badRequest(c, "x, y, z обязательны")
		return
	}

	var (
		v   world.Voxel
		err error
	)
	rs.withEngine(c, "engine.voxel", func(e *engine.Engine) {
		v, err = e.Voxel(x, y, z)
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: v})
}

func (rs *RestServer) handleEdit(c *gin.Context) {
	var ed world.Edit
	if err := c.ShouldBindJSON(&ed); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var (
		affected world.ChunkRange
		err      error
	)
	rs.withEngine(c, "engine.update", func(e *engine.Engine) {
		affected, err = e.Update(ed)
	}, attribute.Int("x", ed.X), attribute.Int("y", ed.Y), attribute.Int("z", ed.Z))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: affected})
}

func (rs *RestServer) handleBrush(c *gin.Context) {
	var br world.Brush
	if err := c.ShouldBindJSON(&br); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var (
		resp BrushResponse
		err  error
	)
	rs.withEngine(c, "engine.brush", func(e *engine.Engine) {
		resp.Affected, resp.Written, err = e.ApplyBrush(br)
	}, attribute.String("shape", string(br.Shape)), attribute.Int("size", br.Size))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: resp})
}

func (rs *RestServer) handleHeight(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	z, errZ := strconv.Atoi(c.Query("z"))
	if errX != nil || errZ != nil {
		badRequest(c, "x, z обязательны")
		return
	}
	var h int
	rs.withEngine(c, "engine.height", func(e *engine.Engine) {
		h = e.Height(x, z)
	})
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: gin.H{"x": x, "z": z, "height": h}})
}

// chunkParam разбирает :cx/:cy/:cz
func chunkParam(c *gin.Context) (world.ChunkCoord, bool) {
	var vals [3]int
	for i, name := range [3]string{"cx", "cy", "cz"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return world.ChunkCoord{}, false
		}
		vals[i] = v
	}
	return world.ChunkCoord{X: vals[0], Y: vals[1], Z: vals[2]}, true
}

// handleMesh отдаёт сводку меша или GLB при ?format=glb
func (rs *RestServer) handleMesh(c *gin.Context) {
	cc, ok := chunkParam(c)
	if !ok {
		badRequest(c, "Неверные координаты чанка")
		return
	}
	glb := c.Query("format") == "glb"

	var (
		summary MeshSummary
		buf     bytes.Buffer
		empty   bool
		err     error
	)
	rs.withEngine(c, "engine.mesh", func(e *engine.Engine) {
		var m mesh.Mesh
		if m, err = e.Mesh(cc); err != nil {
			return
		}
		summary = MeshSummary{
			Chunk:    cc,
			Faces:    m.FaceCount(),
			Vertices: m.VertexCount(),
			Indices:  len(m.Indices),
			Center:   m.Bounds.Center,
			Radius:   m.Bounds.Radius,
		}
		// буферы меша живут в скретче арены, кодируем до снятия блокировки
		if glb && m.FaceCount() > 0 {
			err = mesh.EncodeGLB(&buf, m, rs.export)
		}
		empty = m.FaceCount() == 0
	}, attribute.Int("cx", cc.X), attribute.Int("cy", cc.Y), attribute.Int("cz", cc.Z))
	if err != nil {
		rs.fail(c, err)
		return
	}

	if !glb {
		c.JSON(http.StatusOK, GenericResponse{Success: true, Data: summary})
		return
	}
	if empty {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=chunk_%d_%d_%d.glb", cc.X, cc.Y, cc.Z))
	c.Data(http.StatusOK, "model/gltf-binary", buf.Bytes())
}

func (rs *RestServer) handleColliders(c *gin.Context) {
	cc, ok := chunkParam(c)
	if !ok {
		badRequest(c, "Неверные координаты чанка")
		return
	}

	var (
		boxes []world.Box
		err   error
	)
	rs.withEngine(c, "engine.colliders", func(e *engine.Engine) {
		var scratch []world.Box
		if scratch, err = e.Colliders(cc); err == nil {
			boxes = append([]world.Box{}, scratch...)
		}
	}, attribute.Int("cx", cc.X), attribute.Int("cy", cc.Y), attribute.Int("cz", cc.Z))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: boxes})
}

func (rs *RestServer) handlePath(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var path []world.Waypoint
	rs.withEngine(c, "engine.path", func(e *engine.Engine) {
		found := e.FindPath(navigation.PathQuery{
			From:      req.From,
			To:        req.To,
			Height:    req.Height,
			Obstacles: obstacleMap(e, req.Obstacles),
		})
		path = append([]world.Waypoint{}, found...)
	}, attribute.Int("obstacles", len(req.Obstacles)))

	if len(path) == 0 {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Путь не найден"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: path})
}

func (rs *RestServer) handleTarget(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var (
		wp    world.Waypoint
		found bool
	)
	rs.withEngine(c, "engine.target", func(e *engine.Engine) {
		wp, found = e.FindTarget(navigation.TargetQuery{
			Origin:    req.Origin,
			Radius:    req.Radius,
			Height:    req.Height,
			Obstacles: obstacleMap(e, req.Obstacles),
		})
	}, attribute.Int("radius", req.Radius))

	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Цель не найдена"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: wp})
}
