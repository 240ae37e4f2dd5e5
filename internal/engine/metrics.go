package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Имена операций в метриках
const (
	opGenerate  = "generate"
	opUpdate    = "update"
	opBrush     = "brush"
	opMesh      = "mesh"
	opColliders = "colliders"
	opPath      = "path"
	opTarget    = "target"
)

// Metrics - Prometheus-метрики одного экземпляра движка.
// Все метрики несут константную метку engine с id экземпляра.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	notFound   *prometheus.CounterVec
	edited     prometheus.Counter
	faces      prometheus.Histogram
	arenaBytes prometheus.Gauge
}

// NewMetrics создаёт метрики, но не регистрирует их
func NewMetrics(engineID string) *Metrics {
	labels := prometheus.Labels{"engine": engineID}
	return &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "voxel",
			Name:        "operations_total",
			Help:        "Количество вызовов операций движка.",
			ConstLabels: labels,
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "voxel",
			Name:        "operation_duration_seconds",
			Help:        "Длительность операций движка.",
			ConstLabels: labels,
			Buckets:     []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"op"}),
		notFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "voxel",
			Name:        "queries_not_found_total",
			Help:        "Запросы пути и цели, не давшие результата.",
			ConstLabels: labels,
		}, []string{"query"}),
		edited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "voxel",
			Name:        "edited_voxels_total",
			Help:        "Записанные правками и кистями воксели.",
			ConstLabels: labels,
		}),
		faces: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "voxel",
			Name:        "mesh_faces",
			Help:        "Количество граней в построенных мешах чанков.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(16, 4, 7),
		}),
		arenaBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "voxel",
			Name:        "arena_bytes",
			Help:        "Размер арены движка в байтах.",
			ConstLabels: labels,
		}),
	}
}

// Collectors возвращает все метрики для регистрации
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.operations, m.duration, m.notFound, m.edited, m.faces, m.arenaBytes}
}

// Register регистрирует метрики в r
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Unregister снимает метрики с регистрации
func (m *Metrics) Unregister(r prometheus.Registerer) {
	for _, c := range m.Collectors() {
		r.Unregister(c)
	}
}

// observe учитывает вызов операции op, начатый в start
func (m *Metrics) observe(op string, start time.Time) {
	m.operations.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
