package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/engine"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/world"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *RestServer {
	t.Helper()
	cfg := config.Default().Engine
	cfg.Width, cfg.Height, cfg.Depth, cfg.ChunkSize = 32, 16, 32, 16
	cfg.Generator = world.GeneratorFlat
	cfg.Flat = world.FlatParams{Layers: 4}

	reg := prometheus.NewRegistry()
	e, err := engine.New(cfg, engine.WithLogger(logging.Discard()), engine.WithRegisterer(reg))
	require.NoError(t, err)

	rs, err := NewRestServer(Config{Engine: e, Registry: reg, Logger: logging.Discard()})
	require.NoError(t, err)
	return rs
}

func do(t *testing.T, rs *RestServer, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	resp := GenericResponse{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success, resp.Message)
}

func TestHealth(t *testing.T) {
	rs := newTestServer(t)
	w := do(t, rs, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
}

func TestEditThenReadVoxel(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodPost, "/api/voxels", world.Edit{X: 3, Y: 4, Z: 5, Type: 1, R: 10, G: 20, B: 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var affected world.ChunkRange
	decode(t, w, &affected)
	assert.True(t, affected.Contains(world.ChunkCoord{}))

	w = do(t, rs, http.MethodGet, "/api/voxels?x=3&y=4&z=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v world.Voxel
	decode(t, w, &v)
	assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{v.R, v.G, v.B})

	w = do(t, rs, http.MethodGet, "/api/height?x=3&z=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var h struct{ Height int }
	decode(t, w, &h)
	assert.Equal(t, 4, h.Height)
}

func TestOutOfBoundsIsBadRequest(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodPost, "/api/voxels", world.Edit{X: 99, Type: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, rs, http.MethodGet, "/api/chunks/5/0/0/mesh", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, rs, http.MethodGet, "/api/chunks/a/0/0/colliders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, rs, http.MethodPost, "/api/generate", GenerateRequest{Seed: 1, Generator: "caves"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeshSummaryAndGLB(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodGet, "/api/chunks/1/0/1/mesh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var s MeshSummary
	decode(t, w, &s)
	assert.Equal(t, 256, s.Faces)
	assert.Equal(t, 256*6, s.Indices)

	w = do(t, rs, http.MethodGet, "/api/chunks/1/0/1/mesh?format=glb", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "model/gltf-binary", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("glTF")))
}

func TestColliders(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodGet, "/api/chunks/0/0/0/colliders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var boxes []world.Box
	decode(t, w, &boxes)
	require.Len(t, boxes, 1)
	assert.Equal(t, world.Box{X: 0, Y: 0, Z: 0, Width: 16, Height: 4, Depth: 16}, boxes[0])
}

func TestPathAndTarget(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodPost, "/api/path", map[string]interface{}{
		"from": map[string]int{"x": 0, "y": 3, "z": 0},
		"to":   map[string]int{"x": 0, "y": 3, "z": 5},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var path []world.Waypoint
	decode(t, w, &path)
	assert.Len(t, path, 6)

	w = do(t, rs, http.MethodPost, "/api/path", map[string]interface{}{
		"from":      map[string]int{"x": 0, "y": 3, "z": 0},
		"to":        map[string]int{"x": 0, "y": 3, "z": 5},
		"obstacles": []map[string]int{{"x": 0, "y": 4, "z": 5}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, rs, http.MethodPost, "/api/target", map[string]interface{}{
		"origin": map[string]int{"x": 8, "y": 4, "z": 8},
		"radius": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var wp world.Waypoint
	decode(t, w, &wp)
	assert.Equal(t, [3]int{8, 3, 8}, [3]int{wp.X, wp.Y, wp.Z})
}

func TestStatsAndMetrics(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodPost, "/api/brush", world.Brush{Shape: world.BrushBox, Size: 1, Type: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var br BrushResponse
	decode(t, w, &br)
	assert.Equal(t, 8, br.Written)

	w = do(t, rs, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Engine engine.Stats `json:"engine"`
		Server ProcessStats `json:"server"`
	}
	decode(t, w, &stats)
	assert.Equal(t, uint64(8), stats.Engine.Edits)
	assert.Equal(t, world.GeneratorFlat, stats.Engine.Generator)
	assert.Greater(t, stats.Server.Goroutines, 0)

	w = do(t, rs, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "voxel_operations_total"))
	assert.True(t, strings.Contains(body, "voxeld_http_request_duration_seconds"))
}
