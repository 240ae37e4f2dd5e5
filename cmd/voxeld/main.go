package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxel-engine/internal/api"
	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/engine"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: $VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	console, file := cfg.Logging.Levels()
	if cfg.Logging.Dir != "" {
		l, err := logging.NewFileLogger("voxeld", cfg.Logging.Dir)
		if err != nil {
			log.Fatalf("Ошибка инициализации логирования: %v", err)
		}
		logging.SetDefaultLogger(l)
	}
	logging.Default().SetLevels(console, file)
	logging.GetLoggerManager().SetDefaultLevels(console, file)

	err = run(cfg)
	if err != nil {
		logging.Error("voxeld failed: %v", err)
	}
	logging.CloseDefaultLogger()
	if err != nil {
		os.Exit(1)
	}
}

// run поднимает движок и REST API и блокируется до сигнала остановки.
// Отложенные остановки выполняются до возврата в main.
func run(cfg *config.Config) error {
	logging.Info("Starting voxeld: world %dx%dx%d, chunk=%d, generator=%s",
		cfg.Engine.Width, cfg.Engine.Height, cfg.Engine.Depth, cfg.Engine.ChunkSize, cfg.Engine.Generator)

	// === ТРАССИРОВКА ===
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTelemetry(ctx, cfg.Server.GetServiceName(), cfg.Server.GetOTLPEndpoint())
	if err != nil {
		logging.Warn("Tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	// === ДВИЖОК ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eng, err := engine.New(cfg.Engine, engine.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("ошибка создания движка: %w", err)
	}
	defer eng.Close()

	// === REST API ===
	addr := ":" + strconv.Itoa(cfg.Server.GetHTTPPort())
	server, err := api.NewRestServer(api.Config{
		Addr:        addr,
		ServiceName: cfg.Server.GetServiceName(),
		Engine:      eng,
		Registry:    reg,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания REST API: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logging.Info("voxeld ready: engine=%s", eng.ID())
	logging.Info("   REST API: http://localhost%s/api/stats", addr)
	logging.Info("   Metrics:  http://localhost%s/metrics", addr)

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logging.Error("REST API stopped: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки трассировки: %v", err)
	}
	logging.Info("voxeld stopped")
	return nil
}
