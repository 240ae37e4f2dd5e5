package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/navigation"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// Config корневая структура конфигурации: движок, отладочный HTTP-хост и логи.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig - параметры, фиксируемые при создании движка
type EngineConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Depth     int     `yaml:"depth"`
	ChunkSize int     `yaml:"chunk_size"`
	Seed      int64   `yaml:"seed"`
	Scale     float32 `yaml:"scale"` // единиц мира на воксель, использует только вызывающий
	LightStep int     `yaml:"light_step"`
	Generator string  `yaml:"generator"`

	Flat       world.FlatParams   `yaml:"flat"`
	Navigation navigation.Config  `yaml:"navigation"`
	Blocks     []block.Properties `yaml:"blocks"` // дополнительные типы вокселей
}

// Dimensions возвращает размеры мира
func (e *EngineConfig) Dimensions() world.Dimensions {
	return world.Dimensions{Width: e.Width, Height: e.Height, Depth: e.Depth, ChunkSize: e.ChunkSize}
}

// GetSeed возвращает сид с приоритетом: config -> VOXEL_SEED -> 0
func (e *EngineConfig) GetSeed() int64 {
	if e.Seed != 0 {
		return e.Seed
	}
	if v := os.Getenv("VOXEL_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return seed
		}
	}
	return 0
}

// GetScale возвращает масштаб вокселя, 1 по умолчанию
func (e *EngineConfig) GetScale() float32 {
	if e.Scale > 0 {
		return e.Scale
	}
	return 1
}

// Validate проверяет параметры движка; ошибки оборачивают world.ErrConfig
func (e *EngineConfig) Validate() error {
	if err := e.Dimensions().Validate(); err != nil {
		return err
	}
	if e.LightStep < 0 || e.LightStep > world.MaxLight {
		return fmt.Errorf("%w: light_step %d вне [1,%d]", world.ErrConfig, e.LightStep, world.MaxLight)
	}
	if e.Scale < 0 {
		return fmt.Errorf("%w: scale %v < 0", world.ErrConfig, e.Scale)
	}
	if e.Flat.Layers < 0 || e.Flat.Layers > e.Height {
		return fmt.Errorf("%w: flat.layers %d вне [0,%d]", world.ErrConfig, e.Flat.Layers, e.Height)
	}
	n := e.Navigation
	if n.MaxStepUp < 0 || n.MaxDrop < 0 || n.SearchLimit < 0 {
		return fmt.Errorf("%w: отрицательные ограничения навигации %+v", world.ErrConfig, n)
	}
	return nil
}

// ServerConfig - отладочный HTTP-хост voxeld
type ServerConfig struct {
	HTTPPort     int    `yaml:"http_port"`
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"` // пусто - трассировка выключена
}

// GetHTTPPort возвращает порт REST API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "VOXEL_HTTP_PORT", 8090)
}

// GetServiceName возвращает имя сервиса для трассировки
func (s *ServerConfig) GetServiceName() string {
	return getStringWithEnvFallback(s.ServiceName, "VOXEL_SERVICE_NAME", "voxeld")
}

// GetOTLPEndpoint возвращает адрес OTLP коллектора
func (s *ServerConfig) GetOTLPEndpoint() string {
	return getStringWithEnvFallback(s.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// LoggingConfig - уровни логирования
type LoggingConfig struct {
	Level     string `yaml:"level"`      // консоль
	FileLevel string `yaml:"file_level"` // файл
	Dir       string `yaml:"dir"`        // пусто - без файла
}

// Levels разбирает уровни; неизвестные значения заменяются INFO и DEBUG
func (l *LoggingConfig) Levels() (console, file logging.LogLevel) {
	console, err := logging.ParseLevel(l.Level)
	if err != nil {
		console = logging.INFO
	}
	file, err = logging.ParseLevel(l.FileLevel)
	if err != nil {
		file = logging.DEBUG
	}
	return console, file
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

func getStringWithEnvFallback(configVal, envVar, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// Default возвращает конфигурацию по умолчанию: мир 128x64x128, чанк 16
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Width:     128,
			Height:    64,
			Depth:     128,
			ChunkSize: world.DefaultChunkSize,
			Scale:     1,
			LightStep: world.DefaultLightStep,
			Generator: world.DefaultGenerator,
			Navigation: navigation.Config{
				MaxStepUp: navigation.DefaultMaxStepUp,
				MaxDrop:   navigation.DefaultMaxDrop,
			},
		},
		Logging: LoggingConfig{Level: "INFO", FileLevel: "DEBUG"},
	}
}

// Load читает YAML поверх значений по умолчанию.
// Если path == "", берёт путь из VOXEL_CONFIG; без него возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
