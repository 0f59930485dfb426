package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort        int
	CORSAllowedOrigin string

	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string

	RedisAddr     string
	RedisPassword string

	// Параметры симуляции. В тестах и при локальной отладке их удобно
	// ужимать до миллисекунд.
	SimulationStartDelay    time.Duration
	SimulationTickEvery     time.Duration
	SimulationFrameDelay    time.Duration
	SimulationMaxFrameTicks int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load() // отсутствие .env не считаем фатальным

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		ServerPort:        port,
		CORSAllowedOrigin: envOrDefault("CORS_ALLOWED_ORIGIN", "*"),

		Neo4jURI:      envOrDefault("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUsername: envOrDefault("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: envOrDefault("NEO4J_PASSWORD", "password"),
		Neo4jDatabase: envOrDefault("NEO4J_DATABASE", "neo4j"),

		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	cfg.SimulationStartDelay, err = durationEnv("SIMULATION_START_DELAY", 3*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SimulationTickEvery, err = durationEnv("SIMULATION_TICK_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SimulationFrameDelay, err = durationEnv("SIMULATION_FRAME_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}

	ticksStr := envOrDefault("SIMULATION_MAX_FRAME_TICKS", "500")
	cfg.SimulationMaxFrameTicks, err = strconv.Atoi(ticksStr)
	if err != nil || cfg.SimulationMaxFrameTicks <= 0 {
		return nil, fmt.Errorf("SIMULATION_MAX_FRAME_TICKS must be a positive integer, got %q", ticksStr)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
