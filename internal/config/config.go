package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	units "github.com/docker/go-units"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type EngineConfig struct {
	// TimeoutMs is the wall-clock budget for one containerized execution.
	TimeoutMs int
	// Memory is the container memory ceiling, e.g. "128m".
	Memory string
	// MemoryBytes is Memory parsed; kept alongside so the raw string can
	// still be logged.
	MemoryBytes int64
	// CPUQuota limits CPU time per 100ms period (100000 = one core).
	CPUQuota int64
	// StagingDir is the shared root for per-submission staging dirs.
	StagingDir string
	// PreferNativeGo tries the host Go toolchain before the container
	// backend for compiled submissions.
	PreferNativeGo bool
	// NativeTimeoutMs is the separate budget for the native Go backend.
	NativeTimeoutMs int
	// ScreeningEnabled turns on pre-execution code screening.
	ScreeningEnabled bool
	// MaxCodeLength caps submission size in bytes when screening is on.
	MaxCodeLength int
	Workers       int
	QueueCapacity int
}

type Config struct {
	Server ServerConfig
	Engine EngineConfig
}

func (c *EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c *EngineConfig) NativeTimeout() time.Duration {
	return time.Duration(c.NativeTimeoutMs) * time.Millisecond
}

// LoadConfig reads configuration from the environment, with a .env file
// as an optional overlay for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		Server: ServerConfig{
			Port:         envString("SERVER_PORT", "8080"),
			ReadTimeout:  envInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: envInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  envInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Engine: EngineConfig{
			TimeoutMs:        envInt("EXECUTION_TIMEOUT_MS", 10000),
			Memory:           envString("EXECUTION_MEMORY_LIMIT", "128m"),
			CPUQuota:         int64(envInt("EXECUTION_CPU_QUOTA", 50000)),
			StagingDir:       envString("EXECUTION_STAGING_DIR", filepath.Join(os.TempDir(), "codequest-staging")),
			PreferNativeGo:   envBool("EXECUTION_PREFER_NATIVE_GO", false),
			NativeTimeoutMs:  envInt("EXECUTION_NATIVE_TIMEOUT_MS", 15000),
			ScreeningEnabled: envBool("EXECUTION_SCREENING_ENABLED", true),
			MaxCodeLength:    envInt("EXECUTION_MAX_CODE_LENGTH", 65536),
			Workers:          envInt("EXECUTION_WORKERS", 5),
			QueueCapacity:    envInt("EXECUTION_QUEUE_CAPACITY", 100),
		},
	}

	memBytes, err := units.RAMInBytes(conf.Engine.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXECUTION_MEMORY_LIMIT %q: %w", conf.Engine.Memory, err)
	}
	conf.Engine.MemoryBytes = memBytes

	if conf.Engine.TimeoutMs <= 0 {
		return nil, fmt.Errorf("EXECUTION_TIMEOUT_MS must be positive, got %d", conf.Engine.TimeoutMs)
	}
	if conf.Engine.Workers <= 0 {
		return nil, fmt.Errorf("EXECUTION_WORKERS must be positive, got %d", conf.Engine.Workers)
	}

	return conf, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
