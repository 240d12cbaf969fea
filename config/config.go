package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Queue  QueueConfig
	// SeedDemo loads the sample organizer, halls and events at startup.
	SeedDemo bool
}

type ServerConfig struct {
	Host string
	Port string
}

type AuthConfig struct {
	BcryptCost int
}

type QueueConfig struct {
	BufferSize int
}

var AppConfig *Config

func LoadConfig() *Config {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	AppConfig = &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Queue: QueueConfig{
			BufferSize: getEnvInt("QUEUE_BUFFER_SIZE", 1024),
		},
		SeedDemo: getEnv("SEED_DEMO", "false") == "true",
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "0",
		},
		Auth: AuthConfig{
			// Minimum cost keeps the auth tests fast.
			BcryptCost: 4,
		},
		Queue: QueueConfig{
			BufferSize: 64,
		},
		SeedDemo: false,
	}
}

func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		// 跟 getEnv 一樣寬鬆：解析不了就用預設值。
		return fallback
	}
	return n
}
