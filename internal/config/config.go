package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	NATS   NATSConfig
	LLM    LLMConfig
	RAG    RAGConfig
	Image  ImageConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL string
}

// LLMConfig points at the OpenAI-compatible chat-completion endpoint used
// for memory extraction.
type LLMConfig struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type RAGConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type ImageConfig struct {
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		LLM: LLMConfig{
			BaseURL:     k.String("llm.api.url"),
			Model:       k.String("llm.model"),
			MaxTokens:   k.Int("llm.max.tokens"),
			Temperature: k.Float64("llm.temperature"),
		},
		RAG: RAGConfig{
			BaseURL: k.String("rag.api.url"),
		},
		Image: ImageConfig{
			BaseURL: k.String("image.api.url"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8021
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "localmind"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "syncai_db"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:8002/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "./Qwen3-VL-32B-Instruct"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 200
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.RAG.BaseURL == "" {
		cfg.RAG.BaseURL = "http://localhost:8010"
	}
	if cfg.Image.BaseURL == "" {
		cfg.Image.BaseURL = "http://localhost:8004"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	llmTimeoutStr := k.String("llm.timeout")
	if llmTimeoutStr == "" {
		llmTimeoutStr = "30s"
	}
	cfg.LLM.Timeout, err = time.ParseDuration(llmTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing llm timeout: %w", err)
	}

	ragTimeoutStr := k.String("rag.timeout")
	if ragTimeoutStr == "" {
		ragTimeoutStr = "120s"
	}
	cfg.RAG.Timeout, err = time.ParseDuration(ragTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing rag timeout: %w", err)
	}

	ragTTLStr := k.String("rag.cache.ttl")
	if ragTTLStr == "" {
		ragTTLStr = "10m"
	}
	cfg.RAG.CacheTTL, err = time.ParseDuration(ragTTLStr)
	if err != nil {
		return nil, fmt.Errorf("parsing rag cache ttl: %w", err)
	}

	imageTimeoutStr := k.String("image.timeout")
	if imageTimeoutStr == "" {
		imageTimeoutStr = "300s"
	}
	cfg.Image.Timeout, err = time.ParseDuration(imageTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing image timeout: %w", err)
	}

	return cfg, nil
}
