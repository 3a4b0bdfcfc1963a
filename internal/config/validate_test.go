package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8021},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "localmind",
			Password: "secret", Name: "syncai_db", SSLMode: "disable", MaxConns: 10,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:8002/v1",
			Model:       "./Qwen3-VL-32B-Instruct",
			Timeout:     30 * time.Second,
			MaxTokens:   200,
			Temperature: 0.1,
		},
		RAG:   RAGConfig{BaseURL: "http://localhost:8010", Timeout: 2 * time.Minute, CacheTTL: 10 * time.Minute},
		Image: ImageConfig{BaseURL: "http://localhost:8004", Timeout: 5 * time.Minute},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_ServerPortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got: %v", err)
	}
}

func TestValidate_MissingDBUser(t *testing.T) {
	cfg := validConfig()
	cfg.DB.User = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_USER") {
		t.Fatalf("expected DB_USER error, got: %v", err)
	}
}

func TestValidate_RelativeLLMURL(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.BaseURL = "localhost:8002/v1"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_API_URL") {
		t.Fatalf("expected LLM_API_URL error, got: %v", err)
	}
}

func TestValidate_MissingLLMModel(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Model = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_MODEL") {
		t.Fatalf("expected LLM_MODEL error, got: %v", err)
	}
}

func TestValidate_TemperatureOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 3.5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_TEMPERATURE") {
		t.Fatalf("expected LLM_TEMPERATURE error, got: %v", err)
	}
}

func TestValidate_UnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Fatalf("expected LOG_LEVEL error, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DB.User = ""
	cfg.DB.Name = ""
	cfg.LLM.Model = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"DB_USER", "DB_NAME", "LLM_MODEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in error, got: %v", want, err)
		}
	}
}
