package config

import (
	"fmt"
	"strings"

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
	Avatar AvatarConfig
	Log    LogConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	PublicBaseURL string
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

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type AvatarConfig struct {
	// MatchThreshold is the exclusive upper bound on embedding distance for
	// reusing a cached asset. Below the sweet spot regeneration is wasted,
	// above it visually wrong avatars slip through.
	MatchThreshold float64
	StaticDir      string
	Queue          string // "nats" or "local"
	Workers        int
	QueueSize      int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
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
			Host:          k.String("server.host"),
			Port:          k.Int("server.port"),
			PublicBaseURL: k.String("server.public.base.url"),
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
			APIKey:         k.String("llm.api.key"),
			Model:          k.String("llm.model"),
			EmbeddingModel: k.String("llm.embedding.model"),
		},
		Avatar: AvatarConfig{
			MatchThreshold: k.Float64("avatar.match.threshold"),
			StaticDir:      k.String("avatar.static.dir"),
			Queue:          k.String("avatar.queue"),
			Workers:        k.Int("avatar.workers"),
			QueueSize:      k.Int("avatar.queue.size"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
		CORS: CORSConfig{
			AllowedOrigins: k.Strings("cors.allowed.origins"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "visage"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "visage"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.Avatar.MatchThreshold == 0 {
		cfg.Avatar.MatchThreshold = 1.2
	}
	if cfg.Avatar.StaticDir == "" {
		cfg.Avatar.StaticDir = "./static"
	}
	if cfg.Avatar.Queue == "" {
		cfg.Avatar.Queue = "nats"
	}
	if cfg.Avatar.Workers == 0 {
		cfg.Avatar.Workers = 4
	}
	if cfg.Avatar.QueueSize == 0 {
		cfg.Avatar.QueueSize = 64
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}
