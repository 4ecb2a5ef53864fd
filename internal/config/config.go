package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=breadit port=5432 sslmode=disable TimeZone=UTC"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"secret_key_change_me"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"jwt_secret_change_me"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	CorsOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// 帖子分数达到该值后写入 redis 热帖缓存
	CacheAfterUpvotes int           `env:"CACHE_AFTER_UPVOTES" envDefault:"1"`
	PaginationResults int           `env:"PAGINATION_RESULTS" envDefault:"2"`
	CommentCacheTTL   time.Duration `env:"COMMENT_CACHE_TTL" envDefault:"30s"`
	HotPostTTL        time.Duration `env:"HOT_POST_TTL" envDefault:"24h"`
	CacheFlushEvery   time.Duration `env:"CACHE_FLUSH_INTERVAL" envDefault:"500ms"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PaginationResults <= 0 {
		return Config{}, fmt.Errorf("PAGINATION_RESULTS must be positive, got %d", cfg.PaginationResults)
	}
	return cfg, nil
}
