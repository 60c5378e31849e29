package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Tokens    TokensConfig
	Stats     StatsConfig
	Topics    TopicsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
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

// NATSConfig is optional; an empty URL disables event publishing and the
// feedback consumer.
type NATSConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig limits auth attempts per client IP and submissions per user.
type RateLimitConfig struct {
	AuthMaxRequests   int
	AuthWindowSec     int
	SubmitMaxRequests int
	SubmitWindowSec   int
}

// TokensConfig holds the writing-token pool sizes. Resets overwrite the pools
// with these limits; they never accumulate.
type TokensConfig struct {
	DailyShortLimit int
	WeeklyLongLimit int
	GoldenKeyAward  int
	Timezone        string
}

// Location resolves Timezone, falling back to UTC on an unknown zone name.
func (c TokensConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type StatsConfig struct {
	TrendThreshold     float64
	CriterionThreshold float64
}

type TopicsConfig struct {
	CacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// .env is optional
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

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
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
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
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		RateLimit: RateLimitConfig{
			AuthMaxRequests:   k.Int("ratelimit.auth.max.requests"),
			AuthWindowSec:     k.Int("ratelimit.auth.window.sec"),
			SubmitMaxRequests: k.Int("ratelimit.submit.max.requests"),
			SubmitWindowSec:   k.Int("ratelimit.submit.window.sec"),
		},
		Tokens: TokensConfig{
			DailyShortLimit: k.Int("tokens.daily.short.limit"),
			WeeklyLongLimit: k.Int("tokens.weekly.long.limit"),
			GoldenKeyAward:  k.Int("tokens.golden.key.award"),
			Timezone:        k.String("tokens.timezone"),
		},
		Stats: StatsConfig{
			TrendThreshold:     k.Float64("stats.trend.threshold"),
			CriterionThreshold: k.Float64("stats.criterion.threshold"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	applyDefaults(cfg)

	accessExpStr := k.String("jwt.access.expiry")
	if accessExpStr == "" {
		accessExpStr = "15m"
	}
	cfg.JWT.AccessExpiry, err = time.ParseDuration(accessExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt access expiry: %w", err)
	}

	refreshExpStr := k.String("jwt.refresh.expiry")
	if refreshExpStr == "" {
		refreshExpStr = "168h"
	}
	cfg.JWT.RefreshExpiry, err = time.ParseDuration(refreshExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt refresh expiry: %w", err)
	}

	ttlStr := k.String("topics.cache.ttl")
	if ttlStr == "" {
		ttlStr = "26h"
	}
	cfg.Topics.CacheTTL, err = time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("parsing topics cache ttl: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "dailyink"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "dailyink"
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
	if cfg.RateLimit.AuthMaxRequests == 0 {
		cfg.RateLimit.AuthMaxRequests = 10
	}
	if cfg.RateLimit.AuthWindowSec == 0 {
		cfg.RateLimit.AuthWindowSec = 60
	}
	if cfg.RateLimit.SubmitMaxRequests == 0 {
		cfg.RateLimit.SubmitMaxRequests = 30
	}
	if cfg.RateLimit.SubmitWindowSec == 0 {
		cfg.RateLimit.SubmitWindowSec = 60
	}
	if cfg.Tokens.DailyShortLimit == 0 {
		cfg.Tokens.DailyShortLimit = 1
	}
	if cfg.Tokens.WeeklyLongLimit == 0 {
		cfg.Tokens.WeeklyLongLimit = 1
	}
	if cfg.Tokens.GoldenKeyAward == 0 {
		cfg.Tokens.GoldenKeyAward = 1
	}
	if cfg.Tokens.Timezone == "" {
		cfg.Tokens.Timezone = "UTC"
	}
	if cfg.Stats.TrendThreshold == 0 {
		cfg.Stats.TrendThreshold = 5
	}
	if cfg.Stats.CriterionThreshold == 0 {
		cfg.Stats.CriterionThreshold = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
