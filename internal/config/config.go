// Package config lê a configuração do processo a partir do ambiente
// (opcionalmente de um arquivo .env).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"cms-maintenance/internal/content"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreMongoDB = "mongodb"
	StoreMemory  = "memory"

	LockStoreMemory = "memory"
	LockStoreRedis  = "redis"

	RateKeyRoute  = "route"
	RateKeyClient = "client"

	StatsNone       = "none"
	StatsMemory     = "memory"
	StatsRedis      = "redis"
	StatsPrometheus = "prometheus"
)

type Config struct {
	ProjectDir string `env:"PROJECT_DIR" envDefault:"."`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`

	Content    ContentConfig
	Server     ServerConfig
	Lock       LockConfig
	RateLimit  RateLimitConfig
	Redis      RedisConfig
	GuardStats GuardStatsConfig
}

type ContentConfig struct {
	// StoreDriver é "mongodb" ou "memory".
	StoreDriver      string        `env:"STORE_DRIVER" envDefault:"mongodb"`
	MongoURI         string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase    string        `env:"MONGODB_DATABASE" envDefault:"cms"`
	MongoCollection  string        `env:"MONGODB_COLLECTION" envDefault:"nodes"`
	MongoTimeout     time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	NamespaceSystem  string        `env:"NAMESPACE_SYSTEM" envDefault:"sys"`
	NamespaceSysLoc  string        `env:"NAMESPACE_SYSTEM_LOCALIZED" envDefault:"sys"`
	NamespaceContent string        `env:"NAMESPACE_CONTENT_LOCALIZED" envDefault:"i18n"`
	StructuresFile   string        `env:"STRUCTURES_FILE" envDefault:"config/structures.yaml"`
	// MemoryFixture é o dump YAML carregado com STORE_DRIVER=memory; as
	// alterações salvas são gravadas de volta nele.
	MemoryFixture string `env:"MEMORY_FIXTURE"`
}

type ServerConfig struct {
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:":8080"`
	MediaDir         string `env:"MEDIA_DIR" envDefault:"public/uploads/media"`
	MediaUpstreamURL string `env:"MEDIA_UPSTREAM_URL"`
	// MaxExecutionTime limita o processamento de uma request; o TTL dos locks
	// é derivado dele.
	MaxExecutionTime time.Duration `env:"MAX_EXECUTION_TIME" envDefault:"60s"`
}

type LockConfig struct {
	Enabled        bool          `env:"LOCK_ENABLED" envDefault:"true"`
	Slots          int           `env:"LOCK_SLOTS" envDefault:"5"`
	Store          string        `env:"LOCK_STORE" envDefault:"memory"`
	AcquireTimeout time.Duration `env:"LOCK_ACQUIRE_TIMEOUT" envDefault:"0s"`
	Prefix         string        `env:"LOCK_PREFIX" envDefault:"guard:lock"`
}

type RateLimitConfig struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	Limit    int           `env:"RATE_LIMIT_LIMIT" envDefault:"1"`
	Interval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`
	Wait     bool          `env:"RATE_LIMIT_WAIT" envDefault:"true"`
	MaxWait  time.Duration `env:"RATE_LIMIT_MAX_WAIT" envDefault:"0s"`

	// Key é "route" (um bucket para a rota) ou "client".
	Key        string        `env:"RATE_LIMIT_KEY" envDefault:"route"`
	KeyHeader  string        `env:"RATE_LIMIT_KEY_HEADER"`
	TrustXFF   bool          `env:"TRUST_XFF" envDefault:"false"`
	RetryAfter time.Duration `env:"RETRY_AFTER" envDefault:"1s"`
	AddHeaders bool          `env:"ADD_RATELIMIT_HEADERS" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type GuardStatsConfig struct {
	// Backend é "none", "memory", "redis" ou "prometheus".
	Backend   string        `env:"GUARD_STATS" envDefault:"prometheus"`
	Prefix    string        `env:"GUARD_STATS_PREFIX" envDefault:"guard:stats"`
	TTL       time.Duration `env:"GUARD_STATS_TTL" envDefault:"24h"`
	Bucket    string        `env:"GUARD_STATS_BUCKET" envDefault:"minute"`
	TrackKeys bool          `env:"GUARD_STATS_TRACK_KEYS" envDefault:"false"`
}

// Load lê os arquivos .env informados (ausentes são ignorados) e depois o
// ambiente. Variáveis já definidas no ambiente têm precedência.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Content.StoreDriver {
	case StoreMongoDB, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongoDB, StoreMemory, c.Content.StoreDriver)
	}
	if c.Content.StoreDriver == StoreMongoDB && strings.TrimSpace(c.Content.MongoURI) == "" {
		return errors.New("MONGODB_URI is required when STORE_DRIVER=mongodb")
	}

	if c.Lock.Slots < 0 {
		return errors.New("LOCK_SLOTS must be >= 0")
	}
	switch c.Lock.Store {
	case LockStoreMemory, LockStoreRedis:
	default:
		return fmt.Errorf("LOCK_STORE must be %q or %q, got %q", LockStoreMemory, LockStoreRedis, c.Lock.Store)
	}

	if c.RateLimit.Limit <= 0 {
		return errors.New("RATE_LIMIT_LIMIT must be > 0")
	}
	if c.RateLimit.Interval <= 0 {
		return errors.New("RATE_LIMIT_INTERVAL must be > 0")
	}
	switch c.RateLimit.Key {
	case RateKeyRoute, RateKeyClient:
	default:
		return fmt.Errorf("RATE_LIMIT_KEY must be %q or %q, got %q", RateKeyRoute, RateKeyClient, c.RateLimit.Key)
	}

	switch c.GuardStats.Backend {
	case StatsNone, StatsMemory, StatsRedis, StatsPrometheus:
	default:
		return fmt.Errorf("GUARD_STATS must be one of none|memory|redis|prometheus, got %q", c.GuardStats.Backend)
	}

	if c.NeedsRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("REDIS_ADDR is required when LOCK_STORE=redis or GUARD_STATS=redis")
	}
	return nil
}

// NeedsRedis indica se algum componente do servidor usa Redis.
func (c *Config) NeedsRedis() bool {
	return c.Lock.Store == LockStoreRedis || c.GuardStats.Backend == StatsRedis
}

func (c *Config) Namespaces() map[string]string {
	return map[string]string{
		content.RoleSystem:           c.Content.NamespaceSystem,
		content.RoleSystemLocalized:  c.Content.NamespaceSysLoc,
		content.RoleContentLocalized: c.Content.NamespaceContent,
	}
}
