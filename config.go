package detectkit

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/detectkit/pkg/config"
	"github.com/dmitrymomot/detectkit/pkg/file"
	"github.com/dmitrymomot/detectkit/pkg/mongo"
	"github.com/dmitrymomot/detectkit/pkg/pg"
	"github.com/dmitrymomot/detectkit/pkg/redis"
	"github.com/dmitrymomot/detectkit/pkg/tracing"
)

// Storage backends accepted by Config.Storage.
const (
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config is the complete client configuration. Load it with config.Load, or
// start from DefaultConfig when building it in code. A zero Config is not
// usable: AnonymousLimit 0 allows a single anonymous call.
type Config struct {
	APIURL          string        `env:"DETECT_API_URL" envDefault:"https://atrium-prod-api.optic.xyz"`
	ShareURL        string        `env:"DETECT_SHARE_URL" envDefault:"https://results.aiornot.com"`
	HTTPTimeout     time.Duration `env:"DETECT_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent       string        `env:"DETECT_USER_AGENT" envDefault:"detectkit/1.0"`
	AnonymousLimit  int           `env:"DETECT_ANONYMOUS_LIMIT" envDefault:"5"`
	ChargeOnSuccess bool          `env:"DETECT_CHARGE_ON_SUCCESS" envDefault:"false"`
	Source          string        `env:"DETECT_SOURCE" envDefault:"web"`
	MaxFileSize     int64         `env:"DETECT_MAX_FILE_SIZE" envDefault:"20971520"`

	Storage    string `env:"DETECT_STORAGE" envDefault:"sqlite"`
	SQLitePath string `env:"DETECT_SQLITE_PATH" envDefault:"detectkit.db"`

	Env      string `env:"DETECT_ENV" envDefault:"development"`
	LogLevel string `env:"DETECT_LOG_LEVEL"`

	Redis    redis.Config
	Postgres pg.Config
	Mongo    mongo.Config
	S3       file.S3Config
	Tracing  tracing.Config
}

// DefaultConfig returns Config with every envDefault applied and the process
// environment ignored.
func DefaultConfig() Config {
	var cfg Config
	if err := config.Defaults(&cfg); err != nil {
		panic(fmt.Sprintf("detectkit: invalid config defaults: %v", err))
	}
	return cfg
}
