package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	Version     string `envconfig:"VERSION" default:"dev"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	SessionSecret string        `envconfig:"SESSION_SECRET" default:""`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	DevMode       bool          `envconfig:"DEV_MODE" default:"false"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:""`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	ImageStore     string `envconfig:"IMAGE_STORE" default:"local"`
	ImageDir       string `envconfig:"IMAGE_DIR" default:"public/customers"`
	MinIOEndpoint  string `envconfig:"MINIO_ENDPOINT" default:""`
	MinIOAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:""`
	MinIOSecretKey string `envconfig:"MINIO_SECRET_KEY" default:""`
	MinIOBucket    string `envconfig:"MINIO_BUCKET" default:"dashboard"`
	MinIOUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinIORegion    string `envconfig:"MINIO_REGION" default:""`
	MinIOPublicURL string `envconfig:"MINIO_PUBLIC_URL" default:""`

	RedisURL     string        `envconfig:"REDIS_URL" default:""`
	ViewCacheTTL time.Duration `envconfig:"VIEW_CACHE_TTL" default:"5m"`
}

// MinSessionSecretLength is the shortest accepted SESSION_SECRET, in bytes.
const MinSessionSecretLength = 32

// ErrMissingSessionSecret is returned by SessionKey when no secret is
// configured outside dev mode.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required unless DEV_MODE is set")

// SessionKey returns the key sessions are signed with. Without SESSION_SECRET
// a random key is generated in dev mode, so sessions end with the process; in
// any other mode it is an error.
func (c *Config) SessionKey() (key string, generated bool, err error) {
	if c.SessionSecret != "" {
		if len(c.SessionSecret) < MinSessionSecretLength {
			return "", false, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
		}
		return c.SessionSecret, false, nil
	}
	if !c.DevMode {
		return "", false, ErrMissingSessionSecret
	}

	b := make([]byte, MinSessionSecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", false, fmt.Errorf("generating session key: %w", err)
	}
	return hex.EncodeToString(b), true, nil
}

// Load reads an optional .env file and then configuration from environment
// variables into a Config struct. Variables already set in the environment
// take precedence over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.ImageStore != "local" && cfg.ImageStore != "minio" {
		return nil, fmt.Errorf("IMAGE_STORE must be \"local\" or \"minio\", got %q", cfg.ImageStore)
	}
	if cfg.ImageStore == "minio" && cfg.MinIOEndpoint == "" {
		return nil, errors.New("MINIO_ENDPOINT is required when IMAGE_STORE is \"minio\"")
	}

	return &cfg, nil
}
