package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Mail         MailConfig
	Toast        ToastConfig
	FeatureFlags FeatureFlagsConfig
}

// Load reads the API configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MigrateEnv is what the migration tool needs.
type MigrateEnv struct {
	LogLevel string `envconfig:"MEDDOT_LOG_LEVEL" default:"info"`
	DB       DBConfig
}

func LoadMigrate() (*MigrateEnv, error) {
	var cfg MigrateEnv
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing migrate config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FixupEnv is the reduced configuration used by the admin fix-up tool.
type FixupEnv struct {
	LogLevel string `envconfig:"MEDDOT_LOG_LEVEL" default:"info"`
	DB       DBConfig
	// Redis is optional and only coordinates concurrent runs.
	Redis RedisConfig
	Fixup FixupConfig
}

// LoadFixup reads only what the fix-up tool needs; the API sections stay untouched.
func LoadFixup() (*FixupEnv, error) {
	var cfg FixupEnv
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing fixup config: %w", err)
	}
	if strings.TrimSpace(cfg.Fixup.AdminEmail) == "" {
		return nil, fmt.Errorf("%s is required", EnvFixupAdminEmail)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDDOT_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDDOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDDOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDDOT_LOG_WARN_STACK" default:"false"`
	// CORSOrigins applies to /api routes only; the mail relay is open to any origin.
	CORSOrigins []string `envconfig:"MEDDOT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MEDDOT_DB_DSN"`

	LegacyHost     string `envconfig:"MEDDOT_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDDOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDDOT_DB_USER"`
	LegacyPassword string `envconfig:"MEDDOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDDOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDDOT_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"MEDDOT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MEDDOT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MEDDOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDDOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address disables the redis-backed rate limiter.
type RedisConfig struct {
	URL          string        `envconfig:"MEDDOT_REDIS_URL"`
	Address      string        `envconfig:"MEDDOT_REDIS_ADDR"`
	Password     string        `envconfig:"MEDDOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDDOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDDOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDDOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDDOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDDOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDDOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig describes how tokens issued by the hosted auth provider are verified.
type JWTConfig struct {
	Secret            string `envconfig:"MEDDOT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDDOT_JWT_ISSUER"`
	Audience          string `envconfig:"MEDDOT_JWT_AUDIENCE" default:"authenticated"`
	ExpirationMinutes int    `envconfig:"MEDDOT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type MailConfig struct {
	SendgridAPIKey  string        `envconfig:"MEDDOT_SENDGRID_API_KEY"`
	SendgridHost    string        `envconfig:"MEDDOT_SENDGRID_HOST" default:"https://api.sendgrid.com"`
	FromEmail       string        `envconfig:"MEDDOT_MAIL_FROM_EMAIL" default:"no-reply@meddot.app"`
	FromName        string        `envconfig:"MEDDOT_MAIL_FROM_NAME" default:"Meddot"`
	Timeout         time.Duration `envconfig:"MEDDOT_MAIL_TIMEOUT" default:"10s"`
	RateLimitWindow time.Duration `envconfig:"MEDDOT_MAIL_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"MEDDOT_MAIL_RATE_LIMIT_PER_IP" default:"30"`
}

// UseConsole reports whether mail should be written to the log instead of sent.
func (m MailConfig) UseConsole() bool {
	return strings.TrimSpace(m.SendgridAPIKey) == ""
}

type ToastConfig struct {
	DefaultDuration time.Duration `envconfig:"MEDDOT_TOAST_DEFAULT_DURATION" default:"3s"`
	SweepInterval   time.Duration `envconfig:"MEDDOT_TOAST_SWEEP_INTERVAL" default:"5m"`
	IdleTTL         time.Duration `envconfig:"MEDDOT_TOAST_IDLE_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEDDOT_AUTO_MIGRATE" default:"false"`
	MailToasts  bool `envconfig:"MEDDOT_FEATURE_MAIL_TOASTS" default:"true"`
}

type FixupConfig struct {
	FeatureFlag  string `envconfig:"MEDDOT_FIXUP_FEATURE_FLAG" default:"chat_enabled"`
	AdminEmail   string `envconfig:"MEDDOT_FIXUP_ADMIN_EMAIL" required:"true"`
	SeedRoom     string `envconfig:"MEDDOT_FIXUP_SEED_ROOM" default:"general"`
	SeedRoomName string `envconfig:"MEDDOT_FIXUP_SEED_ROOM_NAME" default:"General"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
