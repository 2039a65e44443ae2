package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minSigningKeyLength = 32
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Scoring  *ScoringConfig  `mapstructure:"scoring"`
	Jobs     *JobsConfig     `mapstructure:"jobs"`
}

type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	LogLevel           string        `mapstructure:"log_level"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN is the keyword/value connection string understood by both gorm and pgx.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// RedisConfig selects the scoreboard cache. An empty Addr means in-memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ScoringConfig seeds the score settings row the first time it is read.
type ScoringConfig struct {
	GoldPoints      int `mapstructure:"gold_points"`
	SilverPoints    int `mapstructure:"silver_points"`
	BronzePoints    int `mapstructure:"bronze_points"`
	NonWinnerPoints int `mapstructure:"non_winner_points"`
	// MaxNonWinnerUnits caps the non-winner rows of one result submission.
	MaxNonWinnerUnits int `mapstructure:"max_non_winner_units"`
}

type JobsConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	CacheRefreshInterval time.Duration `mapstructure:"cache_refresh_interval"`
	LedgerAuditInterval  time.Duration `mapstructure:"ledger_audit_interval"`
	DailyReportHour      int           `mapstructure:"daily_report_hour"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", EnvDevelopment)
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.jwt_ttl", 12*time.Hour)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.ttl", 15*time.Second)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("scoring.gold_points", 10)
	v.SetDefault("scoring.silver_points", 7)
	v.SetDefault("scoring.bronze_points", 5)
	v.SetDefault("scoring.non_winner_points", 1)
	v.SetDefault("scoring.max_non_winner_units", 200)
	v.SetDefault("jobs.enabled", false)
	v.SetDefault("jobs.cache_refresh_interval", 15*time.Minute)
	v.SetDefault("jobs.ledger_audit_interval", time.Hour)
	v.SetDefault("jobs.daily_report_hour", 6)
}

// Load reads the yaml file at path and applies environment overrides, where
// api.port becomes API_PORT and so on.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	watchMu.Lock()
	current = v
	watchMu.Unlock()

	return conf, nil
}

func (c *AppConfig) Validate() error {
	if c.API == nil || c.Gin == nil || c.Postgres == nil || c.Redis == nil ||
		c.Admin == nil || c.Scoring == nil || c.Jobs == nil {
		return errors.New("config: missing section")
	}
	if c.API.Port == "" {
		return errors.New("config: api.port is required")
	}
	if c.API.Environment != EnvDevelopment && len(c.API.JWTSigningKey) < minSigningKeyLength {
		return fmt.Errorf("config: api.jwt_signing_key must be at least %d bytes", minSigningKeyLength)
	}
	if c.API.JWTTTL <= 0 {
		return errors.New("config: api.jwt_ttl must be positive")
	}
	if c.Admin.Username == "" {
		return errors.New("config: admin.username is required")
	}

	s := c.Scoring
	if s.GoldPoints < 0 || s.SilverPoints < 0 || s.BronzePoints < 0 || s.NonWinnerPoints < 0 {
		return errors.New("config: scoring points must be non-negative")
	}
	if s.MaxNonWinnerUnits <= 0 {
		return errors.New("config: scoring.max_non_winner_units must be positive")
	}
	return nil
}

var (
	current *viper.Viper
	watchMu sync.Mutex
)

// OnLogLevelChange watches the file passed to the last Load and calls fn with
// api.log_level every time the file changes.
func OnLogLevelChange(fn func(level string)) {
	watchMu.Lock()
	defer watchMu.Unlock()

	v := current
	if v == nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(v.GetString("api.log_level"))
	})
	v.WatchConfig()
}
