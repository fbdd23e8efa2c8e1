package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	errMissingJWTSigningKey = errors.New("api.jwt_signing_key is required")
	errMissingPort          = errors.New("api.port is required")
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	Batch    *BatchConfig    `mapstructure:"batch"`
	Worker   *WorkerConfig   `mapstructure:"worker"`
}

type APIConfig struct {
	Environment            string        `mapstructure:"environment"`
	Port                   string        `mapstructure:"port"`
	BaseURL                string        `mapstructure:"base_url"`
	JWTSigningKey          string        `mapstructure:"jwt_signing_key"`
	JWTTTL                 time.Duration `mapstructure:"jwt_ttl"`
	AllowedCORSDomains     []string      `mapstructure:"allowed_cors_domains"`
	LogLevel               string        `mapstructure:"log_level"`
	BootstrapAdminName     string        `mapstructure:"bootstrap_admin_name"`
	BootstrapAdminEmail    string        `mapstructure:"bootstrap_admin_email"`
	BootstrapAdminPassword string        `mapstructure:"bootstrap_admin_password"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN builds a key/value connection string understood by pgx.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	QueueKey string `mapstructure:"queue_key"`
}

type StorageConfig struct {
	Root       string `mapstructure:"root"`
	PrivateDir string `mapstructure:"private_dir"`
	PublicDir  string `mapstructure:"public_dir"`
}

type BatchConfig struct {
	MaxQuantity     int `mapstructure:"max_quantity"`
	InsertChunkSize int `mapstructure:"insert_chunk_size"`
	MaxCodesPerPDF  int `mapstructure:"max_codes_per_pdf"`
}

type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	QueueSize   int           `mapstructure:"queue_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.jwt_ttl", 24*time.Hour)
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.bootstrap_admin_name", "Administrator")

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.queue_key", "qr-admin:jobs")

	v.SetDefault("storage.root", "./storage")
	v.SetDefault("storage.private_dir", "private")
	v.SetDefault("storage.public_dir", "public")

	v.SetDefault("batch.max_quantity", 100000)
	v.SetDefault("batch.insert_chunk_size", 1000)
	v.SetDefault("batch.max_codes_per_pdf", 10000)

	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.poll_timeout", 5*time.Second)
	v.SetDefault("worker.queue_size", 100)
}

// Load reads the YAML file at path, overlays environment variables
// (api.port -> API_PORT) and validates the result.
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

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Watch reloads the file at path on every change and hands the fresh config
// to onChange. Invalid files are reported to onErr and otherwise ignored.
func Watch(path string, onChange func(*AppConfig), onErr func(error)) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		onErr(fmt.Errorf("v.ReadInConfig -> %w", err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		conf := &AppConfig{}
		if err := v.Unmarshal(conf); err != nil {
			onErr(fmt.Errorf("reload %s -> %w", e.Name, err))
			return
		}
		if err := conf.validate(); err != nil {
			onErr(fmt.Errorf("reload %s -> %w", e.Name, err))
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return errMissingJWTSigningKey
	}
	if c.API.Port == "" {
		return errMissingPort
	}

	return nil
}
