package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Cache    CacheConfig
	Backup   BackupConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings. The ledger runs on an
// embedded SQLite file by default; a PostgreSQL DSN can be configured for
// shared deployments.
type DatabaseConfig struct {
	Driver          string // sqlite or postgres
	Path            string // sqlite database file
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CacheConfig holds summary cache settings
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

// BackupConfig holds backup scheduler and transport settings
type BackupConfig struct {
	Enabled      bool
	PollInterval time.Duration
	Transport    string // local or s3
	Dir          string // local transport target directory
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string // optional S3-compatible endpoint
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Load reads configuration from file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with LEDGER_ prefix (e.g., LEDGER_DATABASE_PATH)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.buildledger")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Cache: CacheConfig{
			Capacity: v.GetInt("cache.capacity"),
			TTL:      v.GetDuration("cache.ttl"),
		},
		Backup: BackupConfig{
			Enabled:      v.GetBool("backup.enabled"),
			PollInterval: v.GetDuration("backup.poll_interval"),
			Transport:    v.GetString("backup.transport"),
			Dir:          v.GetString("backup.dir"),
			Bucket:       v.GetString("backup.bucket"),
			Prefix:       v.GetString("backup.prefix"),
			Region:       v.GetString("backup.region"),
			Endpoint:     v.GetString("backup.endpoint"),
			AccessKey:    v.GetString("backup.access_key"),
			SecretKey:    v.GetString("backup.secret_key"),
			UsePathStyle: v.GetBool("backup.use_path_style"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "buildledger"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "buildledger.db"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 256
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Backup.PollInterval == 0 {
		cfg.Backup.PollInterval = 15 * time.Minute
	}
	if cfg.Backup.Transport == "" {
		cfg.Backup.Transport = "local"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "backups"
	}
	if cfg.Backup.Region == "" {
		cfg.Backup.Region = "eu-central-1"
	}
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("postgres driver requires database.host and database.dbname")
		}
	}
	switch c.Backup.Transport {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported backup transport: %q", c.Backup.Transport)
	}
	if c.Backup.Transport == "s3" && c.Backup.Bucket == "" {
		return fmt.Errorf("s3 backup transport requires backup.bucket")
	}
	return nil
}
