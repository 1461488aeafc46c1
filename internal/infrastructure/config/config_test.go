package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("falls back to defaults without a config file", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "buildledger.db", cfg.Database.Path)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 256, cfg.Cache.Capacity)
		assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, "local", cfg.Backup.Transport)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("LEDGER_DATABASE_PATH", "/tmp/ledger-test.db")
		t.Setenv("LEDGER_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/ledger-test.db", cfg.Database.Path)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("rejects unknown database driver", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres requires host and dbname", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Database.Host = "localhost"
		cfg.Database.DBName = "ledger"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("s3 transport requires a bucket", func(t *testing.T) {
		cfg := valid()
		cfg.Backup.Transport = "s3"
		assert.Error(t, cfg.Validate())

		cfg.Backup.Bucket = "ledger-backups"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("DSN renders connection string", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = "db"
		cfg.Database.Port = 5432
		cfg.Database.User = "ledger"
		cfg.Database.Password = "secret"
		cfg.Database.DBName = "ledger"
		assert.Contains(t, cfg.Database.DSN(), "host=db port=5432")
	})
}
