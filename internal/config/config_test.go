package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "LOG_MODE", "QUESTIONS_DIR", "QUESTIONS_CATALOG",
		"DB_DRIVER", "DB_DSN", "CACHE_DRIVER", "REDIS_ADDR", "CACHE_TTL_SEC", "SESSION_SECRET",
		"SESSION_TTL_SEC", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "dev", cfg.LogMode)
	assert.Equal(t, ".", cfg.QuestionsDir)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.CacheDriver)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("LOG_MODE", "")
	t.Setenv("QUESTIONS_DIR", "/data")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_TTL_SEC", "60")
	t.Setenv("SESSION_TTL_SEC", "bogus")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := FromEnv()
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, "/data", cfg.QuestionsDir)
	assert.Equal(t, "redis", cfg.CacheDriver)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidateSessionSecret(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		secret string
		ok     bool
	}{
		{"offline default", ModeOffline, DevSessionSecret, true},
		{"online default", ModeOnline, DevSessionSecret, false},
		{"online empty", ModeOnline, "", false},
		{"online custom", ModeOnline, "s3cr3t-from-vault", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{Mode: tt.mode, SessionSecret: tt.secret}.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInsecureSessionSecret)
			}
		})
	}
}

func TestFromEnvOnlineWithoutSecretFailsValidation(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("SESSION_SECRET", "")
	assert.ErrorIs(t, FromEnv().Validate(), ErrInsecureSessionSecret)
}
