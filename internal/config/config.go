package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// DevSessionSecret signs attempt tokens when SESSION_SECRET is unset. Only offline mode accepts it.
const DevSessionSecret = "pharmexam-dev-secret"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a non-default value in online mode")

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogMode  string

	QuestionsDir     string
	QuestionsCatalog string // optional YAML allow-list; defaults to q1.csv/q2.csv

	DBDriver string // memory|sqlite|postgres
	DBDSN    string

	CacheDriver string // memory|redis
	RedisAddr   string
	CacheTTL    time.Duration

	SessionSecret string
	SessionTTL    time.Duration

	CORSOrigins []string
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	logMode := "dev"
	if mode == ModeOnline {
		logMode = "prod"
	}
	return Config{
		Mode:             mode,
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		LogMode:          envOr("LOG_MODE", logMode),
		QuestionsDir:     envOr("QUESTIONS_DIR", "."),
		QuestionsCatalog: os.Getenv("QUESTIONS_CATALOG"),
		DBDriver:         envOr("DB_DRIVER", "sqlite"),
		DBDSN:            os.Getenv("DB_DSN"),
		CacheDriver:      envOr("CACHE_DRIVER", "memory"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		CacheTTL:         envSeconds("CACHE_TTL_SEC", 0),
		SessionSecret:    envOr("SESSION_SECRET", DevSessionSecret),
		SessionTTL:       envSeconds("SESSION_TTL_SEC", 8*60*60),
		CORSOrigins:      csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

// Validate rejects settings that are only safe on a developer machine.
func (c Config) Validate() error {
	if c.Mode == ModeOnline && (c.SessionSecret == "" || c.SessionSecret == DevSessionSecret) {
		return ErrInsecureSessionSecret
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envSeconds(k string, def int) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || n < 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
