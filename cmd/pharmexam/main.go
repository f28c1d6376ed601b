package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/pharmexam/internal/api/http"
	"github.com/mind-engage/pharmexam/internal/config"
	"github.com/mind-engage/pharmexam/internal/db"
	"github.com/mind-engage/pharmexam/internal/exam"
	"github.com/mind-engage/pharmexam/internal/logger"
	"github.com/mind-engage/pharmexam/internal/questionset"
	"github.com/mind-engage/pharmexam/internal/session"
	"github.com/mind-engage/pharmexam/internal/web"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if err := cfg.Validate(); err != nil {
		log.Fatal("config", "mode", cfg.Mode, "error", err)
	}

	// --- Question sources ---
	cat, err := buildCatalog(cfg)
	if err != nil {
		log.Fatal("catalog", "error", err)
	}
	srcs, err := cat.Available()
	if err != nil {
		log.Fatal("no question files found; add q1.csv and q2.csv to QUESTIONS_DIR",
			"dir", cfg.QuestionsDir, "error", err)
	}
	for _, s := range srcs {
		log.Info("question source", "id", s.ID, "path", s.Path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cache, closeCache, err := buildCache(ctx, cfg, log)
	if err != nil {
		log.Fatal("cache", "error", err)
	}
	defer closeCache()
	loader := questionset.NewCachedLoader(questionset.NewFileLoader(cat), cache, log)

	// --- Attempts ---
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer closeStore()

	svc := exam.NewService(store, loader, log)
	signer := session.NewSigner(cfg.SessionSecret, cfg.SessionTTL)
	ui, err := web.New(svc, cat, signer, log, cfg.Mode == config.ModeOnline)
	if err != nil {
		log.Fatal("templates", "error", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logger.RequestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", ui.Index)
	r.Post("/submit", ui.Submit)

	r.Route("/api", func(ar chi.Router) {
		ar.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		ar.Mount("/", api.Routes(svc, cat, signer))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := cat.Available(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "cache", cfg.CacheDriver)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

func buildCatalog(cfg config.Config) (*questionset.Catalog, error) {
	if cfg.QuestionsCatalog != "" {
		return questionset.OpenCatalog(cfg.QuestionsCatalog)
	}
	return questionset.DefaultCatalog(cfg.QuestionsDir), nil
}

func buildCache(ctx context.Context, cfg config.Config, log *logger.Logger) (questionset.Cache, func(), error) {
	switch cfg.CacheDriver {
	case "", "memory":
		return questionset.NewMemoryCache(), func() {}, nil
	case "redis":
		rdb, err := questionset.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info("question cache", "driver", "redis", "addr", cfg.RedisAddr)
		return questionset.NewRedisCache(rdb, cfg.CacheTTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver: %s", cfg.CacheDriver)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (exam.Store, func(), error) {
	if db.Driver(cfg.DBDriver) == db.DriverMemory {
		return exam.NewInMemoryStore(), func() {}, nil
	}
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return exam.NewSQLStore(dbh), func() { _ = dbh.Close() }, nil
}
