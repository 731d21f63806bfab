package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gridalpha/internal/api"
	"gridalpha/internal/api/handlers"
	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/logger"
	"gridalpha/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	envErr := godotenv.Load()
	loadEnv()

	cfg, err := loadConfig(viper.GetString("config"))
	if err != nil {
		logger.Get(logger.ErrorLevel).Fatalw("error reading config", "err", err)
	}

	level := cfg.Logging.Level
	if v := viper.GetString("log_level"); v != "" {
		level = v
	}
	log := logger.Init(logger.Options{Level: level, File: cfg.Logging.File})
	defer func() { _ = log.Sync() }()
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warnw("error loading .env file", "err", envErr)
	}

	var (
		db         *sql.DB
		curveStore data.CurveStore
		apiStore   handlers.CurveStore
	)
	if cfg.Store.Path != "" {
		db, err = store.Open(cfg.Store.Path)
		if err != nil {
			log.Fatalw("failed to init sqlite", "path", cfg.Store.Path, "err", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()
		ps := store.NewPriceStore(db)
		curveStore, apiStore = ps, ps
		log.Infow("price store enabled", "path", cfg.Store.Path)
	}

	feed := data.NewFeedClient(cfg.Feed.APIKey, cfg.Feed.BaseURL, cfg.Feed.Timeout(), log).
		WithRateLimit(cfg.Feed.RequestsPerSecond, cfg.Feed.Burst)
	if cfg.Feed.APIKey == "" {
		log.Warnw("no feed API key configured; live prices unavailable", "demo_fallback", cfg.Demo.FallbackEnabled())
	}
	cache := data.NewCurveCache(cfg.Feed.CacheTTL())
	provider := data.NewProvider(curveStore, cache, feed, cfg.Demo.FallbackEnabled(), log)

	if viper.GetString("env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(&handlers.Deps{
		Curves:     provider,
		RealTime:   provider,
		Store:      apiStore,
		Battery:    cfg.Battery.ToModel(),
		BatteryDir: viper.GetString("battery_dir"),
		Thresholds: cfg.Signal.Thresholds(),
		Log:        log,
	}, api.RouterOptions{
		AllowedOrigins: splitList(viper.GetString("allowed_origins")),
		StaticDir:      viper.GetString("static_dir"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pruneCache(ctx, cache, cfg.Feed.CacheTTL(), log)

	srv := &http.Server{
		Addr:              ":" + viper.GetString("port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	runHTTPServer(srv, log)
	waitForShutdown(cancel, srv, log)
}

// loadEnv binds GRIDALPHA_* environment variables.
func loadEnv() {
	viper.SetEnvPrefix("gridalpha")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", "8080")
	viper.SetDefault("env", "development")
	viper.SetDefault("config", "")
	viper.SetDefault("static_dir", "./web/dist")
	viper.SetDefault("battery_dir", "./examples/batteries")
	viper.SetDefault("allowed_origins", "*")
	viper.SetDefault("log_level", "")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pruneCache drops expired curves so the cache does not grow without bound.
func pruneCache(ctx context.Context, cache *data.CurveCache, every time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cache.Prune(); n > 0 {
				log.Debugw("pruned curve cache", "removed", n, "remaining", cache.Len())
			}
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *http.Server, log *logger.Logger) {
	go func() {
		log.Infow("starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *http.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
