package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gcbaptista/review-radar/api"
	"github.com/gcbaptista/review-radar/config"
	"github.com/gcbaptista/review-radar/internal/analytics"
	"github.com/gcbaptista/review-radar/internal/cache"
	"github.com/gcbaptista/review-radar/internal/engine"
	"github.com/gcbaptista/review-radar/internal/export"
	"github.com/gcbaptista/review-radar/internal/indexing"
	"github.com/gcbaptista/review-radar/internal/jobs"
	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/internal/metrics"
)

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		configPath = flag.String("config", "", "Path to a YAML config file")
		dataPath   = flag.String("data", "", "NDJSON or JSON array of raw review rows to index at startup")
		exportPath = flag.String("export", "", "Write the annotated corpus as NDJSON to this path ('-' for stdout) and exit")
		rankKey    = flag.String("rank", "", "Print the top products for this keyword and exit")
		compareIDs = flag.String("compare", "", "Print the summary of these comma-separated product IDs and exit")
		mode       = flag.String("mode", "", "Ranking mode for -rank: title or fulltext")
		topN       = flag.Int("top", 0, "Number of products printed by -rank (0 uses the configured default)")
		port       = flag.Int("port", 0, "Port to run the server on (overrides config)")
	)
	flag.Parse()

	if *help {
		fmt.Printf("Review Radar - review search, sentiment and product ranking\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -data reviews.ndjson                      # Index and serve on the configured port\n", os.Args[0])
		fmt.Printf("  %s -data reviews.ndjson -rank clipper        # Print the top products for 'clipper'\n", os.Args[0])
		fmt.Printf("  %s -data reviews.ndjson -compare B01,B02     # Compare two products\n", os.Args[0])
		fmt.Printf("  %s -data reviews.ndjson -export corpus.jsonl # Export for an external indexer\n", os.Args[0])
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if conflicts := cfg.Validate(); len(conflicts) > 0 {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n  %s\n", strings.Join(conflicts, "\n  "))
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("main")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	tracker := analytics.NewService(0)
	manager := jobs.NewManager(cfg.Jobs.Workers)
	manager.SetRetention(cfg.Jobs.MaxAge)
	manager.Start()

	eng := engine.New(engine.Options{
		SentimentWorkers: cfg.Sentiment.Workers,
		Build: indexing.BuildConfig{
			WorkerCount: cfg.Indexing.Workers,
			BatchSize:   cfg.Indexing.BatchSize,
		},
		DefaultTopN: cfg.Ranking.DefaultTopN,
		DefaultMode: engine.RankMode(cfg.Ranking.DefaultMode),
		Cache:       newRankingCache(cfg.Cache, m, log),
		Metrics:     m,
		Analytics:   tracker,
		Jobs:        manager,
	})
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dataPath != "" {
		if err := loadCorpus(ctx, eng, *dataPath); err != nil {
			log.Error("failed to load corpus", "path", *dataPath, "error", err)
			os.Exit(1)
		}
	}

	oneShot := *exportPath != "" || *rankKey != "" || *compareIDs != ""
	if oneShot {
		if err := runOneShot(ctx, eng, *exportPath, *rankKey, *compareIDs, *mode, *topN); err != nil {
			printError(err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, eng, tracker, m); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newRankingCache builds the configured cache. An unreachable Redis
// disables caching rather than failing startup.
func newRankingCache(cfg config.CacheConfig, m *metrics.Metrics, log *slog.Logger) *cache.RankingCache {
	switch cfg.Backend {
	case config.CacheBackendNone:
		log.Info("ranking cache disabled")
		return nil
	case config.CacheBackendRedis:
		backend, err := cache.NewRedisBackend(cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			PoolSize:  cfg.RedisPoolSize,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			log.Warn("redis unavailable, ranking cache disabled", "addr", cfg.RedisAddr, "error", err)
			return nil
		}
		log.Info("ranking cache enabled", "backend", "redis", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
		return cache.NewRankingCache(backend, cfg.TTL, m)
	default:
		log.Info("ranking cache enabled", "backend", "memory", "ttl", cfg.TTL)
		return cache.NewRankingCache(cache.NewMemoryBackend(), cfg.TTL, m)
	}
}

func loadCorpus(ctx context.Context, eng *engine.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := export.ReadRawRecords(f)
	if err != nil {
		return err
	}
	_, err = eng.Rebuild(ctx, rows)
	return err
}

func serve(ctx context.Context, cfg *config.Config, eng *engine.Engine, tracker *analytics.Service, m *metrics.Metrics) error {
	log := logger.WithComponent("server")

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.CORSMiddleware(), api.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes))
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}
	api.SetupRoutes(router, api.Dependencies{
		Engine:    eng,
		Analytics: tracker,
		Metrics:   m,
		Search:    cfg.Search,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("review service listening", "addr", server.Addr, "ready", eng.Stats().Ready)
	start := time.Now()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Info("review service stopped", "uptime", time.Since(start).Round(time.Second))
	return nil
}
