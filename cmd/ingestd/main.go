package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coraldesk/siteingest/internal/api"
	"github.com/coraldesk/siteingest/internal/config"
	"github.com/coraldesk/siteingest/internal/crawl"
	"github.com/coraldesk/siteingest/internal/database"
	"github.com/coraldesk/siteingest/internal/extract"
	"github.com/coraldesk/siteingest/internal/ingest"
	"github.com/coraldesk/siteingest/internal/logging"
	"github.com/coraldesk/siteingest/internal/queue"
	"github.com/coraldesk/siteingest/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive, err := newArchive(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := archive.Close(); closeErr != nil {
			logger.Warn("storage close failed", zap.Error(closeErr))
		}
	}()

	store, err := newChunkStore(ctx, cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer store.Close()

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("queue init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := notifier.Close(); closeErr != nil {
			logger.Warn("queue close failed", zap.Error(closeErr))
		}
	}()

	// Discovery fetches stay short; extraction gets a longer budget since it
	// pulls full pages that feed the knowledge base.
	crawlFetcher, err := crawl.NewCollyFetcher(cfg.Crawler.UserAgent, cfg.Crawler.FetchTimeout(), logger.Named("crawl"))
	if err != nil {
		logger.Fatal("crawl fetcher init failed", zap.Error(err))
	}
	extractFetcher, err := crawl.NewCollyFetcher(cfg.Crawler.UserAgent, cfg.Crawler.ExtractTimeout(), logger.Named("extract"))
	if err != nil {
		logger.Fatal("extract fetcher init failed", zap.Error(err))
	}

	sitemap := crawl.NewSitemapDiscoverer(cfg.Crawler.UserAgent, logger.Named("sitemap"))
	crawler := crawl.NewCrawler(crawlFetcher, sitemap, logger.Named("crawler"))
	robots := crawl.NewRobotsChecker(cfg.Crawler.UserAgent, logger.Named("robots"))
	extractor := extract.New(extractFetcher, archive, logger.Named("extractor"))
	ingestor := ingest.NewService(extractor, store, notifier, ingest.Config{
		MinChunkSize: cfg.Chunk.MinSize,
		MaxChunkSize: cfg.Chunk.MaxSize,
		OverlapSize:  cfg.Chunk.Overlap,
	}, logger.Named("ingest"))

	apiServer := api.NewServer(crawler, robots, extractor, ingestor, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Provider, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		return storage.NewGCSProvider(ctx, cfg.Storage.GCSBucket, logger.Named("gcs"))
	case "memory":
		return storage.NewMemoryProvider(), nil
	case "noop", "":
		return &storage.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

func newChunkStore(ctx context.Context, cfg config.Config) (database.Provider, error) {
	switch cfg.Database.Provider {
	case "postgres":
		return database.NewPostgresProvider(ctx, database.PostgresConfig{
			DSN:   cfg.Database.DSN,
			Table: cfg.Database.Table,
		})
	case "noop", "":
		return &database.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown database provider %q", cfg.Database.Provider)
	}
}

func newNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (queue.Provider, error) {
	switch cfg.Queue.Provider {
	case "pubsub":
		return queue.NewPubSubProvider(ctx, cfg.Queue.ProjectID, cfg.Queue.TopicID, logger.Named("pubsub"))
	case "memory":
		return queue.NewMemoryProvider(), nil
	case "noop", "":
		return &queue.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown queue provider %q", cfg.Queue.Provider)
	}
}
