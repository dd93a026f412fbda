package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "planner-service/docs"
	"planner-service/internal/config"
	"planner-service/internal/embedding"
	"planner-service/internal/generation"
	"planner-service/internal/handlers"
	"planner-service/internal/logging"
	"planner-service/internal/metrics"
	"planner-service/internal/openai"
	"planner-service/internal/repository"
	"planner-service/internal/services"
	"planner-service/internal/services/cache"
	"planner-service/internal/services/caches"
	"planner-service/internal/storage"
	"planner-service/internal/vectorstore"
	"planner-service/internal/vectorstore/memory"
	"planner-service/internal/vectorstore/qdrant"
)

var (
	configFile string
	port       string
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Business plan analysis service",
	Long:  "Planner stores business projects, runs AI analysis over them and indexes them for similarity search.",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push projects from the local cache to the database",
	RunE:  runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "HTTP port (overrides APP_PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// application holds the wired service graph shared by all commands.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	projects *services.ProjectService
	analysis *services.AnalysisService
	exports  *services.ExportService
	closers  []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := buildApplication(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	app := fiber.New(fiber.Config{
		AppName:               "planner",
		DisableStartupMessage: true,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := handlers.RegisterRoutes(app,
		handlers.NewProjectHandler(a.projects, a.analysis, a.exports, a.logger),
		handlers.NewStorageHandler(a.projects, a.logger),
	)
	api.Get("/swagger/*", swagger.HandlerDefault)

	for _, r := range app.GetRoutes(true) {
		a.logger.Debug("route registered", "method", r.Method, "path", r.Path)
	}

	listenPort := a.cfg.AppPort
	if port != "" {
		listenPort = port
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "port", listenPort)
		errCh <- app.Listen(":" + listenPort)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := InitConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if !cfg.DurableEnabled() {
		return fmt.Errorf("migrate: DB_HOST is not set")
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := MigrateDatabase(db); err != nil {
		return err
	}
	logger.Info("database migrated", "database", cfg.DBName)
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := buildApplication(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.projects.SyncLocalToDurable(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.GetSummary())
	if !report.Success() {
		return fmt.Errorf("sync finished with %d failures", report.Failed)
	}
	return nil
}

func buildApplication(ctx context.Context) (*application, error) {
	cfg, err := InitConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	a := &application{cfg: cfg, logger: logger, registry: registry}

	db := ConnectDatabase(cfg, logger)

	local, closeLocal, err := InitLocalCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeLocal != nil {
		a.closers = append(a.closers, closeLocal)
	}

	client, err := InitOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		logger.Info("no OpenAI API key, using mock providers")
	}
	provider := generation.New(client, logger, m)
	embedder := embedding.New(client, logger, m)

	vectors := InitVectorStore(ctx, cfg, db, logger)
	indexer := services.NewVectorIndexer(embedder, vectors, cfg.SimilarityThreshold, logger)

	a.projects = services.NewProjectService(repository.NewProjectRepository(db), local, indexer, logger, m)
	a.projects.SetProbeTimeout(cfg.DBProbeTimeout)
	a.projects.SetSimilarLimit(cfg.SimilarLimit)
	if db != nil {
		a.projects.SetDurablePrepare(func(ctx context.Context) error {
			return MigrateDatabase(db.WithContext(ctx))
		})
	}

	a.analysis = services.NewAnalysisService(a.projects, provider, indexer, logger, m)
	a.analysis.SetParallelism(cfg.AnalysisParallel)

	var objects services.ObjectStore
	if cfg.ExportEnabled() {
		store, err := InitMinIOClient(ctx, cfg, logger)
		if err != nil {
			logger.Warn("object store unavailable, exports disabled", "error", err)
		} else {
			objects = store
		}
	}
	a.exports = services.NewExportService(a.projects, objects, cfg.ExportURLTTL, logger, m)

	logger.Info("planner initialised",
		"durable", db != nil,
		"local_cache", local.Name(),
		"vector_store", vectors.Name(),
		"provider", provider.Name(),
		"exports", objects != nil,
	)
	return a, nil
}

func InitConfig() (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv("PLANNER_CONFIG", configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// ConnectDatabase returns nil when no database is configured or the DSN is
// rejected. A server that is down at startup is picked up by the per-request
// probe once it comes back; the schema is migrated on the first success.
func ConnectDatabase(cfg *config.Config, logger *slog.Logger) *gorm.DB {
	if !cfg.DurableEnabled() {
		logger.Info("no database configured, running on the local cache")
		return nil
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Warn("database connection failed, running on the local cache", "error", err)
		return nil
	}
	return db
}

func MigrateDatabase(db *gorm.DB) error {
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func InitLocalCache(ctx context.Context, cfg *config.Config) (cache.ProjectCache, func() error, error) {
	switch cfg.LocalCacheDriver {
	case config.CacheDriverMemory:
		return caches.NewMemoryCache(), nil, nil
	case config.CacheDriverSQLite:
		c, err := caches.NewSQLiteCache(ctx, cfg.LocalCachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite cache: %w", err)
		}
		return c, c.Close, nil
	case config.CacheDriverRedis:
		client, err := storage.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		return caches.NewRedisCache(client, "planner"), client.Close, nil
	default:
		c, err := caches.NewFileSystemCache(cfg.LocalCachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("file cache: %w", err)
		}
		return c, nil, nil
	}
}

// InitOpenAIClient returns nil without an API key.
func InitOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, nil
	}
	return openai.NewClient(openai.Config{
		BaseURL:           cfg.OpenAIBaseURL,
		APIKey:            cfg.OpenAIAPIKey,
		ChatModel:         cfg.ChatModel,
		EmbeddingModel:    cfg.EmbeddingModel,
		Timeout:           cfg.ProviderTimeout,
		MaxRetries:        cfg.ProviderRetries,
		RequestsPerSecond: cfg.ProviderRPS,
	})
}

func InitVectorStore(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) vectorstore.Store {
	switch cfg.VectorStore() {
	case config.VectorDriverQdrant:
		s := qdrant.NewStorage(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Dimension:  embedding.Dimension,
		})
		if err := s.Init(ctx); err != nil {
			logger.Warn("qdrant init failed, indexing will be retried per request", "error", err)
		}
		return s
	case config.VectorDriverPostgres:
		if db == nil {
			logger.Warn("postgres vector store needs a database, using memory")
			return memory.NewStorage()
		}
		return repository.NewEmbeddingRepository(db)
	default:
		return memory.NewStorage()
	}
}

func InitMinIOClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage.MinioStore, error) {
	return storage.NewMinioClient(ctx, cfg, logger)
}
