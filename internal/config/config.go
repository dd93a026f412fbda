package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Local cache drivers.
const (
	CacheDriverFile   = "file"
	CacheDriverSQLite = "sqlite"
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Vector store drivers.
const (
	VectorDriverPostgres = "postgres"
	VectorDriverQdrant   = "qdrant"
	VectorDriverMemory   = "memory"
)

// Config holds all configuration values. Values come from an optional
// YAML file (PLANNER_CONFIG) and are overridden by environment variables.
type Config struct {
	AppPort string `yaml:"app_port"`

	DBHost         string        `yaml:"db_host"`
	DBPort         string        `yaml:"db_port"`
	DBUser         string        `yaml:"db_user"`
	DBPassword     string        `yaml:"db_password"`
	DBName         string        `yaml:"db_name"`
	DBSSLMode      string        `yaml:"db_sslmode"`
	DBProbeTimeout time.Duration `yaml:"db_probe_timeout"`

	LocalCacheDriver string `yaml:"local_cache_driver"`
	LocalCachePath   string `yaml:"local_cache_path"`
	RedisHost        string `yaml:"redis_host"`
	RedisPort        string `yaml:"redis_port"`

	OpenAIAPIKey     string        `yaml:"openai_api_key"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	ChatModel        string        `yaml:"chat_model"`
	EmbeddingModel   string        `yaml:"embedding_model"`
	ProviderTimeout  time.Duration `yaml:"provider_timeout"`
	ProviderRPS      float64       `yaml:"provider_rps"`
	ProviderRetries  int           `yaml:"provider_retries"`
	AnalysisParallel int           `yaml:"analysis_parallel"`

	VectorStoreDriver   string  `yaml:"vector_store"`
	QdrantURL           string  `yaml:"qdrant_url"`
	QdrantAPIKey        string  `yaml:"qdrant_api_key"`
	QdrantCollection    string  `yaml:"qdrant_collection"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	SimilarLimit        int     `yaml:"similar_limit"`

	MinioEndpoint  string        `yaml:"minio_endpoint"`
	MinioAccessKey string        `yaml:"minio_access_key"`
	MinioSecretKey string        `yaml:"minio_secret_key"`
	MinioBucket    string        `yaml:"minio_bucket"`
	MinioSSL       bool          `yaml:"minio_ssl"`
	ExportURLTTL   time.Duration `yaml:"export_url_ttl"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		AppPort:             "8080",
		DBPort:              "5432",
		DBSSLMode:           "disable",
		DBProbeTimeout:      2 * time.Second,
		LocalCacheDriver:    CacheDriverFile,
		LocalCachePath:      "./data/projects.json",
		RedisPort:           "6379",
		OpenAIBaseURL:       "https://api.openai.com/v1",
		ChatModel:           "gpt-4o-mini",
		EmbeddingModel:      "text-embedding-3-small",
		ProviderTimeout:     60 * time.Second,
		ProviderRPS:         5,
		ProviderRetries:     3,
		AnalysisParallel:    8,
		QdrantCollection:    "project_embeddings",
		SimilarityThreshold: 0.5,
		SimilarLimit:        5,
		MinioBucket:         "planner-exports",
		ExportURLTTL:        24 * time.Hour,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// LoadConfig loads configuration from .env, the optional YAML file and
// environment variables, in that order of increasing precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("PLANNER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("PLANNER_PORT", &c.AppPort)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSSLMode)
	str("LOCAL_CACHE_DRIVER", &c.LocalCacheDriver)
	str("LOCAL_CACHE_PATH", &c.LocalCachePath)
	str("REDIS_HOST", &c.RedisHost)
	str("REDIS_PORT", &c.RedisPort)
	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	str("OPENAI_CHAT_MODEL", &c.ChatModel)
	str("OPENAI_EMBEDDING_MODEL", &c.EmbeddingModel)
	str("VECTOR_STORE", &c.VectorStoreDriver)
	str("QDRANT_URL", &c.QdrantURL)
	str("QDRANT_API_KEY", &c.QdrantAPIKey)
	str("QDRANT_COLLECTION", &c.QdrantCollection)
	str("MINIO_ENDPOINT", &c.MinioEndpoint)
	str("MINIO_ACCESS_KEY", &c.MinioAccessKey)
	str("MINIO_SECRET_KEY", &c.MinioSecretKey)
	str("MINIO_BUCKET", &c.MinioBucket)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v := os.Getenv("MINIO_SSL"); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		c.MinioSSL = val
	}
	durations := map[string]*time.Duration{
		"DB_PROBE_TIMEOUT": &c.DBProbeTimeout,
		"PROVIDER_TIMEOUT": &c.ProviderTimeout,
		"EXPORT_URL_TTL":   &c.ExportURLTTL,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %v", key, err)
			}
			*dst = d
		}
	}
	ints := map[string]*int{
		"PROVIDER_RETRIES":  &c.ProviderRetries,
		"ANALYSIS_PARALLEL": &c.AnalysisParallel,
		"SIMILAR_LIMIT":     &c.SimilarLimit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %v", key, err)
			}
			*dst = n
		}
	}
	floats := map[string]*float64{
		"PROVIDER_RPS":         &c.ProviderRPS,
		"SIMILARITY_THRESHOLD": &c.SimilarityThreshold,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s value: %v", key, err)
			}
			*dst = f
		}
	}
	return nil
}

// Validate checks the combination of settings. The durable store and the
// object store are optional, but a partially configured one is an error.
func (c *Config) Validate() error {
	if c.DBHost != "" && (c.DBUser == "" || c.DBName == "") {
		return fmt.Errorf("database configuration is incomplete")
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "" || c.MinioBucket == "") {
		return fmt.Errorf("minio configuration is incomplete")
	}
	switch c.LocalCacheDriver {
	case CacheDriverFile, CacheDriverSQLite, CacheDriverMemory:
	case CacheDriverRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("redis local cache requires REDIS_HOST")
		}
	default:
		return fmt.Errorf("unknown local cache driver %q", c.LocalCacheDriver)
	}
	switch c.VectorStore() {
	case VectorDriverPostgres:
		if !c.DurableEnabled() {
			return fmt.Errorf("postgres vector store requires the database to be configured")
		}
	case VectorDriverQdrant:
		if c.QdrantURL == "" {
			return fmt.Errorf("qdrant vector store requires QDRANT_URL")
		}
	case VectorDriverMemory:
	default:
		return fmt.Errorf("unknown vector store %q", c.VectorStoreDriver)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be within [-1, 1]")
	}
	if c.AnalysisParallel < 1 || c.AnalysisParallel > 8 {
		return fmt.Errorf("analysis parallelism must be between 1 and 8")
	}
	return nil
}

// DurableEnabled reports whether a durable store has been configured.
func (c *Config) DurableEnabled() bool {
	return c.DBHost != ""
}

// ExportEnabled reports whether an object store for plan exports is configured.
func (c *Config) ExportEnabled() bool {
	return c.MinioEndpoint != ""
}

// VectorStore returns the effective vector store driver. Without an
// explicit choice embeddings live next to the projects when a database is
// configured and in memory otherwise.
func (c *Config) VectorStore() string {
	if c.VectorStoreDriver != "" {
		return c.VectorStoreDriver
	}
	if c.DurableEnabled() {
		return VectorDriverPostgres
	}
	return VectorDriverMemory
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
// The connection is opened lazily: an unreachable server is not an error
// here, callers probe reachability with Ping.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
