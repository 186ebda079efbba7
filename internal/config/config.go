package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr  string
	RedisAddr   string
	DownloadDir string

	WorkerCount   int
	QueueCapacity int
	JobTimeout    time.Duration

	// TTLs for the expiring job store. ProgressTTL covers transient
	// status/progress/error records, ResultTTL covers completed records
	// and the stored artifact path.
	ProgressTTL time.Duration
	ResultTTL   time.Duration

	// How long to wait for audio postprocessing to settle before
	// resolving the final output filename.
	PostprocessSettle time.Duration

	MaxFormats int

	// S3-compatible artifact archival (optional)
	ArchiveEnabled bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() *Config {
	workerCount, _ := strconv.Atoi(getEnvOrDefault("WORKER_COUNT", "4"))
	if workerCount <= 0 {
		workerCount = 4
	}

	queueCapacity, _ := strconv.Atoi(getEnvOrDefault("QUEUE_CAPACITY", "256"))
	if queueCapacity <= 0 {
		queueCapacity = 256
	}

	maxFormats, _ := strconv.Atoi(getEnvOrDefault("MAX_FORMATS", "20"))
	if maxFormats <= 0 {
		maxFormats = 20
	}

	archiveEnabled, _ := strconv.ParseBool(getEnvOrDefault("ARCHIVE_ENABLED", "false"))
	minioUseSSL, _ := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", "false"))

	return &Config{
		ServerAddr:        getEnvOrDefault("SERVER_ADDR", ":8080"),
		RedisAddr:         getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		DownloadDir:       getEnvOrDefault("DOWNLOAD_DIR", defaultDownloadDir()),
		WorkerCount:       workerCount,
		QueueCapacity:     queueCapacity,
		JobTimeout:        getEnvDuration("JOB_TIMEOUT", 30*time.Minute),
		ProgressTTL:       getEnvDuration("PROGRESS_TTL", 5*time.Minute),
		ResultTTL:         getEnvDuration("RESULT_TTL", time.Hour),
		PostprocessSettle: getEnvDuration("POSTPROCESS_SETTLE", 2*time.Second),
		MaxFormats:        maxFormats,
		ArchiveEnabled:    archiveEnabled,
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:    getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:       getEnvOrDefault("MINIO_BUCKET", "media-artifacts"),
		MinioUseSSL:       minioUseSSL,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func defaultDownloadDir() string {
	return filepath.Join(os.TempDir(), "mediagrab")
}
