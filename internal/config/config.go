package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Cache    CacheConfig
	Inbox    InboxConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// InboxConfig holds settings for the moderation inbox.
type InboxConfig struct {
	// BaseURL is the public URL prefix under which uploaded (not yet
	// imported) photos are reachable.
	BaseURL string
	// PhotoBaseURL is the public URL prefix of imported photos, used when
	// announcing a new photo.
	PhotoBaseURL string
	// MaxPhotoSize is the upload size limit in bytes.
	MaxPhotoSize int64
}

// StorageConfig holds the filesystem layout for photo files.
type StorageConfig struct {
	InboxDir     string
	ProcessedDir string
	RejectedDir  string
	PhotosDir    string
}

// NotifyConfig holds outbound notification settings. URLs use the shoutrrr
// service URL format; empty lists disable the respective channel.
type NotifyConfig struct {
	MonitorURLs  []string
	AnnounceURLs []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "stationpix", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	cacheTTL := flag.Duration("cache-ttl", 6*time.Hour, "Cache TTL for country lookups")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	inboxBaseURL := flag.String("inbox-base-url", "http://localhost:8080/inbox", "Public base URL of uploaded photos")
	photoBaseURL := flag.String("photo-base-url", "http://localhost:8080/photos", "Public base URL of imported photos")
	maxPhotoSize := flag.Int64("max-photo-size", 20*1024*1024, "Upload size limit in bytes")
	storageDir := flag.String("storage-dir", "data", "Root directory for photo storage")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	applyEnvOverrides(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode,
		cacheBackend, cacheTTL, redisAddr, inboxBaseURL, photoBaseURL, maxPhotoSize, storageDir, logLevel)

	cfg.Database = DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		Database: *dbName,
		SSLMode:  *dbSSLMode,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Inbox = InboxConfig{
		BaseURL:      *inboxBaseURL,
		PhotoBaseURL: *photoBaseURL,
		MaxPhotoSize: *maxPhotoSize,
	}

	cfg.Storage = StorageConfig{
		InboxDir:     *storageDir + "/inbox",
		ProcessedDir: *storageDir + "/inbox/processed",
		RejectedDir:  *storageDir + "/inbox/rejected",
		PhotosDir:    *storageDir + "/photos",
	}

	cfg.Notify = NotifyConfig{
		MonitorURLs:  splitList(os.Getenv("MONITOR_URLS")),
		AnnounceURLs: splitList(os.Getenv("ANNOUNCE_URLS")),
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	return cfg
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyEnvOverrides(
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
	cacheBackend *string,
	cacheTTL *time.Duration,
	redisAddr *string,
	inboxBaseURL *string,
	photoBaseURL *string,
	maxPhotoSize *int64,
	storageDir *string,
	logLevel *string,
) {
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("INBOX_BASE_URL"); v != "" {
		*inboxBaseURL = v
	}
	if v := os.Getenv("PHOTO_BASE_URL"); v != "" {
		*photoBaseURL = v
	}
	if v := os.Getenv("MAX_PHOTO_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			*maxPhotoSize = n
		}
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		*storageDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
}
