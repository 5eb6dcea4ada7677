package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend selectors.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config represents application configuration loaded from environment variables.
// It is read once at startup and treated as immutable for the lifetime of the
// process; pipeline runs never mutate it.
type Config struct {
	AppEnv string
	Port   string

	VisionBaseURL string
	VisionModel   string
	VisionTimeout time.Duration

	GenBaseURL        string
	GenModel          string
	GenCount          int
	GenSize           string
	GenResponseFormat string
	GenTimeout        time.Duration

	StorageBackend string
	StoragePath    string
	StaticBaseURL  string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3PublicURL string

	DatabaseURL    string
	GeoIPDBPath    string
	DefaultLocale  string
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		VisionBaseURL: getEnv("VISION_BASE_URL", "http://localhost:11434"),
		VisionModel:   getEnv("VISION_MODEL", "llama3.2-vision:latest"),
		VisionTimeout: time.Second * time.Duration(getEnvInt("VISION_TIMEOUT_SECONDS", 300)),

		GenBaseURL:        getEnv("GEN_BASE_URL", "http://localhost:11434"),
		GenModel:          getEnv("GEN_MODEL", "x/flux2-klein:latest"),
		GenCount:          getEnvInt("GEN_COUNT", 6),
		GenSize:           getEnv("GEN_SIZE", "1024x1024"),
		GenResponseFormat: getEnv("GEN_RESPONSE_FORMAT", "b64_json"),
		GenTimeout:        time.Second * time.Duration(getEnvInt("GEN_TIMEOUT_SECONDS", 600)),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendLocal)),
		StoragePath:    getEnv("STORAGE_PATH", "./static"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Bucket:    getEnv("S3_BUCKET", "morphs"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		HTTPReadTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Write timeout must outlast a full pipeline run (two vision calls
		// plus one generation call), hence the generous default.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 960)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	cfg.StaticBaseURL = getEnv("STATIC_BASE_URL", fmt.Sprintf("http://localhost:%s/static", cfg.Port))

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.StorageBackend {
	case StorageBackendLocal:
	case StorageBackendS3:
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT is required when STORAGE_BACKEND=s3")
		}
		if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.GenCount <= 0 {
		cfg.GenCount = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
