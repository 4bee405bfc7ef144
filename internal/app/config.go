package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/data/db"
	"github.com/yungbote/drawhub-backend/internal/http/handlers"
	"github.com/yungbote/drawhub-backend/internal/observability"
	"github.com/yungbote/drawhub-backend/internal/platform/envutil"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
	"github.com/yungbote/drawhub-backend/internal/realtime/bus"
)

const configPathVar = "DRAWHUB_CONFIG_PATH"

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	CORSOrigins     []string
	ThumbnailSize   int

	DB      db.Config
	Storage objectstore.Config
	// Redis.Addr empty means single-instance realtime delivery.
	Redis bus.RedisConfig
	Otel  observability.OtelConfig
}

// LoadConfig reads the environment, falling back to the YAML file named by
// DRAWHUB_CONFIG_PATH for anything the environment leaves unset.
func LoadConfig(log *logger.Logger) (Config, error) {
	file, err := readConfigFile(envutil.String(configPathVar, ""))
	if err != nil {
		return Config{}, err
	}
	if file != nil && log != nil {
		log.Info("Loaded config file", "path", envutil.String(configPathVar, ""), "keys", len(file))
	}
	cfg := configFrom(envutil.NewReader(envutil.OS, envutil.Map(file)))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFrom(r envutil.Reader) Config {
	mode := objectstore.Mode(strings.ToLower(r.String("OBJECT_STORAGE_MODE", string(objectstore.ModeS3))))
	bucket := firstOf(r, "drawings", "S3_BUCKET", "MINIO_BUCKET")
	if mode != objectstore.ModeS3 {
		bucket = r.String("GCS_BUCKET", "drawings")
	}

	return Config{
		Port:            r.String("PORT", "8080"),
		LogMode:         r.String("LOG_MODE", "development"),
		ShutdownTimeout: r.Duration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		MaxUploadBytes:  r.Int64("HTTP_MAX_UPLOAD_BYTES", handlers.DefaultMaxUploadBytes),
		CORSOrigins:     r.List("CORS_ALLOWED_ORIGINS", nil),
		ThumbnailSize:   r.Int("THUMBNAIL_SIZE", thumbnail.DefaultSize),

		DB: db.Config{
			Driver:       r.String("DB_DRIVER", "postgres"),
			Host:         r.String("POSTGRES_HOST", "localhost"),
			Port:         r.String("POSTGRES_PORT", "5432"),
			User:         r.String("POSTGRES_USER", "postgres"),
			Password:     r.String("POSTGRES_PASSWORD", ""),
			Name:         r.String("POSTGRES_NAME", "drawhub"),
			SSLMode:      r.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:   r.String("SQLITE_PATH", ""),
			MaxOpenConns: r.Int("POSTGRES_MAX_OPEN_CONNS", 0),
			MaxIdleConns: r.Int("POSTGRES_MAX_IDLE_CONNS", 0),
		},

		Storage: objectstore.Config{
			Mode:          mode,
			Bucket:        bucket,
			PublicBaseURL: firstOf(r, "", "OBJECT_STORAGE_PUBLIC_BASE_URL", "MINIO_PUBLIC_URL"),
			S3: objectstore.S3Config{
				Endpoint:  firstOf(r, "", "S3_ENDPOINT", "MINIO_ENDPOINT"),
				AccessKey: firstOf(r, "", "S3_ACCESS_KEY", "MINIO_ACCESS_KEY"),
				SecretKey: firstOf(r, "", "S3_SECRET_KEY", "MINIO_SECRET_KEY"),
				UseSSL:    r.Bool("S3_USE_SSL", false),
				Region:    r.String("S3_REGION", ""),
			},
			GCS: objectstore.GCSConfig{
				ProjectID:    r.String("GCS_PROJECT_ID", ""),
				EmulatorHost: r.String("STORAGE_EMULATOR_HOST", ""),
			},
		},

		Redis: bus.RedisConfig{
			Addr:     r.String("REDIS_ADDR", ""),
			Password: r.String("REDIS_PASSWORD", ""),
			DB:       r.Int("REDIS_DB", 0),
			Channel:  r.String("REDIS_CHANNEL", bus.DefaultChannel),
		},

		Otel: observability.OtelConfig{
			Enabled:     r.Bool("OTEL_ENABLED", false),
			ServiceName: r.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: r.String("OTEL_ENVIRONMENT", ""),
			Version:     r.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    r.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(r.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    r.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: r.Float("OTEL_SAMPLER_RATIO", observability.DefaultSampleRatio),
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT is empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: HTTP_MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("config: CORS_ALLOWED_ORIGINS entry %q must be \"*\" or an http(s) origin", o)
		}
	}
	return c.Storage.Validate()
}

func firstOf(r envutil.Reader, def string, names ...string) string {
	for _, name := range names {
		if r.Present(name) {
			return r.String(name, def)
		}
	}
	return def
}

// readConfigFile loads a flat YAML mapping of setting names to scalars or lists.
// Lists are joined with commas.
func readConfigFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				parts = append(parts, fmt.Sprint(item))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("parse config file %s: key %q must be a scalar or list", path, k)
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(t)
		}
	}
	return out, nil
}
