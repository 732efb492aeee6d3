package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       Env
	Server    ServerConfig
	Database  DatabaseConfig
	Minio     MinioConfig
	Upload    UploadConfig
	Assembly  AssemblyConfig
	NATS      NATSConfig
	Thumbnail ThumbnailConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	// PublicBaseURL is the externally reachable base URL, used to build
	// streaming locators handed out as final URLs.
	PublicBaseURL string `envconfig:"SERVER_PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type MinioConfig struct {
	Endpoint                  string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName                string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey                 string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                 string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	UseSSL                    bool          `envconfig:"MINIO_USE_SSL" default:"false"`
	OperationTimeout          time.Duration `envconfig:"MINIO_OPERATION_TIMEOUT" default:"30s"`
	DownloadSignedURLDuration time.Duration `envconfig:"MINIO_DOWNLOAD_SIGNED_URL_DURATION" default:"15m"`
}

type UploadConfig struct {
	// DefaultChunkSize stays conservatively under common request-size
	// ceilings (proxies, API gateways).
	DefaultChunkSize int64         `envconfig:"UPLOAD_DEFAULT_CHUNK_SIZE" default:"5242880"`    // 5MiB
	// MinChunkSize bounds the caller-supplied chunk size from below so a
	// pathological override cannot explode the placeholder count.
	MinChunkSize     int64         `envconfig:"UPLOAD_MIN_CHUNK_SIZE" default:"262144"`         // 256KiB
	MaxChunkSize     int64         `envconfig:"UPLOAD_MAX_CHUNK_SIZE" default:"16777216"`       // 16MiB
	MaxFileSize      int64         `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"5368709120"`      // 5GiB
	SessionTTL       time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"24h"`
	CleanupEvery     time.Duration `envconfig:"UPLOAD_CLEANUP_EVERY" default:"15m"`
	StorageRetries   int           `envconfig:"UPLOAD_STORAGE_RETRIES" default:"3"`
	RetryBackoffBase time.Duration `envconfig:"UPLOAD_RETRY_BACKOFF_BASE" default:"1s"`
}

type AssemblyConfig struct {
	// SmallFileThreshold splits the synchronous and asynchronous finalize paths.
	SmallFileThreshold int64 `envconfig:"ASSEMBLY_SMALL_FILE_THRESHOLD" default:"52428800"` // 50MiB
	// HardSizeCap is the size above which the durable-upload step is skipped
	// and the streaming locator stays as the permanent serving path.
	HardSizeCap   int64         `envconfig:"ASSEMBLY_HARD_SIZE_CAP" default:"209715200"` // 200MiB
	StaleAfter    time.Duration `envconfig:"ASSEMBLY_STALE_AFTER" default:"5m"`
	ScratchDir    string        `envconfig:"ASSEMBLY_SCRATCH_DIR" default:""`
	ProgressEvery int           `envconfig:"ASSEMBLY_PROGRESS_EVERY" default:"20"`
	// Inline dispatches assembly in-process from finalize. When false,
	// finalize publishes an assembly request and a standalone worker
	// (cmd/assembler) consumes it.
	Inline bool `envconfig:"ASSEMBLY_INLINE" default:"true"`
}

type NATSConfig struct {
	// URL of the NATS server; empty disables the broker, which forces
	// inline assembly dispatch.
	URL          string `envconfig:"NATS_URL" default:""`
	StreamName   string `envconfig:"NATS_STREAM_NAME" default:"MEDIA"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" default:"assembler"`
	Subject      string `envconfig:"NATS_SUBJECT" default:"media.assembly.request"`
	DeliverGroup string `envconfig:"NATS_DELIVER_GROUP" default:"assemblers"`
}

type ThumbnailConfig struct {
	// Endpoint of the thumbnail service; empty disables thumbnailing.
	Endpoint string        `envconfig:"THUMBNAIL_ENDPOINT" default:""`
	Timeout  time.Duration `envconfig:"THUMBNAIL_TIMEOUT" default:"20s"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
